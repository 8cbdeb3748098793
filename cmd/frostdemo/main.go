// Command frostdemo renders a desktop with blurred translucent windows and
// rounded corners into a PNG.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/frost"
	"github.com/gogpu/frost/backend"
	_ "github.com/gogpu/frost/backend/software"
	_ "github.com/gogpu/frost/backend/wgpu"
	"github.com/gogpu/frost/region"
	"github.com/gogpu/frost/render"
)

func main() {
	var (
		width    = flag.Int("width", 800, "image width")
		height   = flag.Int("height", 600, "image height")
		scale    = flag.Float64("scale", 1, "device pixels per logical pixel")
		config   = flag.String("config", "", "YAML configuration file")
		strength = flag.Int("strength", 0, "blur strength 1-15, overrides the configuration")
		noise    = flag.Int("noise", -1, "noise strength 0-255, overrides the configuration")
		device   = flag.String("backend", backend.BackendSoftware, "render backend")
		output   = flag.String("output", "frost.png", "output file")
		verbose  = flag.Bool("v", false, "log diagnostics")
	)
	flag.Parse()

	if *verbose {
		frost.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := frost.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = frost.LoadConfig(*config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *strength > 0 {
		cfg.BlurStrength = *strength
	}
	if *noise >= 0 {
		cfg.NoiseStrength = *noise
	}

	// The demo has no window system, so GPU backends without a host
	// provider fail here with backend.ErrNoProvider.
	dev, err := backend.Get(*device, backend.Options{Logger: frost.Logger()})
	if err != nil {
		log.Fatalf("Failed to create %s device: %v (available: %v)", *device, err, backend.Available())
	}

	vp := render.NewViewport(image.Rect(0, 0, int(float64(*width) / *scale), int(float64(*height) / *scale)), *scale)
	desk := newDesktop(vp.Rect)

	corners, err := frost.NewCorners(desk, cfg)
	if err != nil {
		log.Fatalf("Failed to create corners: %v", err)
	}
	effect, err := frost.New(&chain{desktop: desk, next: corners}, dev, cfg)
	if err != nil {
		log.Fatalf("Failed to create blur: %v", err)
	}
	defer effect.Close()
	if !effect.IsActive() {
		log.Fatalf("Blur effect is not active on the %s device", *device)
	}

	target := render.NewPixmapTarget(*width, *height)
	paint(target, vp, desk, effect, corners)

	if err := savePNG(*output, target.Image()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d, strength %d)\n", *output, *width, *height, effect.Config().BlurStrength)
}

// paint runs one frame through both effects, bottom window first.
func paint(target render.RenderTarget, vp render.Viewport, desk *desktop, effect *frost.Effect, corners *frost.Corners) {
	effect.PrePaintScreen(&frost.ScreenPrePaintData{Output: 0})
	corners.PaintScreen(0, vp)

	screen := region.New(vp.Rect)
	for _, w := range desk.StackingOrder() {
		data := frost.WindowPrePaintData{Paint: screen}
		if w.Opacity() >= 1 && !desk.translucent(w) {
			data.Opaque = region.New(w.FrameGeometry())
		}
		corners.PrePaintWindow(w, &data)
		effect.PrePaintWindow(w, &data)
	}

	for _, w := range desk.StackingOrder() {
		mask := frost.PaintWindowOpaque
		if desk.translucent(w) {
			mask = frost.PaintWindowTranslucent
		}
		data := frost.NewWindowPaintData()
		effect.DrawWindow(target, vp, w, mask, screen, &data)
	}
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
