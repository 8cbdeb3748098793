package main

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/frost"
	"github.com/gogpu/frost/corner"
	"github.com/gogpu/frost/region"
	"github.com/gogpu/frost/render"
)

// desktop is a single-output Wayland host with a wallpaper and a few
// client windows, all painted on the CPU.
type desktop struct {
	screen  image.Rectangle
	windows []frost.Window
}

func newDesktop(screen image.Rectangle) *desktop {
	d := &desktop{screen: screen}
	d.windows = append(d.windows, &window{
		id:      1,
		frame:   screen,
		desktop: true,
		info:    corner.WindowInfo{Type: corner.TypeDesktop, Class: "plasmashell"},
	})

	w, h := screen.Dx(), screen.Dy()
	frames := []image.Rectangle{
		image.Rect(w/10, h/8, w/2, h/2),
		image.Rect(w/3, h/3, w*4/5, h*4/5),
		image.Rect(w*3/5, h/10, w*9/10, h*2/5),
	}
	tints := []color.NRGBA{
		{R: 255, G: 255, B: 255, A: 96},
		{R: 30, G: 30, B: 40, A: 255},
		{R: 200, G: 230, B: 255, A: 80},
	}
	for i, f := range frames {
		d.windows = append(d.windows, &window{
			id:    uint64(i + 2),
			frame: f,
			tint:  tints[i],
			blur:  tints[i].A < 255,
			info: corner.WindowInfo{
				Type:      corner.TypeNormal,
				Class:     "org.example.terminal",
				Managed:   true,
				Decorated: true,
				HasShadow: true,
			},
		})
	}
	return d
}

func (d *desktop) translucent(w frost.Window) bool {
	win, ok := w.(*window)
	return ok && !win.desktop && win.tint.A < 255
}

func (d *desktop) StackingOrder() []frost.Window             { return d.windows }
func (d *desktop) Wayland() bool                             { return true }
func (d *desktop) ScreenLocked() bool                        { return false }
func (d *desktop) ActiveFullScreenEffect() bool              { return false }
func (d *desktop) MaximizeArea(frost.Window) image.Rectangle { return d.screen }
func (d *desktop) LogicalDPI() float64                       { return 96 }
func (d *desktop) XScale() float64                           { return 1 }
func (d *desktop) AnnounceSupportProperty(string) frost.Atom { return frost.AtomNone }
func (d *desktop) BlurManager() frost.Announcer              { return nil }
func (d *desktop) AddRepaintFull()                           {}

// DrawWindow paints the wallpaper for the desktop window and a tinted
// rectangle, rounded when data.Corners is set, for the others.
func (d *desktop) DrawWindow(target render.RenderTarget, vp render.Viewport, w frost.Window, _ frost.PaintMask, _ region.Region, data *frost.WindowPaintData) {
	pt, ok := target.(*render.PixmapTarget)
	if !ok {
		return
	}
	win, ok := w.(*window)
	if !ok {
		return
	}
	r := vp.MapToTarget(w.FrameGeometry())
	if win.desktop {
		wallpaper(pt.Image(), r)
		return
	}

	tint := win.tint
	tint.A = uint8(float64(tint.A) * data.Opacity)
	var radius float64
	if data.Corners != nil {
		radius = float64(data.Corners.Radius)
	}
	draw.DrawMask(pt.Image(), r, image.NewUniform(tint), image.Point{}, roundedMask{size: r.Size(), radius: radius}, image.Point{}, draw.Over)
}

// wallpaper fills r with diagonal stripes over an HCL gradient so blur is
// visible.
func wallpaper(dst *image.RGBA, r image.Rectangle) {
	from := colorful.Hcl(250, 0.5, 0.35)
	to := colorful.Hcl(20, 0.7, 0.65)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			t := float64(x+y-r.Min.X-r.Min.Y) / float64(r.Dx()+r.Dy())
			c := from.BlendHcl(to, t).Clamped()
			if (x+y)/24%2 == 0 {
				c = c.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, 0.35)
			}
			cr, cg, cb := c.RGB255()
			dst.SetRGBA(x, y, color.RGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}
}

// roundedMask is an alpha mask of a rectangle with circular corners.
type roundedMask struct {
	size   image.Point
	radius float64
}

func (m roundedMask) ColorModel() color.Model { return color.AlphaModel }
func (m roundedMask) Bounds() image.Rectangle { return image.Rectangle{Max: m.size} }

func (m roundedMask) At(x, y int) color.Color {
	if m.radius <= 0 {
		return color.Alpha{A: 255}
	}
	fx, fy := float64(x)+0.5, float64(y)+0.5
	cx := math.Min(math.Max(fx, m.radius), float64(m.size.X)-m.radius)
	cy := math.Min(math.Max(fy, m.radius), float64(m.size.Y)-m.radius)
	d := math.Hypot(fx-cx, fy-cy)
	a := math.Min(math.Max(m.radius-d+0.5, 0), 1)
	return color.Alpha{A: uint8(a * 255)}
}

// chain hands windows drawn by the blur effect to the corners effect.
type chain struct {
	*desktop
	next *frost.Corners
}

func (c *chain) DrawWindow(target render.RenderTarget, vp render.Viewport, w frost.Window, mask frost.PaintMask, clip region.Region, data *frost.WindowPaintData) {
	c.next.DrawWindow(target, vp, w, mask, clip, data)
}

// window is a client window. Windows with blur set request blur behind
// their whole surface.
type window struct {
	id      uint64
	frame   image.Rectangle
	tint    color.NRGBA
	desktop bool
	blur    bool
	info    corner.WindowInfo
}

func (w *window) ID() uint64                        { return w.id }
func (w *window) Output() uint64                    { return 0 }
func (w *window) Pos() image.Point                  { return w.frame.Min }
func (w *window) FrameGeometry() image.Rectangle    { return w.frame }
func (w *window) ExpandedGeometry() image.Rectangle { return w.frame.Inset(-12) }
func (w *window) ContentsRect() image.Rectangle     { return image.Rectangle{Max: w.frame.Size()} }
func (w *window) Opacity() float64                  { return 1 }
func (w *window) IsDesktop() bool                   { return w.desktop }
func (w *window) ForceBlur() bool                   { return false }
func (w *window) Info() corner.WindowInfo           { return w.info }
func (w *window) ReadProperty(frost.Atom) []byte    { return nil }
func (w *window) Decoration() frost.Decoration      { return nil }
func (w *window) DecorationHasAlpha() bool          { return false }

func (w *window) SurfaceBlurRegion() (region.Region, bool) {
	if !w.blur {
		return region.Region{}, false
	}
	return region.Region{}, true
}

func (w *window) InternalBlurRegion() (region.Region, bool) { return region.Region{}, false }
