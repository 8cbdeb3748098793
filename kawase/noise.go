package kawase

import (
	"image"
	"math"
	"math/rand/v2"
	"time"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/frost/render"
)

// NoiseTextureSize is the edge of the unscaled noise tile.
const NoiseTextureSize = 256

// noise caches the dithering texture.
type noise struct {
	tex      render.Texture
	scale    float64
	strength int
}

// noiseScale is the tile magnification for a logical DPI.
func noiseScale(dpi float64) float64 {
	return math.Max(1, dpi/96)
}

// generateNoise returns a square grayscale tile of values in [0, strength),
// magnified by scale with nearest-neighbour sampling.
func generateNoise(rng *rand.Rand, strength int, scale float64) *image.Gray {
	tile := image.NewGray(image.Rect(0, 0, NoiseTextureSize, NoiseTextureSize))
	for i := range tile.Pix {
		tile.Pix[i] = uint8(rng.Uint32() % uint32(strength))
	}
	if scale == 1 {
		return tile
	}

	size := int(math.Round(NoiseTextureSize * scale))
	scaled := image.NewGray(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), tile, tile.Bounds(), draw.Src, nil)
	return scaled
}

// ensure returns the noise texture for the current strength and scale,
// regenerating it only when either changed. It returns nil when noise is
// off or the upload failed.
func (n *noise) ensure(dev render.Device, strength int, scale float64, now func() time.Time) render.Texture {
	if strength <= 0 {
		return nil
	}
	if n.tex != nil && n.scale == scale && n.strength == strength {
		return n.tex
	}
	n.destroy()

	ms := uint64(now().Nanosecond() / int(time.Millisecond))
	img := generateNoise(rand.New(rand.NewPCG(ms, ms)), strength, scale)

	b := img.Bounds()
	desc := render.TextureDescriptor{
		Label:       "kawase_noise",
		Width:       uint32(b.Dx()),
		Height:      uint32(b.Dy()),
		Format:      gputypes.TextureFormatR8Unorm,
		Usage:       render.TextureUsageTextureBinding | render.TextureUsageCopyDst,
		Filter:      render.FilterNearest,
		AddressMode: render.AddressRepeat,
	}
	tex, err := dev.UploadTexture(desc, img.Pix)
	if err != nil {
		slogger().Warn("kawase: noise texture upload failed", "err", err)
		return nil
	}
	n.tex = tex
	n.scale = scale
	n.strength = strength

	slogger().Debug("kawase: noise texture generated", "strength", strength, "size", b.Dx())
	return tex
}

func (n *noise) destroy() {
	if n.tex != nil {
		n.tex.Destroy()
		n.tex = nil
	}
}
