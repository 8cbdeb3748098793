package software

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/frost/render"
)

// surface is anything the rasterizer can write to.
type surface interface {
	dims() (w, h int)
	load(x, y int) [4]float32
	store(x, y int, c [4]float32)
}

// texture stores premultiplied RGBA in float32, row-major.
type texture struct {
	dev  *Device
	desc render.TextureDescriptor
	size uint64
	pix  []float32
}

func (t *texture) Width() uint32                   { return t.desc.Width }
func (t *texture) Height() uint32                  { return t.desc.Height }
func (t *texture) Format() gputypes.TextureFormat { return t.desc.Format }

// Destroy frees the pixels and returns their memory to the budget.
func (t *texture) Destroy() {
	if t.pix == nil {
		return
	}
	t.pix = nil
	t.dev.budget.Release(t.size)
}

func (t *texture) bounds() image.Rectangle {
	return image.Rect(0, 0, int(t.desc.Width), int(t.desc.Height))
}

func (t *texture) dims() (int, int) { return int(t.desc.Width), int(t.desc.Height) }

func (t *texture) setBytes(i int, px []byte) {
	p := t.pix[i*4 : i*4+4]
	for c := range 4 {
		p[c] = float32(px[c]) / 255
	}
}

func (t *texture) texel(x, y int) [4]float32 {
	i := (y*int(t.desc.Width) + x) * 4
	return [4]float32{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func (t *texture) load(x, y int) [4]float32 { return t.texel(x, y) }

func (t *texture) store(x, y int, c [4]float32) {
	i := (y*int(t.desc.Width) + x) * 4
	copy(t.pix[i:i+4], c[:])
}

// sample reads the texture at normalized coordinates with the texture's
// filter and address modes.
func (t *texture) sample(u, v float32) [4]float32 {
	w, h := t.dims()
	x := float64(u)*float64(w) - 0.5
	y := float64(v)*float64(h) - 0.5

	if t.desc.Filter == render.FilterNearest {
		return t.fetch(int(math.Floor(x+0.5)), int(math.Floor(y+0.5)))
	}

	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := float32(x-x0), float32(y-y0)
	ix, iy := int(x0), int(y0)

	a := t.fetch(ix, iy)
	b := t.fetch(ix+1, iy)
	c := t.fetch(ix, iy+1)
	d := t.fetch(ix+1, iy+1)

	var out [4]float32
	for i := range out {
		top := a[i] + (b[i]-a[i])*fx
		bot := c[i] + (d[i]-c[i])*fx
		out[i] = top + (bot-top)*fy
	}
	return out
}

func (t *texture) fetch(x, y int) [4]float32 {
	w, h := t.dims()
	if t.desc.AddressMode == render.AddressRepeat {
		x = ((x % w) + w) % w
		y = ((y % h) + h) % h
	} else {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
	}
	return t.texel(x, y)
}

// pixelTarget adapts a render.RenderTarget with CPU pixels to a surface.
type pixelTarget struct {
	pix    []byte
	stride int
	w, h   int
	swap   bool
}

func newPixelTarget(rt render.RenderTarget) (*pixelTarget, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: no render target", render.ErrInvalidTarget)
	}
	pix := rt.Pixels()
	if pix == nil {
		return nil, fmt.Errorf("%w: %T has no CPU pixels", render.ErrInvalidTarget, rt)
	}
	swap, err := swapChannels(rt.Format())
	if err != nil {
		return nil, err
	}
	return &pixelTarget{pix: pix, stride: rt.Stride(), w: rt.Width(), h: rt.Height(), swap: swap}, nil
}

func (p *pixelTarget) dims() (int, int) { return p.w, p.h }

func (p *pixelTarget) load(x, y int) [4]float32 {
	o := y*p.stride + x*4
	px := p.pix[o : o+4]
	c := [4]float32{float32(px[0]) / 255, float32(px[1]) / 255, float32(px[2]) / 255, float32(px[3]) / 255}
	if p.swap {
		c[0], c[2] = c[2], c[0]
	}
	return c
}

func (p *pixelTarget) store(x, y int, c [4]float32) {
	if p.swap {
		c[0], c[2] = c[2], c[0]
	}
	o := y*p.stride + x*4
	for i := range 4 {
		p.pix[o+i] = uint8(c[i]*255 + 0.5)
	}
}

func swapChannels(f gputypes.TextureFormat) (bool, error) {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return false, nil
	case gputypes.TextureFormatBGRA8Unorm:
		return true, nil
	default:
		return false, fmt.Errorf("%w: target format %v", render.ErrUnsupportedFormat, f)
	}
}

// targetImage exposes a pixel-backed target as an image for x/image/draw.
// swap reports whether the bytes are stored as BGRA.
func targetImage(rt render.RenderTarget) (*image.RGBA, bool, error) {
	if rt == nil {
		return nil, false, fmt.Errorf("%w: no render target", render.ErrInvalidTarget)
	}
	swap, err := swapChannels(rt.Format())
	if err != nil {
		return nil, false, err
	}
	if pt, ok := rt.(*render.PixmapTarget); ok {
		return pt.Image(), swap, nil
	}
	pix := rt.Pixels()
	if pix == nil {
		return nil, false, fmt.Errorf("%w: %T has no CPU pixels", render.ErrInvalidTarget, rt)
	}
	return &image.RGBA{
		Pix:    pix,
		Stride: rt.Stride(),
		Rect:   image.Rect(0, 0, rt.Width(), rt.Height()),
	}, swap, nil
}
