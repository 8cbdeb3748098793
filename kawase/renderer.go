package kawase

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/gogpu/frost/region"
	"github.com/gogpu/frost/render"
	"github.com/gogpu/frost/shaders"
)

// ErrInvalid is returned by Render once the blur programs failed to compile.
var ErrInvalid = errors.New("kawase: renderer invalid")

// Options configures a Renderer.
type Options struct {
	// NoiseStrength is the exclusive upper bound of the noise values. Zero
	// disables the noise pass.
	NoiseStrength int

	// LogicalDPI of the primary screen. Values below 96 count as 96.
	LogicalDPI float64

	// Now seeds the noise generator. Defaults to time.Now.
	Now func() time.Time
}

// Params are the per-draw blur parameters.
type Params struct {
	// Iterations is the number of downsample passes, at least 1.
	Iterations int

	// Offset scales the sample distance of every pass.
	Offset float32

	// Opacity of the window, 1 for opaque.
	Opacity float64

	// Window transform. Zero scales count as 1.
	XScale, YScale             float64
	XTranslation, YTranslation float64
}

func (p Params) scales() (float64, float64) {
	xs, ys := p.XScale, p.YScale
	if xs == 0 {
		xs = 1
	}
	if ys == 0 {
		ys = 1
	}
	return xs, ys
}

// Renderer draws blurred backgrounds through a render.Device.
//
// Renderer is not safe for concurrent use; it is driven from the render
// thread.
type Renderer struct {
	device render.Device
	valid  bool

	downsample render.Program
	upsample   render.Program
	noiseProg  render.Program

	noise         noise
	noiseStrength int
	dpi           float64
	now           func() time.Time

	chains map[ChainKey]*chain
}

// New compiles the blur programs on device. A program that fails to compile
// leaves the renderer invalid; this is logged once and reported by Valid.
func New(device render.Device, opts Options) (*Renderer, error) {
	if device == nil {
		return nil, fmt.Errorf("kawase: nil device")
	}
	r := &Renderer{
		device:        device,
		noiseStrength: max(opts.NoiseStrength, 0),
		dpi:           opts.LogicalDPI,
		now:           opts.Now,
		chains:        make(map[ChainKey]*chain),
	}
	if r.now == nil {
		r.now = time.Now
	}

	var err error
	if r.downsample, err = compile(device, render.ProgramDownsample); err == nil {
		if r.upsample, err = compile(device, render.ProgramUpsample); err == nil {
			r.noiseProg, err = compile(device, render.ProgramNoise)
		}
	}
	if err != nil {
		slogger().Warn("kawase: blur programs unavailable, blur disabled", "err", err)
		r.destroyPrograms()
		return r, nil
	}
	r.valid = true
	return r, nil
}

func compile(device render.Device, kind render.ProgramKind) (render.Program, error) {
	desc, err := shaders.Descriptor(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrProgram, err)
	}
	return device.CompileProgram(desc)
}

// Valid reports whether the blur programs are usable.
func (r *Renderer) Valid() bool { return r.valid }

// SetNoiseStrength changes the noise strength. The texture is regenerated
// on the next draw that needs it.
func (r *Renderer) SetNoiseStrength(strength int) {
	r.noiseStrength = max(strength, 0)
}

// NoiseStrength returns the current noise strength.
func (r *Renderer) NoiseStrength() int { return r.noiseStrength }

// SetLogicalDPI changes the DPI the noise tile is scaled for.
func (r *Renderer) SetLogicalDPI(dpi float64) { r.dpi = dpi }

// Render blurs the background behind shape and draws it onto target.
//
// shape is in logical output coordinates before the window transform of p
// is applied. clip restricts the visible part of the blur; region.Infinite
// means no restriction.
func (r *Renderer) Render(target render.RenderTarget, vp render.Viewport, key ChainKey, shape, clip region.Region, p Params) error {
	if !r.valid {
		return ErrInvalid
	}
	if p.Iterations < 1 {
		return fmt.Errorf("kawase: invalid iteration count %d", p.Iterations)
	}

	shape = transformShape(shape, p)
	if shape.IsEmpty() {
		return nil
	}

	scale := vp.Scale
	if scale <= 0 {
		scale = 1
	}
	bg := shape.Bounds()
	deviceBg := render.ScaleRect(bg, scale).Snap()
	effective := effectiveShape(shape, clip, bg, deviceBg, scale)
	if len(effective) == 0 {
		return nil
	}

	c := r.chains[key]
	if c == nil {
		c = &chain{}
		r.chains[key] = c
	}
	if err := c.ensure(r.device, p.Iterations+1, bg.Size(), target.Format()); err != nil {
		slogger().Warn("kawase: failed to allocate render chain", "window", key.Window, "err", err)
		return err
	}

	// Background behind the shape, unblurred.
	for _, dirty := range clip.IntersectRect(bg).Rects() {
		if err := r.device.BlitFromTarget(target, vp, dirty, c.framebuffers[0], dirty.Sub(bg.Min)); err != nil {
			return fmt.Errorf("kawase: fetch background: %w", err)
		}
	}

	vbo := r.device.StreamingBuffer()
	vbo.Reset()
	count := len(effective) * 6
	verts, err := vbo.Map(6 + count)
	if err != nil {
		slogger().Warn("kawase: failed to map vertex buffer", "err", err)
		return err
	}
	w, h := float32(bg.Dx()), float32(bg.Dy())
	appendQuad(verts[:6], 0, 0, w, h, 0, 0, 1, 1)
	dw, dh := float64(deviceBg.Dx()), float64(deviceBg.Dy())
	for i, rc := range effective {
		appendQuad(verts[6+i*6:12+i*6],
			float32(rc.X0), float32(rc.Y0), float32(rc.X1), float32(rc.Y1),
			float32(rc.X0/dw), float32(rc.Y0/dh), float32(rc.X1/dw), float32(rc.Y1/dh))
	}
	if err := vbo.Unmap(); err != nil {
		slogger().Warn("kawase: failed to upload vertices", "err", err)
		return err
	}

	offscreen := render.Ortho(0, 0, w, h)
	levels := c.framebuffers

	for i := 1; i < len(levels); i++ {
		if err := r.pass(r.downsample, c.textures[i-1], levels[i], nil, offscreen, p.Offset, 0, 6, render.Blend{}); err != nil {
			return err
		}
	}
	for i := len(levels) - 1; i > 1; i-- {
		if err := r.pass(r.upsample, c.textures[i], levels[i-1], nil, offscreen, p.Offset, 0, 6, render.Blend{}); err != nil {
			return err
		}
	}

	screen := vp.Projection().Translate(float32(deviceBg.Min.X), float32(deviceBg.Min.Y))
	var blend, noiseBlend render.Blend
	if p.Opacity < 1 {
		o := 1 - p.Opacity
		o = 1 - o*o
		blend = render.OpacityBlend(float32(o))
		noiseBlend = render.ConstantAdditiveBlend(float32(o))
	} else {
		noiseBlend = render.AdditiveBlend()
	}
	if err := r.pass(r.upsample, c.textures[1], nil, target, screen, p.Offset, 6, count, blend); err != nil {
		return err
	}

	if r.noiseStrength > 0 {
		tex := r.noise.ensure(r.device, r.noiseStrength, noiseScale(r.dpi), r.now)
		if tex != nil {
			err := r.device.Draw(render.DrawCall{
				Program:  r.noiseProg,
				Source:   tex,
				Screen:   target,
				Vertices: vbo,
				First:    6,
				Count:    count,
				Uniforms: render.Uniforms{
					MVP:              screen,
					NoiseTextureSize: [2]float32{float32(tex.Width()), float32(tex.Height())},
					TexStartPos:      [2]float32{float32(deviceBg.Min.X), float32(deviceBg.Min.Y)},
				},
				Blend: noiseBlend,
			})
			if err != nil {
				return fmt.Errorf("kawase: noise pass: %w", err)
			}
		}
	}
	return nil
}

// pass draws one blur step reading src. dst nil means the screen.
func (r *Renderer) pass(prog render.Program, src render.Texture, dst render.Framebuffer, screen render.RenderTarget,
	mvp render.Matrix, offset float32, first, count int, blend render.Blend) error {
	call := render.DrawCall{
		Program:  prog,
		Source:   src,
		Target:   dst,
		Screen:   screen,
		Vertices: r.device.StreamingBuffer(),
		First:    first,
		Count:    count,
		Uniforms: render.Uniforms{
			MVP:       mvp,
			Offset:    offset,
			HalfPixel: [2]float32{0.5 / float32(src.Width()), 0.5 / float32(src.Height())},
		},
		Blend: blend,
	}
	if err := r.device.Draw(call); err != nil {
		return fmt.Errorf("kawase: %v pass: %w", prog.Kind(), err)
	}
	return nil
}

// ReleaseWindow destroys every chain of the window.
func (r *Renderer) ReleaseWindow(window uint64) {
	for key, c := range r.chains {
		if key.Window == window {
			c.destroy()
			delete(r.chains, key)
		}
	}
}

// ReleaseOutput destroys every chain rendered on the output.
func (r *Renderer) ReleaseOutput(output uint64) {
	for key, c := range r.chains {
		if key.Output == output {
			c.destroy()
			delete(r.chains, key)
		}
	}
}

// Close releases all GPU resources. The renderer is invalid afterwards.
func (r *Renderer) Close() {
	for key, c := range r.chains {
		c.destroy()
		delete(r.chains, key)
	}
	r.noise.destroy()
	r.destroyPrograms()
	r.valid = false
}

func (r *Renderer) destroyPrograms() {
	for _, p := range []*render.Program{&r.downsample, &r.upsample, &r.noiseProg} {
		if *p != nil {
			(*p).Destroy()
			*p = nil
		}
	}
}

// transformShape applies the window transform. Scaled rectangles are scaled
// about the shape's top-left corner and rounded down; a pure translation is
// rounded to whole pixels.
func transformShape(shape region.Region, p Params) region.Region {
	xs, ys := p.scales()
	if xs != 1 || ys != 1 {
		pt := shape.Bounds().Min
		var out region.Region
		for _, rc := range shape.Rects() {
			x := float64(pt.X) + float64(rc.Min.X-pt.X)*xs + p.XTranslation
			y := float64(pt.Y) + float64(rc.Min.Y-pt.Y)*ys + p.YTranslation
			out = out.UnionRect(image.Rect(
				int(math.Floor(x)), int(math.Floor(y)),
				int(math.Floor(x+float64(rc.Dx())*xs)), int(math.Floor(y+float64(rc.Dy())*ys)),
			))
		}
		return out
	}
	if p.XTranslation != 0 || p.YTranslation != 0 {
		return shape.Translate(image.Pt(int(math.Round(p.XTranslation)), int(math.Round(p.YTranslation))))
	}
	return shape
}

// effectiveShape returns the visible part of shape in device pixels relative
// to deviceBg.
func effectiveShape(shape, clip region.Region, bg, deviceBg image.Rectangle, scale float64) []render.RectF {
	rects := shape.Rects()
	out := make([]render.RectF, 0, len(rects))
	if clip.IsInfinite() {
		for _, rc := range rects {
			out = append(out, render.ScaleRect(rc.Sub(bg.Min), scale).SnapF())
		}
		return out
	}
	ox, oy := float64(deviceBg.Min.X), float64(deviceBg.Min.Y)
	for _, cr := range clip.Rects() {
		dc := render.ScaleRect(cr, scale).SnapF().Translate(-ox, -oy)
		for _, rc := range rects {
			if in := dc.Intersect(render.ScaleRect(rc.Sub(bg.Min), scale).SnapF()); !in.Empty() {
				out = append(out, in)
			}
		}
	}
	return out
}

// appendQuad writes two triangles covering (x0, y0)-(x1, y1) into v.
func appendQuad(v []render.Vertex2D, x0, y0, x1, y1, u0, v0, u1, v1 float32) {
	vert := func(x, y, u, t float32) render.Vertex2D {
		return render.Vertex2D{Position: [2]float32{x, y}, TexCoord: [2]float32{u, t}}
	}
	v[0] = vert(x0, y0, u0, v0)
	v[1] = vert(x1, y1, u1, v1)
	v[2] = vert(x0, y1, u0, v1)
	v[3] = vert(x0, y0, u0, v0)
	v[4] = vert(x1, y0, u1, v0)
	v[5] = vert(x1, y1, u1, v1)
}
