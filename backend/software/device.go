package software

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/naga"
	"golang.org/x/image/draw"

	"github.com/gogpu/frost/render"
)

// Options configures a Device.
type Options struct {
	// Budget limits texture memory. Nil means unlimited.
	Budget *render.Budget

	// MaxVertices caps the streaming vertex buffer. Zero means unlimited.
	MaxVertices int

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Device is a CPU render.Device.
//
// Device is not safe for concurrent use.
type Device struct {
	budget *render.Budget
	vbo    *vertexBuffer
	logger *slog.Logger

	// compiled caches naga results by source so identical programs are
	// validated once.
	compiled map[string]error
}

// New creates a software device.
func New(opts Options) *Device {
	d := &Device{
		budget:   opts.Budget,
		vbo:      &vertexBuffer{capacity: opts.MaxVertices},
		compiled: make(map[string]error),
	}
	d.SetLogger(opts.Logger)
	return d
}

// SetLogger replaces the device logger. Nil discards output.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	d.logger = l
}

// Budget returns the device memory budget, possibly nil.
func (d *Device) Budget() *render.Budget { return d.budget }

// CompileProgram validates the WGSL source and returns a program evaluating
// the kernel of desc.Kind.
func (d *Device) CompileProgram(desc render.ProgramDescriptor) (render.Program, error) {
	switch desc.Kind {
	case render.ProgramDownsample, render.ProgramUpsample, render.ProgramNoise:
	default:
		return nil, fmt.Errorf("%w: %s: unknown program kind %d", render.ErrProgram, desc.Label, desc.Kind)
	}

	err, ok := d.compiled[desc.Source]
	if !ok {
		_, err = naga.Compile(desc.Source)
		d.compiled[desc.Source] = err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", render.ErrProgram, desc.Label, err)
	}
	d.logger.Debug("software: program compiled", "label", desc.Label, "kind", desc.Kind.String())
	return &program{kind: desc.Kind}, nil
}

// AllocateTexture creates a zeroed texture.
func (d *Device) AllocateTexture(desc render.TextureDescriptor) (render.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: %s: empty texture %dx%d", render.ErrAllocation, desc.Label, desc.Width, desc.Height)
	}
	if render.BytesPerPixel(desc.Format) == 0 {
		return nil, fmt.Errorf("%w: %v", render.ErrUnsupportedFormat, desc.Format)
	}
	size := render.TextureBytes(desc)
	if err := d.budget.Reserve(size); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", render.ErrAllocation, desc.Label, err)
	}
	return &texture{
		dev:  d,
		desc: desc,
		size: size,
		pix:  make([]float32, int(desc.Width)*int(desc.Height)*4),
	}, nil
}

// UploadTexture creates a texture from tightly packed pixels. R8 textures
// replicate their value into the color channels.
func (d *Device) UploadTexture(desc render.TextureDescriptor, pixels []byte) (render.Texture, error) {
	t, err := d.AllocateTexture(desc)
	if err != nil {
		return nil, err
	}
	tex := t.(*texture)
	bpp := render.BytesPerPixel(desc.Format)
	n := int(desc.Width) * int(desc.Height)
	if len(pixels) < n*bpp {
		tex.Destroy()
		return nil, fmt.Errorf("%w: %s: %d bytes for %d texels", render.ErrAllocation, desc.Label, len(pixels), n)
	}
	for i := range n {
		switch bpp {
		case 1:
			v := float32(pixels[i]) / 255
			tex.pix[i*4], tex.pix[i*4+1], tex.pix[i*4+2], tex.pix[i*4+3] = v, v, v, 1
		default:
			tex.setBytes(i, pixels[i*4:i*4+4])
		}
	}
	return tex, nil
}

// CreateFramebuffer wraps tex as a render attachment.
func (d *Device) CreateFramebuffer(tex render.Texture) (render.Framebuffer, error) {
	t, ok := tex.(*texture)
	if !ok || t.dev != d {
		return nil, fmt.Errorf("%w: texture %T does not belong to this device", render.ErrAllocation, tex)
	}
	if t.pix == nil {
		return nil, fmt.Errorf("%w: texture destroyed", render.ErrAllocation)
	}
	return &framebuffer{tex: t}, nil
}

// StreamingBuffer returns the shared streaming vertex buffer.
func (d *Device) StreamingBuffer() render.VertexBuffer { return d.vbo }

// BlitFromTarget copies a logical rectangle of a pixel-backed target into a
// framebuffer, scaling bilinearly when the sizes differ.
func (d *Device) BlitFromTarget(src render.RenderTarget, vp render.Viewport, srcRect image.Rectangle, dst render.Framebuffer, dstRect image.Rectangle) error {
	fb, ok := dst.(*framebuffer)
	if !ok || fb.tex.pix == nil {
		return fmt.Errorf("%w: framebuffer %T", render.ErrInvalidTarget, dst)
	}
	img, swap, err := targetImage(src)
	if err != nil {
		return err
	}

	from := vp.MapToTarget(srcRect)
	to := dstRect.Intersect(fb.tex.bounds())
	if from.Empty() || to.Empty() {
		return nil
	}

	staging := image.NewRGBA(image.Rect(0, 0, dstRect.Dx(), dstRect.Dy()))
	if from.Dx() == dstRect.Dx() && from.Dy() == dstRect.Dy() {
		draw.Draw(staging, staging.Bounds(), img, from.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(staging, staging.Bounds(), img, from, draw.Src, nil)
	}

	for y := to.Min.Y; y < to.Max.Y; y++ {
		for x := to.Min.X; x < to.Max.X; x++ {
			o := staging.PixOffset(x-dstRect.Min.X, y-dstRect.Min.Y)
			px := staging.Pix[o : o+4]
			if swap {
				px = []byte{px[2], px[1], px[0], px[3]}
			}
			fb.tex.setBytes(y*int(fb.tex.desc.Width)+x, px)
		}
	}
	return nil
}

// Draw rasterizes call.Count vertices starting at call.First.
func (d *Device) Draw(call render.DrawCall) error {
	prog, ok := call.Program.(*program)
	if !ok || prog.destroyed {
		return fmt.Errorf("%w: program %T", render.ErrProgram, call.Program)
	}
	src, ok := call.Source.(*texture)
	if !ok || src.pix == nil {
		return fmt.Errorf("%w: source texture %T", render.ErrInvalidTarget, call.Source)
	}
	vbo, ok := call.Vertices.(*vertexBuffer)
	if !ok || vbo != d.vbo {
		return fmt.Errorf("%w: vertex buffer %T", render.ErrVertexBuffer, call.Vertices)
	}
	verts, err := vbo.slice(call.First, call.Count)
	if err != nil {
		return err
	}

	var dst surface
	if call.Target != nil {
		fb, ok := call.Target.(*framebuffer)
		if !ok || fb.tex.pix == nil {
			return fmt.Errorf("%w: framebuffer %T", render.ErrInvalidTarget, call.Target)
		}
		dst = fb.tex
	} else {
		pt, err := newPixelTarget(call.Screen)
		if err != nil {
			return err
		}
		dst = pt
	}

	sh := shader{kind: prog.kind, src: src, u: call.Uniforms}
	rasterize(dst, verts, call.Uniforms.MVP, func(x, y int, uv [2]float32) {
		c := sh.shade(float32(x)+0.5, float32(y)+0.5, uv)
		dst.store(x, y, call.Blend.Apply(c, dst.load(x, y)))
	})
	return nil
}

// Compile-time check.
var _ render.Device = (*Device)(nil)

type program struct {
	kind      render.ProgramKind
	destroyed bool
}

func (p *program) Kind() render.ProgramKind { return p.kind }
func (p *program) Destroy()                 { p.destroyed = true }

type framebuffer struct {
	tex *texture
}

func (f *framebuffer) ColorAttachment() render.Texture { return f.tex }
func (f *framebuffer) Destroy()                        {}
