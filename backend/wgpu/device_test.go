//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/frost/backend"
	"github.com/gogpu/frost/render"
	"github.com/gogpu/frost/shaders"
)

// createNoopDevice opens a noop HAL device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func newDevice(t *testing.T, opts Options) *Device {
	t.Helper()
	device, queue := createNoopDevice(t)
	d, err := New(device, queue, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func compile(t *testing.T, d *Device, kind render.ProgramKind) render.Program {
	t.Helper()
	desc, err := shaders.Descriptor(kind)
	if err != nil {
		t.Fatal(err)
	}
	p, err := d.CompileProgram(desc)
	if err != nil {
		t.Fatalf("CompileProgram(%v): %v", kind, err)
	}
	t.Cleanup(p.Destroy)
	return p
}

func quad(t *testing.T, vbo render.VertexBuffer, w, h float32) {
	t.Helper()
	vbo.Reset()
	verts, err := vbo.Map(6)
	if err != nil {
		t.Fatal(err)
	}
	copy(verts, []render.Vertex2D{
		{Position: [2]float32{0, 0}, TexCoord: [2]float32{0, 0}},
		{Position: [2]float32{w, 0}, TexCoord: [2]float32{1, 0}},
		{Position: [2]float32{0, h}, TexCoord: [2]float32{0, 1}},
		{Position: [2]float32{w, 0}, TexCoord: [2]float32{1, 0}},
		{Position: [2]float32{w, h}, TexCoord: [2]float32{1, 1}},
		{Position: [2]float32{0, h}, TexCoord: [2]float32{0, 1}},
	})
	if err := vbo.Unmap(); err != nil {
		t.Fatal(err)
	}
}

func TestNewNilDevice(t *testing.T) {
	if _, err := New(nil, nil, Options{}); err == nil {
		t.Fatal("New(nil, nil) succeeded")
	}
}

func TestFromProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider render.DeviceHandle
	}{
		{"nil", nil},
		{"no hal", render.NullDeviceHandle{}},
		{"wrong types", halHandle{device: "device", queue: "queue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromProvider(tt.provider, Options{})
			if !errors.Is(err, backend.ErrNoProvider) {
				t.Errorf("FromProvider error = %v, want ErrNoProvider", err)
			}
		})
	}

	device, queue := createNoopDevice(t)
	d, err := FromProvider(halHandle{device: device, queue: queue}, Options{})
	if err != nil {
		t.Fatalf("FromProvider: %v", err)
	}
	d.Close()
}

func TestRegisteredBackend(t *testing.T) {
	if !backend.IsRegistered(backend.BackendWGPU) {
		t.Fatal("wgpu backend not registered")
	}
	_, err := backend.Get(backend.BackendWGPU, backend.Options{})
	if !errors.Is(err, backend.ErrNoProvider) {
		t.Errorf("Get without provider error = %v, want ErrNoProvider", err)
	}
}

func TestCompileProgram(t *testing.T) {
	d := newDevice(t, Options{})
	for _, kind := range []render.ProgramKind{render.ProgramDownsample, render.ProgramUpsample, render.ProgramNoise} {
		p := compile(t, d, kind)
		if p.Kind() != kind {
			t.Errorf("Kind() = %v, want %v", p.Kind(), kind)
		}
	}

	_, err := d.CompileProgram(render.ProgramDescriptor{Label: "bad", Kind: 99, Source: "x"})
	if !errors.Is(err, render.ErrProgram) {
		t.Errorf("unknown kind error = %v, want ErrProgram", err)
	}
	_, err = d.CompileProgram(render.ProgramDescriptor{Label: "empty", Kind: render.ProgramNoise})
	if !errors.Is(err, render.ErrProgram) {
		t.Errorf("empty source error = %v, want ErrProgram", err)
	}
}

func TestAllocateTexture(t *testing.T) {
	budget := render.NewBudgetBytes(64 * 64 * 4)
	d := newDevice(t, Options{Budget: budget})

	tests := []struct {
		name    string
		desc    render.TextureDescriptor
		wantErr error
	}{
		{"rgba", render.DefaultTextureDescriptor(64, 64, gputypes.TextureFormatRGBA8Unorm), nil},
		{"empty", render.DefaultTextureDescriptor(0, 8, gputypes.TextureFormatRGBA8Unorm), render.ErrAllocation},
		{"format", render.DefaultTextureDescriptor(8, 8, gputypes.TextureFormatDepth24PlusStencil8), render.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := d.AllocateTexture(tt.desc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tex.Width() != tt.desc.Width || tex.Height() != tt.desc.Height || tex.Format() != tt.desc.Format {
				t.Errorf("texture = %dx%d %v", tex.Width(), tex.Height(), tex.Format())
			}
			tex.Destroy()
			tex.Destroy()
		})
	}
	if got := budget.Stats().UsedBytes; got != 0 {
		t.Errorf("budget in use after destroy = %d", got)
	}
}

func TestAllocateOverBudget(t *testing.T) {
	budget := render.NewBudgetBytes(16 * 16 * 4)
	d := newDevice(t, Options{Budget: budget})

	tex, err := d.AllocateTexture(render.DefaultTextureDescriptor(16, 16, gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Destroy()
	_, err = d.AllocateTexture(render.DefaultTextureDescriptor(1, 1, gputypes.TextureFormatRGBA8Unorm))
	if !errors.Is(err, render.ErrBudgetExceeded) || !errors.Is(err, render.ErrAllocation) {
		t.Errorf("error = %v, want ErrAllocation wrapping ErrBudgetExceeded", err)
	}
}

func TestUploadTexture(t *testing.T) {
	d := newDevice(t, Options{})
	desc := render.TextureDescriptor{
		Label:       "noise",
		Width:       4,
		Height:      4,
		Format:      gputypes.TextureFormatR8Unorm,
		Usage:       render.TextureUsageTextureBinding,
		AddressMode: render.AddressRepeat,
		Filter:      render.FilterNearest,
	}
	tex, err := d.UploadTexture(desc, make([]byte, 16))
	if err != nil {
		t.Fatalf("UploadTexture: %v", err)
	}
	tex.Destroy()

	if _, err := d.UploadTexture(desc, make([]byte, 15)); !errors.Is(err, render.ErrAllocation) {
		t.Errorf("short upload error = %v, want ErrAllocation", err)
	}
}

func TestCreateFramebuffer(t *testing.T) {
	d := newDevice(t, Options{})
	other := newDevice(t, Options{})

	renderable, err := d.AllocateTexture(render.DefaultTextureDescriptor(8, 8, gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		t.Fatal(err)
	}
	defer renderable.Destroy()
	fb, err := d.CreateFramebuffer(renderable)
	if err != nil {
		t.Fatalf("CreateFramebuffer: %v", err)
	}
	if fb.ColorAttachment() != renderable {
		t.Error("ColorAttachment does not return the texture")
	}

	sampled, err := d.AllocateTexture(render.TextureDescriptor{
		Width: 8, Height: 8, Format: gputypes.TextureFormatRGBA8Unorm, Usage: render.TextureUsageTextureBinding,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sampled.Destroy()
	if _, err := d.CreateFramebuffer(sampled); !errors.Is(err, render.ErrAllocation) {
		t.Errorf("non-attachment error = %v, want ErrAllocation", err)
	}
	if _, err := other.CreateFramebuffer(renderable); !errors.Is(err, render.ErrAllocation) {
		t.Errorf("foreign texture error = %v, want ErrAllocation", err)
	}
}

func TestStreamingBuffer(t *testing.T) {
	d := newDevice(t, Options{MaxVertices: 12})
	vbo := d.StreamingBuffer()

	if err := vbo.Unmap(); !errors.Is(err, render.ErrVertexBuffer) {
		t.Errorf("Unmap before Map error = %v", err)
	}
	if _, err := vbo.Map(6); err != nil {
		t.Fatal(err)
	}
	if _, err := vbo.Map(6); !errors.Is(err, render.ErrVertexBuffer) {
		t.Errorf("double Map error = %v", err)
	}
	if err := vbo.Unmap(); err != nil {
		t.Fatal(err)
	}
	if _, err := vbo.Map(7); !errors.Is(err, render.ErrVertexBuffer) {
		t.Errorf("over capacity error = %v", err)
	}
	if err := d.vbo.check(0, 6); err != nil {
		t.Errorf("check(0, 6) = %v", err)
	}
	if err := d.vbo.check(3, 6); !errors.Is(err, render.ErrVertexBuffer) {
		t.Errorf("check(3, 6) = %v", err)
	}
	vbo.Reset()
	if err := d.vbo.check(0, 6); !errors.Is(err, render.ErrVertexBuffer) {
		t.Errorf("check after Reset = %v", err)
	}
}

func TestBlendFor(t *testing.T) {
	tests := []struct {
		name        string
		blend       render.Blend
		wantMode    blendMode
		wantOpacity float32
	}{
		{"replace", render.Blend{}, blendReplace, 1},
		{"opacity", render.OpacityBlend(0.75), blendPremultiplied, 0.75},
		{"additive", render.AdditiveBlend(), blendAdditive, 1},
		{"constant additive", render.ConstantAdditiveBlend(0.25), blendAdditive, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, opacity := blendFor(tt.blend)
			if mode != tt.wantMode || opacity != tt.wantOpacity {
				t.Errorf("blendFor = (%d, %v), want (%d, %v)", mode, opacity, tt.wantMode, tt.wantOpacity)
			}
		})
	}
}

func TestPackUniforms(t *testing.T) {
	u := render.Uniforms{
		MVP:              render.Ortho(0, 0, 100, 50),
		Offset:           2.5,
		HalfPixel:        [2]float32{0.01, 0.02},
		NoiseTextureSize: [2]float32{256, 256},
		TexStartPos:      [2]float32{10, 20},
	}
	buf := packUniforms(u, 0.5)
	if len(buf) != shaders.UniformSize {
		t.Fatalf("len = %d, want %d", len(buf), shaders.UniformSize)
	}
	at := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }

	checks := []struct {
		name string
		off  int
		want float32
	}{
		{"mvp[0]", shaders.OffsetMVP, u.MVP[0]},
		{"mvp[13]", shaders.OffsetMVP + 13*4, u.MVP[13]},
		{"half pixel y", shaders.OffsetHalfPixel + 4, 0.02},
		{"offset", shaders.OffsetOffset, 2.5},
		{"opacity", shaders.OffsetOpacity, 0.5},
		{"noise size", shaders.OffsetNoiseTextureSize, 256},
		{"start y", shaders.OffsetTexStartPos + 4, 20},
	}
	for _, c := range checks {
		if got := at(c.off); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestEncodeVertices(t *testing.T) {
	buf := encodeVertices([]render.Vertex2D{{Position: [2]float32{1, 2}, TexCoord: [2]float32{0.25, 0.75}}})
	if len(buf) != vertexStride {
		t.Fatalf("len = %d", len(buf))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])); got != 0.75 {
		t.Errorf("v = %v, want 0.75", got)
	}
}

func TestDrawToFramebuffer(t *testing.T) {
	d := newDevice(t, Options{})
	prog := compile(t, d, render.ProgramDownsample)

	src, err := d.UploadTexture(render.DefaultTextureDescriptor(8, 8, gputypes.TextureFormatRGBA8Unorm), make([]byte, 8*8*4))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Destroy()
	dst, err := d.AllocateTexture(render.DefaultTextureDescriptor(4, 4, gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Destroy()
	fb, err := d.CreateFramebuffer(dst)
	if err != nil {
		t.Fatal(err)
	}

	quad(t, d.StreamingBuffer(), 4, 4)
	for _, blend := range []render.Blend{{}, render.OpacityBlend(0.5), render.AdditiveBlend()} {
		err := d.Draw(render.DrawCall{
			Program:  prog,
			Source:   src,
			Target:   fb,
			Vertices: d.StreamingBuffer(),
			Count:    6,
			Uniforms: render.Uniforms{MVP: render.Ortho(0, 0, 4, 4), Offset: 1},
			Blend:    blend,
		})
		if err != nil {
			t.Fatalf("Draw(%+v): %v", blend, err)
		}
	}
	if n := len(prog.(*program).pipelines); n != 3 {
		t.Errorf("pipelines = %d, want 3", n)
	}
}

func TestDrawToPixmapScreen(t *testing.T) {
	d := newDevice(t, Options{})
	prog := compile(t, d, render.ProgramUpsample)

	src, err := d.AllocateTexture(render.DefaultTextureDescriptor(8, 8, gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Destroy()

	screen := render.NewPixmapTarget(32, 16)
	quad(t, d.StreamingBuffer(), 32, 16)
	err = d.Draw(render.DrawCall{
		Program:  prog,
		Source:   src,
		Screen:   screen,
		Vertices: d.StreamingBuffer(),
		Count:    6,
		Uniforms: render.Uniforms{MVP: render.Ortho(0, 0, 32, 16)},
		Blend:    render.OpacityBlend(1),
	})
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if d.mirror == nil || d.mirror.Width() != 32 || d.mirror.Height() != 16 {
		t.Error("screen mirror not allocated at target size")
	}
}

func TestDrawErrors(t *testing.T) {
	d := newDevice(t, Options{})
	prog := compile(t, d, render.ProgramNoise)
	src, err := d.AllocateTexture(render.DefaultTextureDescriptor(4, 4, gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Destroy()
	quad(t, d.StreamingBuffer(), 4, 4)

	base := render.DrawCall{Program: prog, Source: src, Screen: render.NewPixmapTarget(4, 4), Vertices: d.StreamingBuffer(), Count: 6}
	tests := []struct {
		name    string
		mutate  func(*render.DrawCall)
		wantErr error
	}{
		{"no program", func(c *render.DrawCall) { c.Program = nil }, render.ErrProgram},
		{"no source", func(c *render.DrawCall) { c.Source = nil }, render.ErrInvalidTarget},
		{"range", func(c *render.DrawCall) { c.First = 4 }, render.ErrVertexBuffer},
		{"no target", func(c *render.DrawCall) { c.Screen = nil }, render.ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := base
			tt.mutate(&call)
			if err := d.Draw(call); !errors.Is(err, tt.wantErr) {
				t.Errorf("Draw error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlitFromPixmap(t *testing.T) {
	d := newDevice(t, Options{})
	dst, err := d.AllocateTexture(render.DefaultTextureDescriptor(10, 10, gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Destroy()
	fb, err := d.CreateFramebuffer(dst)
	if err != nil {
		t.Fatal(err)
	}

	screen := render.NewPixmapTarget(40, 40)
	vp := render.NewViewport(image.Rect(0, 0, 20, 20), 2)
	if err := d.BlitFromTarget(screen, vp, image.Rect(0, 0, 10, 10), fb, image.Rect(0, 0, 10, 10)); err != nil {
		t.Errorf("scaled blit: %v", err)
	}
	if err := d.BlitFromTarget(screen, vp, image.Rect(5, 5, 10, 10), fb, image.Rect(-2, -2, 8, 8)); err != nil {
		t.Errorf("clipped blit: %v", err)
	}
	if err := d.BlitFromTarget(screen, vp, image.Rect(0, 0, 5, 5), nil, image.Rect(0, 0, 5, 5)); !errors.Is(err, render.ErrInvalidTarget) {
		t.Errorf("nil framebuffer error = %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	device, queue := createNoopDevice(t)
	d, err := New(device, queue, Options{})
	if err != nil {
		t.Fatal(err)
	}
	d.Close()
	d.Close()
	if _, err := d.AllocateTexture(render.DefaultTextureDescriptor(1, 1, gputypes.TextureFormatRGBA8Unorm)); !errors.Is(err, ErrClosed) {
		t.Errorf("AllocateTexture after Close error = %v, want ErrClosed", err)
	}
}

// halHandle is a device provider exposing HAL types.
type halHandle struct {
	render.NullDeviceHandle
	device any
	queue  any
}

func (h halHandle) HalDevice() any { return h.device }
func (h halHandle) HalQueue() any  { return h.queue }
