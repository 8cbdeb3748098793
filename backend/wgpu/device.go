package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/frost/backend"
	"github.com/gogpu/frost/render"
)

// ErrClosed is returned by a Device after Close.
var ErrClosed = errors.New("wgpu: device closed")

// waitTimeout bounds the wait for each submission.
const waitTimeout = 5 * time.Second

// Options configures a Device.
type Options struct {
	// Budget limits texture memory. Nil means unlimited.
	Budget *render.Budget

	// MaxVertices caps the streaming vertex buffer. Zero means unlimited.
	MaxVertices int

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Device is a render.Device on a HAL device and queue it does not own.
//
// Device is not safe for concurrent use.
type Device struct {
	device hal.Device
	queue  hal.Queue
	budget *render.Budget
	logger *slog.Logger

	// Shared by every program.
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	uniforms   hal.Buffer
	samplers   map[samplerKey]hal.Sampler

	vbo    *vertexBuffer
	mirror *texture

	// Lazily created for blits from surface views.
	blit    *program
	blitVBO *vertexBuffer

	closed bool
}

// New creates a device on an open HAL device and queue.
func New(device hal.Device, queue hal.Queue, opts Options) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: nil HAL device or queue")
	}
	d := &Device{
		device:   device,
		queue:    queue,
		budget:   opts.Budget,
		samplers: make(map[samplerKey]hal.Sampler),
	}
	d.SetLogger(opts.Logger)
	d.vbo = &vertexBuffer{dev: d, capacity: opts.MaxVertices}

	if err := d.createLayouts(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// FromProvider creates a device on the host's GPU device. The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func FromProvider(provider render.DeviceHandle, opts Options) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, backend.ErrNoProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not expose HAL types", backend.ErrNoProvider, provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", backend.ErrNoProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", backend.ErrNoProvider)
	}
	d, err := New(device, queue, opts)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("wgpu: device from provider", "surface_format", provider.SurfaceFormat())
	return d, nil
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

// Close releases the device's shared resources. Textures and programs
// created by the device must be destroyed by their owners. The HAL device
// itself belongs to the host and is left open.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true
	if d.mirror != nil {
		d.mirror.Destroy()
		d.mirror = nil
	}
	if d.blit != nil {
		d.blit.Destroy()
		d.blitVBO.destroy()
		d.blit, d.blitVBO = nil, nil
	}
	d.vbo.destroy()
	for k, s := range d.samplers {
		d.device.DestroySampler(s)
		delete(d.samplers, k)
	}
	if d.uniforms != nil {
		d.device.DestroyBuffer(d.uniforms)
		d.uniforms = nil
	}
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.bindLayout != nil {
		d.device.DestroyBindGroupLayout(d.bindLayout)
		d.bindLayout = nil
	}
}

// AllocateTexture creates an uninitialized texture.
func (d *Device) AllocateTexture(desc render.TextureDescriptor) (render.Texture, error) {
	return d.allocate(desc)
}

// UploadTexture creates a texture holding tightly packed pixels.
func (d *Device) UploadTexture(desc render.TextureDescriptor, pixels []byte) (render.Texture, error) {
	desc.Usage |= render.TextureUsageCopyDst
	t, err := d.allocate(desc)
	if err != nil {
		return nil, err
	}
	bpp := render.BytesPerPixel(desc.Format)
	if want := int(desc.Width) * int(desc.Height) * bpp; len(pixels) != want {
		t.Destroy()
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %v", render.ErrAllocation, len(pixels), desc.Width, desc.Height, desc.Format)
	}
	d.writeTexture(t, 0, 0, desc.Width, desc.Height, uint32(bpp)*desc.Width, pixels)
	return t, nil
}

// CreateFramebuffer makes a texture created by this device renderable.
func (d *Device) CreateFramebuffer(tex render.Texture) (render.Framebuffer, error) {
	t, ok := tex.(*texture)
	if !ok || t.dev != d || t.tex == nil {
		return nil, fmt.Errorf("%w: texture %T not owned by device", render.ErrAllocation, tex)
	}
	if t.desc.Usage&render.TextureUsageRenderAttachment == 0 {
		return nil, fmt.Errorf("%w: texture %q is not a render attachment", render.ErrAllocation, t.desc.Label)
	}
	return &framebuffer{tex: t}, nil
}

// StreamingBuffer returns the shared streaming vertex buffer.
func (d *Device) StreamingBuffer() render.VertexBuffer { return d.vbo }

// Compile-time check.
var _ render.Device = (*Device)(nil)

// submit ends the encoder, submits it and waits for completion.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, waitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

func (d *Device) beginEncoding(label string) (hal.CommandEncoder, error) {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return encoder, nil
}

func halFormat(f gputypes.TextureFormat) (gputypes.TextureFormat, error) {
	switch f {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return f, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %v", render.ErrUnsupportedFormat, f)
	}
}
