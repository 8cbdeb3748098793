// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host compositor.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider so that any host in
// the gpucontext ecosystem can hand its device to backend/wgpu unchanged.
type DeviceHandle = gpucontext.DeviceProvider

// Device is the set of GPU operations the blur stage needs.
//
// All methods are called from the compositor's render thread. Implementations
// do not need to be safe for concurrent use.
type Device interface {
	// CompileProgram compiles a shader program. Errors wrap ErrProgram.
	CompileProgram(desc ProgramDescriptor) (Program, error)

	// AllocateTexture creates an uninitialized texture. Errors wrap
	// ErrAllocation, ErrUnsupportedFormat or ErrBudgetExceeded.
	AllocateTexture(desc TextureDescriptor) (Texture, error)

	// UploadTexture creates a texture initialized from tightly packed pixels
	// in desc.Format.
	UploadTexture(desc TextureDescriptor, pixels []byte) (Texture, error)

	// CreateFramebuffer makes tex renderable. Errors wrap ErrAllocation.
	CreateFramebuffer(tex Texture) (Framebuffer, error)

	// StreamingBuffer returns the device's shared streaming vertex buffer.
	StreamingBuffer() VertexBuffer

	// BlitFromTarget copies srcRect of the host target, in logical
	// coordinates of vp, into dstRect of dst, scaling as needed.
	BlitFromTarget(src RenderTarget, vp Viewport, srcRect image.Rectangle, dst Framebuffer, dstRect image.Rectangle) error

	// Draw executes one draw call.
	Draw(call DrawCall) error
}

// ProgramKind identifies the fragment stage of a program.
type ProgramKind uint8

const (
	// ProgramDownsample halves the source with a five-tap Kawase kernel.
	ProgramDownsample ProgramKind = iota

	// ProgramUpsample doubles the source with an eight-tap Kawase kernel.
	ProgramUpsample

	// ProgramNoise samples a repeating grayscale noise texture.
	ProgramNoise
)

// String returns the program kind name.
func (k ProgramKind) String() string {
	switch k {
	case ProgramDownsample:
		return "downsample"
	case ProgramUpsample:
		return "upsample"
	case ProgramNoise:
		return "noise"
	default:
		return "unknown"
	}
}

// ProgramDescriptor describes a shader program.
type ProgramDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Kind selects the fragment stage.
	Kind ProgramKind

	// Source is the WGSL source containing vs_main and fs_main.
	Source string
}

// Program is a compiled shader program.
type Program interface {
	// Kind returns the fragment stage the program implements.
	Kind() ProgramKind

	// Destroy releases the program.
	Destroy()
}

// TextureDescriptor describes parameters for creating a texture.
// This mirrors the WebGPU GPUTextureDescriptor specification.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage TextureUsage

	// Filter is the sampling filter used when the texture is read.
	Filter FilterMode

	// AddressMode is applied to both texture axes.
	AddressMode AddressMode
}

// TextureUsage specifies how a texture can be used.
// These flags can be combined with bitwise OR.
type TextureUsage uint32

const (
	// TextureUsageCopySrc allows the texture to be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << iota

	// TextureUsageCopyDst allows the texture to be used as a copy destination.
	TextureUsageCopyDst

	// TextureUsageTextureBinding allows the texture to be used in a texture binding.
	TextureUsageTextureBinding

	// TextureUsageRenderAttachment allows the texture to be used as a render attachment.
	TextureUsageRenderAttachment
)

// FilterMode selects texture sampling interpolation.
type FilterMode uint8

const (
	// FilterLinear interpolates between the four nearest texels.
	FilterLinear FilterMode = iota

	// FilterNearest picks the nearest texel.
	FilterNearest
)

// AddressMode selects how coordinates outside [0, 1] are resolved.
type AddressMode uint8

const (
	// AddressClampToEdge clamps to the border texels.
	AddressClampToEdge AddressMode = iota

	// AddressRepeat wraps around.
	AddressRepeat
)

// Texture represents a GPU texture resource.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases GPU resources associated with this texture.
	Destroy()
}

// TextureView represents a view into a texture owned by the host.
type TextureView interface {
	// Destroy releases resources associated with this view.
	Destroy()
}

// Framebuffer is a texture bound as a render attachment.
type Framebuffer interface {
	// ColorAttachment returns the texture rendered into.
	ColorAttachment() Texture

	// Destroy releases the framebuffer. The attachment is not destroyed.
	Destroy()
}

// Vertex2D is a position and texture coordinate pair.
type Vertex2D struct {
	Position [2]float32
	TexCoord [2]float32
}

// VertexBuffer is a streaming vertex buffer rewritten every draw batch.
type VertexBuffer interface {
	// Reset discards previously uploaded vertices.
	Reset()

	// Map returns a slice of count vertices to fill. Errors wrap
	// ErrVertexBuffer.
	Map(count int) ([]Vertex2D, error)

	// Unmap uploads the mapped vertices.
	Unmap() error
}

// DrawCall is one draw of a triangle list.
type DrawCall struct {
	// Program is the shader program.
	Program Program

	// Source is the texture bound to the fragment stage.
	Source Texture

	// Target receives the output. When nil the draw goes to Screen.
	Target Framebuffer

	// Screen is the host render target used when Target is nil.
	Screen RenderTarget

	// Vertices holds the geometry; First and Count select the range.
	Vertices VertexBuffer
	First    int
	Count    int

	// Uniforms are the program parameters.
	Uniforms Uniforms

	// Blend is the color blend state.
	Blend Blend
}

// Uniforms are the parameters shared by all blur programs.
type Uniforms struct {
	// MVP maps vertex positions to normalized device coordinates.
	MVP Matrix

	// Offset scales the Kawase sample distance.
	Offset float32

	// HalfPixel is half a texel of the source texture in texture coordinates.
	HalfPixel [2]float32

	// NoiseTextureSize is the noise texture size in pixels.
	NoiseTextureSize [2]float32

	// TexStartPos is the device-pixel origin of the blurred area.
	TexStartPos [2]float32
}

// DefaultTextureDescriptor returns a TextureDescriptor for a linearly
// filtered, edge-clamped texture that can be rendered to and sampled.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:       width,
		Height:      height,
		Format:      format,
		Usage:       TextureUsageTextureBinding | TextureUsageRenderAttachment | TextureUsageCopyDst,
		Filter:      FilterLinear,
		AddressMode: AddressClampToEdge,
	}
}

// BytesPerPixel returns the storage size of one texel of format, or 0 when
// the format is not one the blur stage uses.
func BytesPerPixel(format gputypes.TextureFormat) int {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
