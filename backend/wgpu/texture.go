package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/frost/render"
)

// texture is a HAL texture with its default view.
type texture struct {
	dev  *Device
	desc render.TextureDescriptor
	size uint64

	tex  hal.Texture
	view hal.TextureView
}

func (t *texture) Width() uint32                  { return t.desc.Width }
func (t *texture) Height() uint32                 { return t.desc.Height }
func (t *texture) Format() gputypes.TextureFormat { return t.desc.Format }

// Destroy releases the view, the texture and its budget reservation.
func (t *texture) Destroy() {
	if t.tex == nil {
		return
	}
	if t.view != nil {
		t.dev.device.DestroyTextureView(t.view)
		t.view = nil
	}
	t.dev.device.DestroyTexture(t.tex)
	t.tex = nil
	t.dev.budget.Release(t.size)
}

type framebuffer struct {
	tex *texture
}

func (f *framebuffer) ColorAttachment() render.Texture { return f.tex }
func (f *framebuffer) Destroy()                        {}

func (d *Device) allocate(desc render.TextureDescriptor) (*texture, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: %s: empty texture %dx%d", render.ErrAllocation, desc.Label, desc.Width, desc.Height)
	}
	format, err := halFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	size := render.TextureBytes(desc)
	if err := d.budget.Reserve(size); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", render.ErrAllocation, desc.Label, err)
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		// Readback of mirrored screens needs CopySrc on every texture.
		Usage: halUsage(desc.Usage) | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		d.budget.Release(size)
		return nil, fmt.Errorf("%w: %s: %w", render.ErrAllocation, desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		d.budget.Release(size)
		return nil, fmt.Errorf("%w: %s view: %w", render.ErrAllocation, desc.Label, err)
	}
	return &texture{dev: d, desc: desc, size: size, tex: tex, view: view}, nil
}

// writeTexture uploads w x h texels at (x, y).
func (d *Device) writeTexture(t *texture, x, y, w, h, bytesPerRow uint32, data []byte) {
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: x, Y: y, Z: 0},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

// readTexture copies the whole texture into tightly packed rows.
func (d *Device) readTexture(t *texture) ([]byte, error) {
	w, h := t.desc.Width, t.desc.Height
	bpp := uint32(render.BytesPerPixel(t.desc.Format)) //nolint:gosec // G115: bytes per pixel is 1 or 4
	bytesPerRow := w * bpp
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	encoder, err := d.beginEncoding("frost_readback")
	if err != nil {
		return nil, err
	}
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "frost_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := d.submit(encoder); err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	if alignedBytesPerRow == bytesPerRow {
		return readback, nil
	}
	tight := make([]byte, uint64(bytesPerRow)*uint64(h))
	for row := range h {
		src := int(row) * int(alignedBytesPerRow)
		dst := int(row) * int(bytesPerRow)
		copy(tight[dst:dst+int(bytesPerRow)], readback[src:src+int(bytesPerRow)])
	}
	return tight, nil
}

func halUsage(u render.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&render.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&render.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&render.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&render.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}
