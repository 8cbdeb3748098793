package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/frost/render"
	"github.com/gogpu/frost/shaders"
)

// SurfaceView is a host texture view the device can render into and
// sample from directly. Hosts whose RenderTarget.TextureView returns a
// SurfaceView skip the CPU mirror.
type SurfaceView interface {
	render.TextureView

	// HalTexture returns the texture behind the view.
	HalTexture() hal.Texture

	// HalView returns the view itself.
	HalView() hal.TextureView
}

// attachment is a resolved color target of a draw.
type attachment struct {
	view   hal.TextureView
	format gputypes.TextureFormat

	// mirror is set when the screen is CPU memory copied through a texture.
	mirror *texture
	screen render.RenderTarget
}

// Draw records, submits and waits for one draw call.
func (d *Device) Draw(call render.DrawCall) error {
	if d.closed {
		return ErrClosed
	}
	prog, ok := call.Program.(*program)
	if !ok || prog.shader == nil || prog.dev != d {
		return fmt.Errorf("%w: program %T", render.ErrProgram, call.Program)
	}
	src, ok := call.Source.(*texture)
	if !ok || src.tex == nil || src.dev != d {
		return fmt.Errorf("%w: source texture %T", render.ErrInvalidTarget, call.Source)
	}
	vbo, ok := call.Vertices.(*vertexBuffer)
	if !ok || vbo != d.vbo {
		return fmt.Errorf("%w: vertex buffer %T", render.ErrVertexBuffer, call.Vertices)
	}
	if err := vbo.check(call.First, call.Count); err != nil {
		return err
	}

	att, err := d.resolveTarget(call.Target, call.Screen)
	if err != nil {
		return err
	}
	if err := d.drawQuads(prog, src.view, src.desc, att, vbo, call.First, call.Count, call.Uniforms, call.Blend); err != nil {
		return err
	}
	return d.flushMirror(att)
}

// BlitFromTarget copies srcRect of the host target into dstRect of dst.
func (d *Device) BlitFromTarget(src render.RenderTarget, vp render.Viewport, srcRect image.Rectangle, dst render.Framebuffer, dstRect image.Rectangle) error {
	if d.closed {
		return ErrClosed
	}
	fb, ok := dst.(*framebuffer)
	if !ok || fb.tex.tex == nil || fb.tex.dev != d {
		return fmt.Errorf("%w: framebuffer %T", render.ErrInvalidTarget, dst)
	}
	from := vp.MapToTarget(srcRect)
	bounds := image.Rect(0, 0, int(fb.tex.desc.Width), int(fb.tex.desc.Height))
	if from.Empty() || dstRect.Intersect(bounds).Empty() {
		return nil
	}

	if sv, ok := src.TextureView().(SurfaceView); ok {
		return d.blitSurface(sv, src, from, fb.tex, dstRect)
	}
	if src.Pixels() == nil {
		return fmt.Errorf("%w: target has neither pixels nor a surface view", render.ErrInvalidTarget)
	}
	return d.blitPixels(src, from, fb.tex, dstRect)
}

// blitPixels scales a CPU target region on the host and uploads it.
func (d *Device) blitPixels(src render.RenderTarget, from image.Rectangle, dst *texture, dstRect image.Rectangle) error {
	img := &image.RGBA{
		Pix:    src.Pixels(),
		Stride: src.Stride(),
		Rect:   image.Rect(0, 0, src.Width(), src.Height()),
	}
	staging := image.NewRGBA(image.Rect(0, 0, dstRect.Dx(), dstRect.Dy()))
	if from.Dx() == dstRect.Dx() && from.Dy() == dstRect.Dy() {
		draw.Draw(staging, staging.Bounds(), img, from.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(staging, staging.Bounds(), img, from, draw.Src, nil)
	}

	// Clip to the destination texture.
	to := dstRect.Intersect(image.Rect(0, 0, int(dst.desc.Width), int(dst.desc.Height)))
	sub := staging.SubImage(to.Sub(dstRect.Min)).(*image.RGBA)
	rows := make([]byte, 0, to.Dx()*to.Dy()*4)
	for y := range to.Dy() {
		o := y * sub.Stride
		rows = append(rows, sub.Pix[o:o+to.Dx()*4]...)
	}
	//nolint:gosec // G115: rectangle is clipped to the texture
	d.writeTexture(dst, uint32(to.Min.X), uint32(to.Min.Y), uint32(to.Dx()), uint32(to.Dy()), uint32(to.Dx()*4), rows)
	return nil
}

// blitSurface renders a textured quad sampling the host surface. The
// downsample kernel with a zero offset reduces to a bilinear copy.
func (d *Device) blitSurface(sv SurfaceView, src render.RenderTarget, from image.Rectangle, dst *texture, dstRect image.Rectangle) error {
	if d.blit == nil {
		desc, err := shaders.Descriptor(render.ProgramDownsample)
		if err != nil {
			return err
		}
		desc.Label = "frost_blit"
		p, err := d.CompileProgram(desc)
		if err != nil {
			return err
		}
		d.blit = p.(*program)
		d.blitVBO = &vertexBuffer{dev: d}
	}

	sw, sh := float32(src.Width()), float32(src.Height())
	x0, y0 := float32(dstRect.Min.X), float32(dstRect.Min.Y)
	x1, y1 := float32(dstRect.Max.X), float32(dstRect.Max.Y)
	u0, v0 := float32(from.Min.X)/sw, float32(from.Min.Y)/sh
	u1, v1 := float32(from.Max.X)/sw, float32(from.Max.Y)/sh

	d.blitVBO.Reset()
	verts, err := d.blitVBO.Map(6)
	if err != nil {
		return err
	}
	copy(verts, []render.Vertex2D{
		{Position: [2]float32{x0, y0}, TexCoord: [2]float32{u0, v0}},
		{Position: [2]float32{x1, y0}, TexCoord: [2]float32{u1, v0}},
		{Position: [2]float32{x0, y1}, TexCoord: [2]float32{u0, v1}},
		{Position: [2]float32{x1, y0}, TexCoord: [2]float32{u1, v0}},
		{Position: [2]float32{x1, y1}, TexCoord: [2]float32{u1, v1}},
		{Position: [2]float32{x0, y1}, TexCoord: [2]float32{u0, v1}},
	})
	if err := d.blitVBO.Unmap(); err != nil {
		return err
	}

	srcDesc := render.TextureDescriptor{Filter: render.FilterLinear, AddressMode: render.AddressClampToEdge}
	att := attachment{view: dst.view, format: dst.desc.Format}
	u := render.Uniforms{
		MVP:       render.Ortho(0, 0, float32(dst.desc.Width), float32(dst.desc.Height)),
		HalfPixel: [2]float32{0.5 / sw, 0.5 / sh},
	}
	return d.drawQuads(d.blit, sv.HalView(), srcDesc, att, d.blitVBO, 0, 6, u, render.Blend{})
}

// resolveTarget finds the view a draw renders into.
func (d *Device) resolveTarget(target render.Framebuffer, screen render.RenderTarget) (attachment, error) {
	if target != nil {
		fb, ok := target.(*framebuffer)
		if !ok || fb.tex.tex == nil || fb.tex.dev != d {
			return attachment{}, fmt.Errorf("%w: framebuffer %T", render.ErrInvalidTarget, target)
		}
		return attachment{view: fb.tex.view, format: fb.tex.desc.Format}, nil
	}
	if screen == nil {
		return attachment{}, fmt.Errorf("%w: no target", render.ErrInvalidTarget)
	}
	if sv, ok := screen.TextureView().(SurfaceView); ok {
		return attachment{view: sv.HalView(), format: screen.Format()}, nil
	}
	if screen.Pixels() == nil {
		return attachment{}, fmt.Errorf("%w: target has neither pixels nor a surface view", render.ErrInvalidTarget)
	}

	m, err := d.ensureMirror(screen)
	if err != nil {
		return attachment{}, err
	}
	//nolint:gosec // G115: target sizes are positive
	d.writeTexture(m, 0, 0, m.desc.Width, m.desc.Height, uint32(screen.Stride()), screen.Pixels())
	return attachment{view: m.view, format: m.desc.Format, mirror: m, screen: screen}, nil
}

// ensureMirror returns a texture matching the size and format of screen.
func (d *Device) ensureMirror(screen render.RenderTarget) (*texture, error) {
	w, h := uint32(screen.Width()), uint32(screen.Height()) //nolint:gosec // G115: target sizes are positive
	if m := d.mirror; m != nil && m.desc.Width == w && m.desc.Height == h && m.desc.Format == screen.Format() {
		return m, nil
	}
	if d.mirror != nil {
		d.mirror.Destroy()
		d.mirror = nil
	}
	m, err := d.allocate(render.TextureDescriptor{
		Label:  "frost_screen_mirror",
		Width:  w,
		Height: h,
		Format: screen.Format(),
		Usage:  render.TextureUsageRenderAttachment | render.TextureUsageCopyDst | render.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, err
	}
	d.logger.Debug("wgpu: screen mirror allocated", "width", w, "height", h)
	d.mirror = m
	return m, nil
}

// flushMirror copies a mirrored screen back to host memory.
func (d *Device) flushMirror(att attachment) error {
	if att.mirror == nil {
		return nil
	}
	pix, err := d.readTexture(att.mirror)
	if err != nil {
		return err
	}
	dst, stride := att.screen.Pixels(), att.screen.Stride()
	row := int(att.mirror.desc.Width) * render.BytesPerPixel(att.mirror.desc.Format)
	for y := range int(att.mirror.desc.Height) {
		copy(dst[y*stride:y*stride+row], pix[y*row:(y+1)*row])
	}
	return nil
}

// drawQuads encodes a single render pass that loads the attachment, draws
// count vertices of vbo and stores the result.
func (d *Device) drawQuads(prog *program, src hal.TextureView, srcDesc render.TextureDescriptor, att attachment,
	vbo *vertexBuffer, first, count int, u render.Uniforms, b render.Blend) error {
	mode, opacity := blendFor(b)
	pipeline, err := prog.pipeline(pipelineKey{format: att.format, blend: mode})
	if err != nil {
		return err
	}
	sampler, err := d.sampler(srcDesc)
	if err != nil {
		return err
	}
	d.queue.WriteBuffer(d.uniforms, 0, packUniforms(u, opacity))

	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "frost_bind",
		Layout: d.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: d.uniforms.NativeHandle(), Offset: 0, Size: shaders.UniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: src.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bindGroup)

	encoder, err := d.beginEncoding(prog.label)
	if err != nil {
		return err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: prog.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    att.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vbo.buf, 0)
	//nolint:gosec // G115: draw ranges are checked against the buffer
	rp.Draw(uint32(count), 1, uint32(first), 0)
	rp.End()

	if err := d.submit(encoder); err != nil {
		return fmt.Errorf("%s: %w", prog.label, err)
	}
	return nil
}
