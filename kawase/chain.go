package kawase

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/frost/render"
)

// ChainKey identifies the render chain of a window on an output. Output is
// zero where outputs are not tracked separately.
type ChainKey struct {
	Window uint64
	Output uint64
}

// chain holds the offscreen levels of one blur. Level 0 receives the
// unblurred background, level i is 1/2^i of its size.
type chain struct {
	textures     []render.Texture
	framebuffers []render.Framebuffer
	size         image.Point
	format       gputypes.TextureFormat
}

// matches reports whether the chain can be reused as is.
func (c *chain) matches(levels int, size image.Point, format gputypes.TextureFormat) bool {
	return len(c.framebuffers) == levels && c.size == size && c.format == format
}

// ensure reallocates the chain unless it already matches. Allocation is all
// or nothing: on failure the chain is left empty.
func (c *chain) ensure(dev render.Device, levels int, size image.Point, format gputypes.TextureFormat) error {
	if c.matches(levels, size, format) {
		return nil
	}
	c.destroy()

	for i := range levels {
		w, h := size.X>>i, size.Y>>i
		if w <= 0 || h <= 0 {
			c.destroy()
			return fmt.Errorf("%w: level %d of %v is empty", render.ErrAllocation, i, size)
		}
		desc := render.DefaultTextureDescriptor(uint32(w), uint32(h), format)
		desc.Label = fmt.Sprintf("kawase_level_%d", i)

		tex, err := dev.AllocateTexture(desc)
		if err != nil {
			c.destroy()
			return fmt.Errorf("allocate offscreen texture: %w", err)
		}
		fb, err := dev.CreateFramebuffer(tex)
		if err != nil {
			tex.Destroy()
			c.destroy()
			return fmt.Errorf("create offscreen framebuffer: %w", err)
		}
		c.textures = append(c.textures, tex)
		c.framebuffers = append(c.framebuffers, fb)
	}
	c.size = size
	c.format = format

	slogger().Debug("kawase: chain allocated", "levels", levels, "width", size.X, "height", size.Y)
	return nil
}

// destroy releases every level.
func (c *chain) destroy() {
	for _, fb := range c.framebuffers {
		fb.Destroy()
	}
	for _, tex := range c.textures {
		tex.Destroy()
	}
	c.framebuffers = nil
	c.textures = nil
	c.size = image.Point{}
	c.format = gputypes.TextureFormatUndefined
}
