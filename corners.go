package frost

import (
	"github.com/gogpu/frost/corner"
	"github.com/gogpu/frost/region"
	"github.com/gogpu/frost/render"
)

// CornerUniforms are the values the host's window shader needs to round a
// window and draw its outlines. Sizes are in device pixels.
type CornerUniforms struct {
	FrameSize    [2]float32
	ExpandedSize [2]float32

	// ShadowSize holds the left, top and bottom shadow extents.
	ShadowSize [3]float32

	Radius             float32
	ShadowSampleOffset float32

	InnerOutlineColor [4]float32
	OuterOutlineColor [4]float32
	InnerOutlineWidth float32
	OuterOutlineWidth float32
	DrawInnerOutline  bool
	DrawOuterOutline  bool

	SquircleRatio int
	IsSquircle    bool
}

// CornersSupported reports whether the rounded-corner effect can run on a
// host.
func CornersSupported(caps Capabilities) bool { return caps.Blits }

// CornersEnabledByDefault reports whether rounded corners are on without
// explicit configuration.
func CornersEnabledByDefault(caps Capabilities) bool { return CornersSupported(caps) }

type cornerWindow struct {
	managed bool
	skip    bool
}

type cornerOutput struct {
	scale        float64
	radiusScaled float32
}

// Corners rounds the corners of managed windows and draws their outlines.
//
// Corners does not draw anything itself: it removes the corners from the
// windows' opaque areas and hands CornerUniforms to the host's DrawWindow.
type Corners struct {
	host  Host
	cfg   Config
	masks *corner.Masks

	inner, outer [4]float32

	windows map[uint64]*cornerWindow
	outputs map[uint64]*cornerOutput
}

// NewCorners creates the rounded-corner effect and registers every existing
// window.
func NewCorners(host Host, cfg Config) (*Corners, error) {
	c := &Corners{
		host:    host,
		windows: make(map[uint64]*cornerWindow),
		outputs: make(map[uint64]*cornerOutput),
	}
	if err := c.Reconfigure(cfg); err != nil {
		return nil, err
	}
	for _, w := range host.StackingOrder() {
		c.WindowAdded(w)
	}
	Logger().Info("frost: corners effect created", "windows", len(c.windows))
	return c, nil
}

// Reconfigure applies new settings and requests a full repaint.
func (c *Corners) Reconfigure(cfg Config) error {
	cfg.Normalize()

	masks, err := corner.Cached(cfg.Shape())
	if err != nil {
		return err
	}
	inner, err := cfg.InnerOutline.RGBA()
	if err != nil {
		return err
	}
	outer, err := cfg.OuterOutline.RGBA()
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.masks = masks
	c.inner, c.outer = inner, outer
	for _, o := range c.outputs {
		o.radiusScaled = c.radius(o.scale)
	}

	c.host.AddRepaintFull()
	return nil
}

func (c *Corners) radius(scale float64) float32 {
	return float32(float64(c.cfg.EffectiveRoundness()) * scale)
}

// WindowAdded starts tracking w.
func (c *Corners) WindowAdded(w Window) {
	cw := &cornerWindow{managed: corner.Managed(w.Info())}
	if cw.managed && c.cfg.DisabledForMaximized && c.host.MaximizeArea(w) == w.FrameGeometry() {
		cw.skip = true
	}
	c.windows[w.ID()] = cw
}

// WindowDeleted forgets w.
func (c *Corners) WindowDeleted(w Window) {
	delete(c.windows, w.ID())
}

// MaximizedStateChanged updates w after it was maximized or restored.
func (c *Corners) MaximizedStateChanged(w Window, horizontal, vertical bool) {
	if !c.cfg.DisabledForMaximized {
		return
	}
	if cw, ok := c.windows[w.ID()]; ok {
		cw.skip = horizontal && vertical
	}
}

// FullScreenChanged updates w after it entered or left full screen.
func (c *Corners) FullScreenChanged(w Window, fullScreen bool) {
	if cw, ok := c.windows[w.ID()]; ok {
		cw.managed = !fullScreen
	}
}

// OutputRemoved forgets the output's scale.
func (c *Corners) OutputRemoved(output uint64) {
	delete(c.outputs, output)
}

// PaintScreen records the scale the output is painted at.
func (c *Corners) PaintScreen(output uint64, vp render.Viewport) {
	scale := vp.Scale
	if scale <= 0 {
		scale = 1
	}
	o := c.output(c.outputKey(output))
	if o.scale != scale {
		o.scale = scale
		o.radiusScaled = c.radius(scale)
	}
}

// PrePaintWindow removes w's rounded corners from its opaque region.
func (c *Corners) PrePaintWindow(w Window, data *WindowPrePaintData) {
	if !c.valid(w) {
		return
	}
	o := c.output(c.outputKey(w.Output()))
	data.Opaque = data.Opaque.Subtract(c.masks.OpaqueCutouts(w.FrameGeometry(), o.scale))
}

// DrawWindow sets data.Corners for w and lets the host draw it. Windows
// that are not rounded or lie outside the viewport are passed through
// unchanged.
func (c *Corners) DrawWindow(target render.RenderTarget, vp render.Viewport, w Window, mask PaintMask, clip region.Region, data *WindowPaintData) {
	if !c.valid(w) || (!vp.Rect.Overlaps(w.FrameGeometry()) && mask&PaintWindowTransformed == 0) {
		c.host.DrawWindow(target, vp, w, mask, clip, data)
		return
	}
	o := c.output(c.outputKey(w.Output()))
	data.Corners = c.uniforms(w, o)
	c.host.DrawWindow(target, vp, w, mask, clip, data)
}

func (c *Corners) uniforms(w Window, o *cornerOutput) *CornerUniforms {
	s := o.scale
	geo := render.ScaleRect(w.FrameGeometry(), s)
	exp := render.ScaleRect(w.ExpandedGeometry(), s)

	u := &CornerUniforms{
		FrameSize:    [2]float32{float32(geo.Dx()), float32(geo.Dy())},
		ExpandedSize: [2]float32{float32(exp.Dx()), float32(exp.Dy())},
		ShadowSize: [3]float32{
			float32(geo.X0 - exp.X0),
			float32(geo.Y0 - exp.Y0),
			float32(exp.Dy() - geo.Dy() - geo.Y0 + exp.Y0),
		},
		Radius:             o.radiusScaled,
		ShadowSampleOffset: float32(float64(c.cfg.ShadowOffset) * s),
		InnerOutlineColor:  c.inner,
		OuterOutlineColor:  c.outer,
		DrawInnerOutline:   c.cfg.InnerOutline.Enabled,
		DrawOuterOutline:   c.cfg.OuterOutline.Enabled,
		SquircleRatio:      c.cfg.SquircleRatio,
		IsSquircle:         c.cfg.Kind() == corner.Squircle,
	}
	if u.DrawInnerOutline {
		u.InnerOutlineWidth = float32(c.cfg.InnerOutline.Width * s)
	}
	if u.DrawOuterOutline {
		u.OuterOutlineWidth = float32(c.cfg.OuterOutline.Width * s)
	}
	return u
}

// valid reports whether w gets rounded corners.
func (c *Corners) valid(w Window) bool {
	cw, ok := c.windows[w.ID()]
	return ok && cw.managed && !cw.skip
}

// outputKey collapses every output into one on X11.
func (c *Corners) outputKey(output uint64) uint64 {
	if !c.host.Wayland() {
		return 0
	}
	return output
}

func (c *Corners) output(key uint64) *cornerOutput {
	o, ok := c.outputs[key]
	if !ok {
		o = &cornerOutput{scale: 1, radiusScaled: c.radius(1)}
		c.outputs[key] = o
	}
	return o
}
