package frost

import (
	"errors"
	"fmt"

	"github.com/gogpu/frost/corner"
	"github.com/gogpu/frost/damage"
	"github.com/gogpu/frost/kawase"
	"github.com/gogpu/frost/region"
	"github.com/gogpu/frost/render"
	"github.com/gogpu/frost/strength"
)

// ChainPosition is where the blur runs among the host's effects.
const ChainPosition = 20

// Effect blurs the background behind windows that ask for it.
//
// All methods must be called from the host's render thread.
type Effect struct {
	host     Host
	device   render.Device
	renderer *kawase.Renderer
	table    *strength.Table
	tracker  *damage.Tracker

	cfg    Config
	params strength.Params
	masks  *corner.Masks

	windows map[uint64]*blurShape
	managed map[uint64]bool

	blurAtom      Atom
	blurManager   Announcer
	currentOutput uint64
	valid         bool
}

// New creates the blur effect and registers every existing window.
//
// If the blur programs cannot be built on device, New still returns an
// Effect; it stays inactive for its whole lifetime and draws windows
// unblurred.
func New(host Host, device render.Device, cfg Config, opts ...Option) (*Effect, error) {
	if device == nil {
		return nil, ErrNoDevice
	}
	if host == nil {
		return nil, errors.New("frost: nil host")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.table == nil {
		o.table = strength.Default()
	}

	e := &Effect{
		host:    host,
		device:  device,
		table:   o.table,
		tracker: damage.NewTracker(0),
		windows: make(map[uint64]*blurShape),
		managed: make(map[uint64]bool),
	}
	cfg.Normalize()
	e.cfg = cfg

	r, err := kawase.New(device, kawase.Options{
		LogicalDPI: host.LogicalDPI(),
		Now:        o.now,
	})
	if err != nil {
		return nil, fmt.Errorf("frost: %w", err)
	}
	e.renderer = r
	if !r.Valid() {
		Logger().Warn("frost: blur unavailable, windows are drawn unblurred")
		return e, nil
	}

	e.Reconfigure(cfg)

	e.blurAtom = host.AnnounceSupportProperty(BlurAtomName)
	if m := host.BlurManager(); m != nil {
		m.Announce()
		e.blurManager = m
	}

	for _, w := range host.StackingOrder() {
		e.WindowAdded(w)
	}

	e.valid = true
	trackEffect(e)
	Logger().Info("frost: blur effect created",
		"strength", e.cfg.BlurStrength, "iterations", e.params.Iterations, "windows", len(e.windows))
	return e, nil
}

// Close withdraws the protocol announcement and releases GPU resources.
func (e *Effect) Close() {
	if e.blurManager != nil {
		e.blurManager.Withdraw()
		e.blurManager = nil
	}
	e.renderer.Close()
	clear(e.windows)
	clear(e.managed)
	e.valid = false
	untrackEffect(e)
	Logger().Info("frost: blur effect closed")
}

// Reconfigure applies new settings and requests a full repaint.
func (e *Effect) Reconfigure(cfg Config) {
	cfg.Normalize()
	e.cfg = cfg

	e.params = e.table.Lookup(cfg.BlurStrength)
	e.tracker.SetExpandSize(e.params.ExpandSize)
	e.renderer.SetNoiseStrength(cfg.NoiseStrength)

	masks, err := corner.Cached(cfg.Shape())
	if err != nil {
		Logger().Warn("frost: corner masks unavailable, blur is not rounded", "err", err)
		masks = nil
	}
	e.masks = masks

	e.host.AddRepaintFull()
}

// Config returns the active, normalized settings.
func (e *Effect) Config() Config { return e.cfg }

// Params returns the blur parameters of the configured strength.
func (e *Effect) Params() strength.Params { return e.params }

// IsActive reports whether the effect takes part in the current frame.
// It is re-evaluated every frame.
func (e *Effect) IsActive() bool {
	return e.valid && !e.host.ScreenLocked()
}

// Provides reports whether the effect implements f.
func (e *Effect) Provides(f Feature) bool {
	return f == FeatureBlur
}

// ChainPosition returns where the blur runs among the host's effects.
func (e *Effect) ChainPosition() int { return ChainPosition }

// HasBlur reports whether w currently requests blur.
func (e *Effect) HasBlur(w Window) bool {
	_, ok := e.windows[w.ID()]
	return ok
}

// WindowAdded starts tracking w.
func (e *Effect) WindowAdded(w Window) {
	e.updateBlurRegion(w)
	if corner.Managed(w.Info()) {
		e.managed[w.ID()] = true
	}
}

// WindowDeleted forgets w and releases its render chains.
func (e *Effect) WindowDeleted(w Window) {
	id := w.ID()
	delete(e.windows, id)
	delete(e.managed, id)
	e.renderer.ReleaseWindow(id)
}

// OutputRemoved releases every render chain of the output.
func (e *Effect) OutputRemoved(output uint64) {
	e.renderer.ReleaseOutput(output)
}

// BlurRegionChanged re-reads the blur request of w.
func (e *Effect) BlurRegionChanged(w Window) { e.updateBlurRegion(w) }

// DecorationChanged re-reads the blur request of w after its decoration
// was replaced or changed its blur region.
func (e *Effect) DecorationChanged(w Window) { e.updateBlurRegion(w) }

// PropertyChanged handles X11 property notifications.
func (e *Effect) PropertyChanged(w Window, atom Atom) {
	if w != nil && atom != AtomNone && atom == e.blurAtom {
		e.updateBlurRegion(w)
	}
}

// PrePaintScreen starts a frame.
func (e *Effect) PrePaintScreen(data *ScreenPrePaintData) {
	if !e.IsActive() {
		return
	}
	e.tracker.Reset()
	e.currentOutput = 0
	if e.host.Wayland() {
		e.currentOutput = data.Output
	}
}

// PrePaintWindow folds w into the frame's damage state. Windows must be
// passed bottom to top.
func (e *Effect) PrePaintWindow(w Window, data *WindowPrePaintData) {
	if !e.IsActive() {
		return
	}
	blurArea := e.blurRegion(w).Bounds().Add(w.Pos())
	data.Opaque, data.Paint = e.tracker.Window(data.Opaque, data.Paint, blurArea)
}

// DrawWindow blurs the background behind w and then lets the host draw w.
func (e *Effect) DrawWindow(target render.RenderTarget, vp render.Viewport, w Window, mask PaintMask, clip region.Region, data *WindowPaintData) {
	if e.IsActive() {
		e.blur(target, vp, w, mask, clip, data)
	}
	e.host.DrawWindow(target, vp, w, mask, clip, data)
}

func (e *Effect) blur(target render.RenderTarget, vp render.Viewport, w Window, mask PaintMask, clip region.Region, data *WindowPaintData) {
	if _, ok := e.windows[w.ID()]; !ok {
		return
	}
	if !e.shouldBlur(w, mask, data) {
		return
	}

	shape := e.blurRegion(w).Translate(w.Pos())
	err := e.renderer.Render(target, vp, kawase.ChainKey{Window: w.ID(), Output: e.currentOutput}, shape, clip, kawase.Params{
		Iterations:   e.params.Iterations,
		Offset:       e.params.Offset,
		Opacity:      w.Opacity() * data.Opacity,
		XScale:       data.XScale,
		YScale:       data.YScale,
		XTranslation: data.XTranslation,
		YTranslation: data.YTranslation,
	})
	if err != nil {
		Logger().Debug("frost: blur skipped", "window", w.ID(), "err", err)
	}
}

// shouldBlur rejects windows whose blur would be wrong or wasted: under a
// full-screen effect, the desktop, and transformed windows, unless the
// window forces blur.
func (e *Effect) shouldBlur(w Window, mask PaintMask, data *WindowPaintData) bool {
	force := w.ForceBlur()
	if e.host.ActiveFullScreenEffect() && !force {
		return false
	}
	if w.IsDesktop() {
		return false
	}

	scaled := !fuzzyEqual(unitScale(data.XScale), 1) && !fuzzyEqual(unitScale(data.YScale), 1)
	translated := data.XTranslation != 0 || data.YTranslation != 0
	if (scaled || translated || mask&PaintWindowTransformed != 0) && !force {
		return false
	}
	return true
}

// unitScale maps an unset (zero) scale to 1, as the renderer does.
func unitScale(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

// fuzzyEqual compares with a relative tolerance of 1e-12.
func fuzzyEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d*1e12 <= min(abs(a), abs(b))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
