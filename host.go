package frost

import (
	"image"

	"github.com/gogpu/frost/corner"
	"github.com/gogpu/frost/region"
	"github.com/gogpu/frost/render"
)

// Atom is an X11 atom. AtomNone means no atom.
type Atom uint32

// AtomNone is the null atom.
const AtomNone Atom = 0

// BlurAtomName is the X11 property through which clients request blur.
const BlurAtomName = "_KDE_NET_WM_BLUR_BEHIND_REGION"

// PaintMask carries the paint flags the host passes to DrawWindow.
type PaintMask uint32

// Paint flags.
const (
	PaintWindowOpaque PaintMask = 1 << iota
	PaintWindowTranslucent
	PaintWindowTransformed
)

// Feature is an optional capability an effect can provide.
type Feature int

// Features.
const (
	FeatureBlur Feature = iota + 1
)

// Capabilities describe the host's rendering path.
type Capabilities struct {
	// Blits reports framebuffer blit support.
	Blits bool

	// Wayland reports a Wayland display, which has its own composited
	// display path.
	Wayland bool
}

// Host is the compositor driving the effects.
type Host interface {
	// StackingOrder returns the windows bottom to top.
	StackingOrder() []Window

	// Wayland reports whether the host serves Wayland clients. Outputs
	// are tracked separately only on Wayland.
	Wayland() bool

	// ScreenLocked reports whether the lock screen is shown.
	ScreenLocked() bool

	// ActiveFullScreenEffect reports whether an effect owns the whole
	// screen, such as an overview.
	ActiveFullScreenEffect() bool

	// MaximizeArea is the area a maximized w would occupy.
	MaximizeArea(w Window) image.Rectangle

	// LogicalDPI of the primary screen.
	LogicalDPI() float64

	// XScale is the factor between X11 native and logical pixels.
	XScale() float64

	// AnnounceSupportProperty advertises an X11 property and returns its
	// atom, or AtomNone without an X11 connection.
	AnnounceSupportProperty(name string) Atom

	// BlurManager returns the Wayland blur protocol service, or nil.
	BlurManager() Announcer

	// AddRepaintFull schedules a repaint of every output.
	AddRepaintFull()

	// DrawWindow continues painting w after the effect's own drawing.
	DrawWindow(target render.RenderTarget, vp render.Viewport, w Window, mask PaintMask, clip region.Region, data *WindowPaintData)
}

// Announcer is a protocol service advertised while an effect is loaded.
type Announcer interface {
	Announce()
	Withdraw()
}

// Window is the host's view of one window.
type Window interface {
	// ID identifies the window for its whole lifetime.
	ID() uint64

	// Output identifies the output the window is on.
	Output() uint64

	// Pos is the top-left of the frame in logical coordinates.
	Pos() image.Point

	// FrameGeometry is the frame rectangle in logical coordinates.
	FrameGeometry() image.Rectangle

	// ExpandedGeometry is the frame plus shadows.
	ExpandedGeometry() image.Rectangle

	// ContentsRect is the client area relative to Pos.
	ContentsRect() image.Rectangle

	// Opacity in [0, 1].
	Opacity() float64

	// IsDesktop reports the desktop background window.
	IsDesktop() bool

	// ForceBlur reports that the window is blurred even while transformed.
	ForceBlur() bool

	// Info returns the state corner rounding depends on.
	Info() corner.WindowInfo

	// ReadProperty returns an X11 property value, nil when absent.
	ReadProperty(atom Atom) []byte

	// SurfaceBlurRegion is the region set through the Wayland blur
	// protocol, if any.
	SurfaceBlurRegion() (region.Region, bool)

	// InternalBlurRegion is the region set on a compositor-internal
	// window, if any.
	InternalBlurRegion() (region.Region, bool)

	// Decoration returns the server-side decoration or nil.
	Decoration() Decoration

	// DecorationHasAlpha reports a translucent decoration.
	DecorationHasAlpha() bool
}

// Decoration is a server-side window decoration.
type Decoration interface {
	// Rect is the decoration rectangle relative to the window.
	Rect() image.Rectangle

	// BlurRegion is the area the decoration wants blurred. ok is false
	// when the decoration does not support blur behind.
	BlurRegion() (r region.Region, ok bool)
}

// ScreenPrePaintData is passed to PrePaintScreen.
type ScreenPrePaintData struct {
	// Output being painted.
	Output uint64
}

// WindowPrePaintData is passed to PrePaintWindow. Effects adjust the
// regions in place.
type WindowPrePaintData struct {
	// Opaque is the area the window fully covers.
	Opaque region.Region

	// Paint is the area that must be repainted.
	Paint region.Region
}

// WindowPaintData is passed to DrawWindow.
type WindowPaintData struct {
	// Opacity multiplies the window opacity.
	Opacity float64

	XScale, YScale             float64
	XTranslation, YTranslation float64

	// Corners is set by the Corners effect for the host's window shader.
	Corners *CornerUniforms
}

// NewWindowPaintData returns paint data with identity transform and full
// opacity.
func NewWindowPaintData() WindowPaintData {
	return WindowPaintData{Opacity: 1, XScale: 1, YScale: 1}
}

// Supported reports whether the blur effect can run on a host.
func Supported(caps Capabilities) bool {
	return caps.Blits || caps.Wayland
}

// EnabledByDefault reports whether the blur effect is on without explicit
// configuration.
func EnabledByDefault() bool { return false }
