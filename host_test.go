package frost

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/frost/corner"
	"github.com/gogpu/frost/region"
	"github.com/gogpu/frost/render"
)

// fakeHost is an in-memory compositor. DrawWindow fills the window's frame
// with its color when the target is a PixmapTarget.
type fakeHost struct {
	windows    []Window
	wayland    bool
	locked     bool
	fullScreen bool
	maximize   image.Rectangle
	dpi        float64
	xscale     float64
	atom       Atom
	manager    *fakeAnnouncer

	repaints  int
	announced []string
	drawn     []drawCall
}

type drawCall struct {
	window uint64
	mask   PaintMask
	data   WindowPaintData
}

func newFakeHost(windows ...Window) *fakeHost {
	return &fakeHost{
		windows:  windows,
		maximize: image.Rect(0, 0, 1920, 1080),
		dpi:      96,
		xscale:   1,
		atom:     42,
	}
}

func (h *fakeHost) StackingOrder() []Window             { return h.windows }
func (h *fakeHost) Wayland() bool                       { return h.wayland }
func (h *fakeHost) ScreenLocked() bool                  { return h.locked }
func (h *fakeHost) ActiveFullScreenEffect() bool        { return h.fullScreen }
func (h *fakeHost) MaximizeArea(Window) image.Rectangle { return h.maximize }
func (h *fakeHost) LogicalDPI() float64                 { return h.dpi }
func (h *fakeHost) XScale() float64                     { return h.xscale }
func (h *fakeHost) AddRepaintFull()                     { h.repaints++ }

func (h *fakeHost) AnnounceSupportProperty(name string) Atom {
	h.announced = append(h.announced, name)
	return h.atom
}

func (h *fakeHost) BlurManager() Announcer {
	if h.manager == nil {
		return nil
	}
	return h.manager
}

func (h *fakeHost) DrawWindow(target render.RenderTarget, vp render.Viewport, w Window, mask PaintMask, _ region.Region, data *WindowPaintData) {
	h.drawn = append(h.drawn, drawCall{window: w.ID(), mask: mask, data: *data})

	pt, ok := target.(*render.PixmapTarget)
	if !ok {
		return
	}
	fw, ok := w.(*fakeWindow)
	if !ok || fw.color == nil {
		return
	}
	r := vp.MapToTarget(w.FrameGeometry())
	draw.Draw(pt.Image(), r, image.NewUniform(fw.color), image.Point{}, draw.Over)
}

type fakeAnnouncer struct {
	announced bool
	withdrawn bool
}

func (a *fakeAnnouncer) Announce() { a.announced = true }
func (a *fakeAnnouncer) Withdraw() { a.withdrawn = true }

// fakeWindow is a decorated normal window with no blur request.
type fakeWindow struct {
	id       uint64
	output   uint64
	frame    image.Rectangle
	expanded image.Rectangle
	contents image.Rectangle // relative to frame.Min
	opacity  float64
	desktop  bool
	force    bool
	info     corner.WindowInfo
	color    color.Color

	props    map[Atom][]byte
	surface  *region.Region
	internal *region.Region
	deco     *fakeDecoration
	decoA    bool
}

func newFakeWindow(id uint64, frame image.Rectangle) *fakeWindow {
	return &fakeWindow{
		id:       id,
		frame:    frame,
		expanded: frame.Inset(-10),
		contents: image.Rect(0, 0, frame.Dx(), frame.Dy()),
		opacity:  1,
		info: corner.WindowInfo{
			Type:      corner.TypeNormal,
			Class:     "org.example.editor",
			Managed:   true,
			Decorated: true,
			HasShadow: true,
		},
		props: make(map[Atom][]byte),
	}
}

func (w *fakeWindow) ID() uint64                        { return w.id }
func (w *fakeWindow) Output() uint64                    { return w.output }
func (w *fakeWindow) Pos() image.Point                  { return w.frame.Min }
func (w *fakeWindow) FrameGeometry() image.Rectangle    { return w.frame }
func (w *fakeWindow) ExpandedGeometry() image.Rectangle { return w.expanded }
func (w *fakeWindow) ContentsRect() image.Rectangle     { return w.contents }
func (w *fakeWindow) Opacity() float64                  { return w.opacity }
func (w *fakeWindow) IsDesktop() bool                   { return w.desktop }
func (w *fakeWindow) ForceBlur() bool                   { return w.force }
func (w *fakeWindow) Info() corner.WindowInfo           { return w.info }
func (w *fakeWindow) ReadProperty(a Atom) []byte        { return w.props[a] }
func (w *fakeWindow) DecorationHasAlpha() bool          { return w.decoA }

func (w *fakeWindow) SurfaceBlurRegion() (region.Region, bool) {
	if w.surface == nil {
		return region.Region{}, false
	}
	return *w.surface, true
}

func (w *fakeWindow) InternalBlurRegion() (region.Region, bool) {
	if w.internal == nil {
		return region.Region{}, false
	}
	return *w.internal, true
}

func (w *fakeWindow) Decoration() Decoration {
	if w.deco == nil {
		return nil
	}
	return w.deco
}

// requestBlur sets the blur request through the Wayland surface. An empty
// region asks for the whole window.
func (w *fakeWindow) requestBlur(r region.Region) { w.surface = &r }

type fakeDecoration struct {
	rect image.Rectangle
	blur *region.Region
}

func (d *fakeDecoration) Rect() image.Rectangle { return d.rect }

func (d *fakeDecoration) BlurRegion() (region.Region, bool) {
	if d.blur == nil {
		return region.Region{}, false
	}
	return *d.blur, true
}

// cardinals encodes rectangles the way clients write the X11 blur property.
func cardinals(rects ...image.Rectangle) []byte {
	buf := make([]byte, 0, 16*len(rects))
	for _, r := range rects {
		for _, v := range []int{r.Min.X, r.Min.Y, r.Dx(), r.Dy()} {
			buf = binary.NativeEndian.AppendUint32(buf, uint32(v))
		}
	}
	return buf
}
