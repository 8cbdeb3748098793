package frost

import (
	"image"

	"github.com/gogpu/frost/region"
)

// blurShape is the blur a window asked for, in window-local coordinates.
// A nil field was not requested. An empty content region means the whole
// contents rectangle.
type blurShape struct {
	content *region.Region
	frame   *region.Region
}

// updateBlurRegion re-reads every source of w's blur request. Later sources
// win: the X11 property, then the Wayland surface, then the internal window
// property.
func (e *Effect) updateBlurRegion(w Window) {
	var shape blurShape

	if e.blurAtom != AtomNone {
		if r, ok := region.ParseCardinals(w.ReadProperty(e.blurAtom), e.host.XScale()); ok {
			shape.content = &r
		}
	}
	if r, ok := w.SurfaceBlurRegion(); ok {
		shape.content = &r
	}
	if r, ok := w.InternalBlurRegion(); ok {
		shape.content = &r
	}
	if w.DecorationHasAlpha() && decorationSupportsBlurBehind(w) {
		r := decorationBlurRegion(w)
		shape.frame = &r
	}

	id := w.ID()
	if shape.content == nil && shape.frame == nil {
		if _, ok := e.windows[id]; ok {
			delete(e.windows, id)
			e.renderer.ReleaseWindow(id)
		}
		return
	}
	e.windows[id] = &shape
}

func decorationSupportsBlurBehind(w Window) bool {
	d := w.Decoration()
	if d == nil {
		return false
	}
	_, ok := d.BlurRegion()
	return ok
}

// decorationBlurRegion is the part of the decoration's blur request that
// lies on the decoration itself.
func decorationBlurRegion(w Window) region.Region {
	d := w.Decoration()
	if d == nil {
		return region.Region{}
	}
	blur, ok := d.BlurRegion()
	if !ok {
		return region.Region{}
	}
	return region.New(d.Rect()).SubtractRect(w.ContentsRect()).Intersect(blur)
}

// blurRegion returns w's blur shape in window-local coordinates with the
// rounded corners carved out.
func (e *Effect) blurRegion(w Window) region.Region {
	shape, ok := e.windows[w.ID()]
	if !ok {
		return region.Region{}
	}

	var r region.Region
	switch {
	case shape.content != nil:
		contents := w.ContentsRect()
		if shape.content.IsEmpty() {
			r = region.New(contents)
		} else {
			r = shape.content.Translate(contents.Min).IntersectRect(contents)
		}
		if shape.frame != nil {
			r = r.Union(*shape.frame)
		}
	case shape.frame != nil:
		r = *shape.frame
	}

	return e.roundBlurRegion(w, r)
}

// roundBlurRegion carves the corner masks out of a managed window's blur.
func (e *Effect) roundBlurRegion(w Window, r region.Region) region.Region {
	if r.IsEmpty() || e.masks == nil || !e.managed[w.ID()] {
		return r
	}
	geo := w.FrameGeometry()
	if e.cfg.DisabledForMaximized && e.host.MaximizeArea(w) == geo {
		return r
	}
	return e.masks.Carve(r, image.Pt(geo.Dx(), geo.Dy()))
}
