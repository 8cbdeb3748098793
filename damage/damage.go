// Package damage decides, window by window in back-to-front stacking order,
// which screen areas must be repainted so that blurred backgrounds stay
// consistent with whatever is painted beneath them.
//
// A blurred pixel depends on a neighborhood of background pixels, so damage
// below a blurred window spreads to the whole blurred area, and windows above
// a blurred area may only count as opaque once their borders are shrunk by the
// blur kernel's reach.
//
// The Tracker holds per-frame state. Reset it at the start of every frame and
// feed it every window in stacking order; reordering or parallelizing the
// calls produces wrong damage.
package damage

import (
	"image"

	"github.com/gogpu/frost/region"
)

// Tracker accumulates the painted and blurred areas of one frame.
type Tracker struct {
	expandSize int

	painted region.Region
	blurred region.Region
}

// NewTracker returns a tracker that shrinks opaque areas above blurred
// content by expandSize pixels.
func NewTracker(expandSize int) *Tracker {
	return &Tracker{expandSize: expandSize}
}

// SetExpandSize changes the opaque shrink distance. It takes effect for the
// next window.
func (t *Tracker) SetExpandSize(n int) {
	t.expandSize = n
}

// ExpandSize returns the opaque shrink distance.
func (t *Tracker) ExpandSize() int {
	return t.expandSize
}

// Reset clears the accumulators for a new frame.
func (t *Tracker) Reset() {
	t.painted = region.Region{}
	t.blurred = region.Region{}
}

// Painted returns the area that will be painted this frame so far.
func (t *Tracker) Painted() region.Region { return t.painted }

// Blurred returns the screen area currently covered by visible blur.
func (t *Tracker) Blurred() region.Region { return t.blurred }

// Window folds the next window in stacking order into the frame state.
//
// opaque and paint are the window's opaque area and requested repaint area in
// screen coordinates. blurBox is the bounding rectangle of the window's blur
// shape in screen coordinates, empty if the window has no blur. Window returns
// the adjusted opaque and paint regions the compositor must use.
func (t *Tracker) Window(opaque, paint region.Region, blurBox image.Rectangle) (region.Region, region.Region) {
	oldOpaque := opaque

	if opaque.Intersects(t.blurred) {
		// Blur under this window only stays valid if the kernel can still see
		// the pixels around its border, so the window is less opaque than it
		// claims.
		var shrunk region.Region
		for _, rc := range opaque.Rects() {
			shrunk = shrunk.UnionRect(inset(rc, t.expandSize))
		}
		opaque = shrunk

		// Blur hidden behind opaque content needs no updates.
		t.blurred = t.blurred.Subtract(opaque)
	}

	// Translucent parts painted over blur invalidate all of it.
	if paint.Subtract(oldOpaque).Intersects(t.blurred) {
		paint = paint.Union(t.blurred)
	}

	blurArea := region.New(blurBox)

	// Anything painted below or in this window's blur area changes its input.
	if t.painted.Intersects(blurArea) || paint.Intersects(blurArea) {
		paint = paint.Union(blurArea)
		if blurArea.Intersects(t.blurred) {
			paint = paint.Union(t.blurred)
		}
	}

	t.blurred = t.blurred.Union(blurArea)

	t.painted = t.painted.Subtract(opaque).Union(paint)

	return opaque, paint
}

// inset shrinks rc by n on every side. Rectangles that collapse are empty.
func inset(rc image.Rectangle, n int) image.Rectangle {
	r := image.Rect(0, 0, 0, 0)
	if rc.Dx() > 2*n && rc.Dy() > 2*n {
		r = image.Rectangle{Min: rc.Min.Add(image.Pt(n, n)), Max: rc.Max.Sub(image.Pt(n, n))}
	}
	return r
}
