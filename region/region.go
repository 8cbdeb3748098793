// Package region implements integer screen regions as unions of disjoint
// rectangles.
//
// A Region is an immutable value: every operation returns a new Region and
// never modifies its receiver or argument, so regions can be shared between
// the damage accumulators and the per-window blur shapes without copying.
//
// The zero value is the empty region.
package region

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// infiniteRect matches the extent compositors use for "no clipping".
var infiniteRect = image.Rect(math.MinInt32/2, math.MinInt32/2, math.MaxInt32/2, math.MaxInt32/2)

// Region is a set of pixels described by non-overlapping rectangles.
type Region struct {
	rects []image.Rectangle
}

// New returns the union of the given rectangles. Empty rectangles are ignored.
func New(rects ...image.Rectangle) Region {
	var r Region
	for _, rc := range rects {
		r = r.UnionRect(rc)
	}
	return r
}

// Infinite returns the region covering every representable pixel.
func Infinite() Region {
	return Region{rects: []image.Rectangle{infiniteRect}}
}

// IsInfinite reports whether r is the region returned by Infinite.
func (r Region) IsInfinite() bool {
	return len(r.rects) == 1 && r.rects[0] == infiniteRect
}

// IsEmpty reports whether r contains no pixels.
func (r Region) IsEmpty() bool {
	return len(r.rects) == 0
}

// Rects returns a copy of the disjoint rectangles making up r.
func (r Region) Rects() []image.Rectangle {
	if len(r.rects) == 0 {
		return nil
	}
	out := make([]image.Rectangle, len(r.rects))
	copy(out, r.rects)
	return out
}

// Len returns the number of rectangles in r.
func (r Region) Len() int {
	return len(r.rects)
}

// Bounds returns the smallest rectangle containing r.
func (r Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, rc := range r.rects {
		b = b.Union(rc)
	}
	return b
}

// Area returns the number of pixels in r.
func (r Region) Area() int {
	n := 0
	for _, rc := range r.rects {
		n += rc.Dx() * rc.Dy()
	}
	return n
}

// Contains reports whether p lies inside r.
func (r Region) Contains(p image.Point) bool {
	for _, rc := range r.rects {
		if p.In(rc) {
			return true
		}
	}
	return false
}

// Union returns r ∪ o.
func (r Region) Union(o Region) Region {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	out := make([]image.Rectangle, len(r.rects), len(r.rects)+len(o.rects))
	copy(out, r.rects)
	for _, rc := range o.rects {
		out = append(out, subtractAll(rc, r.rects)...)
	}
	return Region{rects: out}
}

// UnionRect returns r ∪ rc.
func (r Region) UnionRect(rc image.Rectangle) Region {
	if rc.Empty() {
		return r
	}
	out := make([]image.Rectangle, len(r.rects), len(r.rects)+4)
	copy(out, r.rects)
	out = append(out, subtractAll(rc, r.rects)...)
	return Region{rects: out}
}

// Subtract returns r − o.
func (r Region) Subtract(o Region) Region {
	if r.IsEmpty() || o.IsEmpty() {
		return r
	}
	cur := r.rects
	for _, hole := range o.rects {
		var next []image.Rectangle
		for _, rc := range cur {
			next = append(next, subtractRect(rc, hole)...)
		}
		cur = next
		if len(cur) == 0 {
			break
		}
	}
	return Region{rects: cur}
}

// SubtractRect returns r − rc.
func (r Region) SubtractRect(rc image.Rectangle) Region {
	return r.Subtract(Region{rects: nonEmpty(rc)})
}

// Intersect returns r ∩ o.
func (r Region) Intersect(o Region) Region {
	var out []image.Rectangle
	for _, a := range r.rects {
		for _, b := range o.rects {
			if c := a.Intersect(b); !c.Empty() {
				out = append(out, c)
			}
		}
	}
	return Region{rects: out}
}

// IntersectRect returns r ∩ rc.
func (r Region) IntersectRect(rc image.Rectangle) Region {
	return r.Intersect(Region{rects: nonEmpty(rc)})
}

// Intersects reports whether r and o share at least one pixel.
func (r Region) Intersects(o Region) bool {
	for _, a := range r.rects {
		for _, b := range o.rects {
			if a.Overlaps(b) {
				return true
			}
		}
	}
	return false
}

// IntersectsRect reports whether r and rc share at least one pixel.
func (r Region) IntersectsRect(rc image.Rectangle) bool {
	for _, a := range r.rects {
		if a.Overlaps(rc) {
			return true
		}
	}
	return false
}

// Translate returns r moved by p.
func (r Region) Translate(p image.Point) Region {
	if r.IsEmpty() || p == (image.Point{}) {
		return r
	}
	out := make([]image.Rectangle, len(r.rects))
	for i, rc := range r.rects {
		out[i] = rc.Add(p)
	}
	return Region{rects: out}
}

// Equal reports whether r and o cover exactly the same pixels.
func (r Region) Equal(o Region) bool {
	if r.Area() != o.Area() {
		return false
	}
	return r.Subtract(o).IsEmpty()
}

// String formats r as a list of rectangles.
func (r Region) String() string {
	if r.IsInfinite() {
		return "Region{infinite}"
	}
	parts := make([]string, len(r.rects))
	for i, rc := range r.rects {
		parts[i] = rc.String()
	}
	return fmt.Sprintf("Region{%s}", strings.Join(parts, " "))
}

func nonEmpty(rc image.Rectangle) []image.Rectangle {
	if rc.Empty() {
		return nil
	}
	return []image.Rectangle{rc}
}

// subtractAll returns the parts of rc not covered by any of holes.
func subtractAll(rc image.Rectangle, holes []image.Rectangle) []image.Rectangle {
	pieces := []image.Rectangle{rc}
	for _, h := range holes {
		var next []image.Rectangle
		for _, p := range pieces {
			next = append(next, subtractRect(p, h)...)
		}
		pieces = next
		if len(pieces) == 0 {
			return nil
		}
	}
	return pieces
}

// subtractRect splits a − b into at most four bands: above, below, and the
// left and right remainders of the overlapping row span.
func subtractRect(a, b image.Rectangle) []image.Rectangle {
	if !a.Overlaps(b) {
		return []image.Rectangle{a}
	}
	out := make([]image.Rectangle, 0, 4)
	if b.Min.Y > a.Min.Y {
		out = append(out, image.Rect(a.Min.X, a.Min.Y, a.Max.X, b.Min.Y))
	}
	if b.Max.Y < a.Max.Y {
		out = append(out, image.Rect(a.Min.X, b.Max.Y, a.Max.X, a.Max.Y))
	}
	y0 := max(a.Min.Y, b.Min.Y)
	y1 := min(a.Max.Y, b.Max.Y)
	if b.Min.X > a.Min.X {
		out = append(out, image.Rect(a.Min.X, y0, b.Min.X, y1))
	}
	if b.Max.X < a.Max.X {
		out = append(out, image.Rect(b.Max.X, y0, a.Max.X, y1))
	}
	return out
}
