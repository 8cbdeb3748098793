// Package corner generates the rounded-corner clip regions used to keep
// blur and opaque areas inside a window's rounded outline.
//
// A mask is the part of a corner square lying outside the rounded boundary.
// The four masks are cropped from one rasterized canvas so every corner is
// pixel-identical up to reflection.
package corner

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/frost/region"
)

// ErrInvalidShape is returned by Generate for shapes that cannot be rasterized.
var ErrInvalidShape = errors.New("corner: invalid shape")

// Kind selects the outline of a rounded corner.
type Kind int

const (
	// Rounded corners follow a circular arc.
	Rounded Kind = iota

	// Squircle corners follow a superellipse.
	Squircle
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case Rounded:
		return "rounded"
	case Squircle:
		return "squircle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a configuration name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "rounded":
		return Rounded, nil
	case "squircle", "squircled":
		return Squircle, nil
	default:
		return Rounded, fmt.Errorf("%w: unknown corner kind %q", ErrInvalidShape, s)
	}
}

// Corner identifies one corner of a window.
type Corner int

// Corners in clockwise order starting at the top left.
const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft

	// NumCorners is the number of corners of a rectangle.
	NumCorners
)

// Shape parameterizes mask generation.
type Shape struct {
	// Radius is the effective corner radius in logical pixels.
	Radius int

	// ShadowOffset is the margin between the window frame and the outline.
	ShadowOffset int

	// Kind selects circular or superelliptic corners.
	Kind Kind

	// Exponent is the superellipse exponent, used when Kind is Squircle.
	Exponent int
}

// EffectiveRadius converts a configured roundness into the radius used for
// masks. Squircles reach the edge more gradually, so their radius is widened
// by half the exponent.
func EffectiveRadius(roundness int, kind Kind, exponent int) int {
	if kind == Squircle {
		return int(float64(roundness) * 0.5 * float64(exponent))
	}
	return roundness
}

// Masks holds the four corner clip regions for a shape.
//
// Masks are immutable after Generate and safe to share between windows.
type Masks struct {
	shape   Shape
	size    int
	regions [NumCorners]region.Region
}

// Generate rasterizes the corner masks for s.
func Generate(s Shape) (*Masks, error) {
	if s.Radius < 0 || s.ShadowOffset < 0 {
		return nil, fmt.Errorf("%w: radius %d, shadow offset %d", ErrInvalidShape, s.Radius, s.ShadowOffset)
	}
	if s.Kind == Squircle && s.Exponent <= 0 {
		return nil, fmt.Errorf("%w: squircle exponent %d", ErrInvalidShape, s.Exponent)
	}
	size := s.Radius + s.ShadowOffset
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty corner", ErrInvalidShape)
	}

	canvas := maskCanvas(s, size)

	m := &Masks{shape: s, size: size}
	m.regions[TopLeft] = thresholdRegion(canvas, image.Rect(0, 0, size, size))
	m.regions[TopRight] = thresholdRegion(canvas, image.Rect(size, 0, 2*size, size))
	m.regions[BottomRight] = thresholdRegion(canvas, image.Rect(size, size, 2*size, 2*size))
	m.regions[BottomLeft] = thresholdRegion(canvas, image.Rect(0, size, size, 2*size))
	return m, nil
}

// Shape returns the parameters the masks were generated from.
func (m *Masks) Shape() Shape { return m.shape }

// Size returns the side length of each corner square.
func (m *Masks) Size() int { return m.size }

// Region returns the mask of corner c in corner-local coordinates, with the
// origin at the top-left of the corner square.
func (m *Masks) Region(c Corner) region.Region {
	return m.regions[c]
}

// Carve removes the four corners from a window-local blur region. frame is
// the window's frame size.
func (m *Masks) Carve(r region.Region, frame image.Point) region.Region {
	if r.IsEmpty() {
		return r
	}
	radius, off := m.shape.Radius, m.shape.ShadowOffset
	offsets := [NumCorners]image.Point{
		TopLeft:     {1 - off, 1 - off},
		TopRight:    {frame.X - radius - 1, 1 - off},
		BottomRight: {frame.X - radius - 1, frame.Y - radius - 1},
		BottomLeft:  {1 - off, frame.Y - radius - 1},
	}
	for c := range NumCorners {
		r = r.Subtract(m.regions[c].Translate(offsets[c]))
	}
	return r
}

// OpaqueCutouts returns the screen areas around the corners of frame that
// must not be treated as opaque. Each cutout is the bounding box of a corner
// mask scaled to output pixels.
func (m *Masks) OpaqueCutouts(frame image.Rectangle, scale float64) region.Region {
	radius, off := m.shape.Radius, m.shape.ShadowOffset
	x, y := frame.Min.X, frame.Min.Y
	w, h := frame.Dx(), frame.Dy()
	offsets := [NumCorners]image.Point{
		TopLeft:     {x - off, y - off},
		TopRight:    {x + w - radius, y - off},
		BottomRight: {x + w - radius - 1, y + h - radius - 1},
		BottomLeft:  {x - off + 1, y + h - radius - 1},
	}
	var out region.Region
	for c := range NumCorners {
		b := scaleRect(m.regions[c].Bounds(), scale)
		out = out.UnionRect(b.Add(offsets[c]))
	}
	return out
}

// scaleRect scales position and size independently and rounds each.
func scaleRect(r image.Rectangle, s float64) image.Rectangle {
	x := int(math.Round(float64(r.Min.X) * s))
	y := int(math.Round(float64(r.Min.Y) * s))
	w := int(math.Round(float64(r.Dx()) * s))
	h := int(math.Round(float64(r.Dy()) * s))
	return image.Rect(x, y, x+w, y+h)
}
