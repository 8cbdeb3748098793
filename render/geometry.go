// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"math"
)

// Matrix is a column-major 4x4 transform, laid out as WGSL mat4x4<f32>.
type Matrix [16]float32

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho returns a projection mapping the y-down rectangle (left, top) to
// (right, bottom) onto normalized device coordinates.
func Ortho(left, top, right, bottom float32) Matrix {
	m := Identity()
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	return m
}

// Mul returns m × n.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for c := range 4 {
		for r := range 4 {
			var s float32
			for k := range 4 {
				s += m[k*4+r] * n[c*4+k]
			}
			out[c*4+r] = s
		}
	}
	return out
}

// Translate returns m followed by a translation applied first, so vertex
// positions are shifted by (x, y) before m.
func (m Matrix) Translate(x, y float32) Matrix {
	t := Identity()
	t[12] = x
	t[13] = y
	return m.Mul(t)
}

// Transform applies m to the point (x, y, 0, 1) and returns x and y.
func (m Matrix) Transform(x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

// RectF is a rectangle with floating-point edges.
type RectF struct {
	X0, Y0, X1, Y1 float64
}

// Dx returns the width of r.
func (r RectF) Dx() float64 { return r.X1 - r.X0 }

// Dy returns the height of r.
func (r RectF) Dy() float64 { return r.Y1 - r.Y0 }

// Empty reports whether r has no area.
func (r RectF) Empty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Intersect returns the largest rectangle inside both r and s.
func (r RectF) Intersect(s RectF) RectF {
	out := RectF{
		X0: math.Max(r.X0, s.X0),
		Y0: math.Max(r.Y0, s.Y0),
		X1: math.Min(r.X1, s.X1),
		Y1: math.Min(r.Y1, s.Y1),
	}
	if out.Empty() {
		return RectF{}
	}
	return out
}

// Translate returns r moved by (dx, dy).
func (r RectF) Translate(dx, dy float64) RectF {
	return RectF{r.X0 + dx, r.Y0 + dy, r.X1 + dx, r.Y1 + dy}
}

// Snap rounds every edge of r to the nearest pixel boundary.
func (r RectF) Snap() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X0)), int(math.Round(r.Y0)),
		int(math.Round(r.X1)), int(math.Round(r.Y1)),
	)
}

// SnapF is Snap keeping floating-point edges.
func (r RectF) SnapF() RectF {
	return RectF{math.Round(r.X0), math.Round(r.Y0), math.Round(r.X1), math.Round(r.Y1)}
}

// ScaleRect scales an integer rectangle by s.
func ScaleRect(r image.Rectangle, s float64) RectF {
	return RectF{
		X0: float64(r.Min.X) * s,
		Y0: float64(r.Min.Y) * s,
		X1: float64(r.Max.X) * s,
		Y1: float64(r.Max.Y) * s,
	}
}

// Viewport is the logical area of the output being rendered and its
// device pixel ratio.
type Viewport struct {
	// Rect is the output rectangle in logical coordinates.
	Rect image.Rectangle

	// Scale is the number of device pixels per logical pixel.
	Scale float64
}

// NewViewport returns a viewport with scale 1 when scale is not positive.
func NewViewport(rect image.Rectangle, scale float64) Viewport {
	if scale <= 0 {
		scale = 1
	}
	return Viewport{Rect: rect, Scale: scale}
}

// DeviceRect returns Rect in device pixels.
func (v Viewport) DeviceRect() image.Rectangle {
	return ScaleRect(v.Rect, v.scale()).Snap()
}

// Projection maps absolute device-pixel coordinates inside DeviceRect to
// normalized device coordinates.
func (v Viewport) Projection() Matrix {
	d := v.DeviceRect()
	return Ortho(float32(d.Min.X), float32(d.Min.Y), float32(d.Max.X), float32(d.Max.Y))
}

// MapToTarget converts a logical rectangle into pixel coordinates of the
// render target showing this viewport.
func (v Viewport) MapToTarget(r image.Rectangle) image.Rectangle {
	return ScaleRect(r.Sub(v.Rect.Min), v.scale()).Snap()
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}
