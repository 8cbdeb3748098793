package software

import (
	"math"

	"github.com/gogpu/frost/render"
)

type point struct {
	x, y float64
	uv   [2]float32
}

// rasterize covers every pixel whose center lies inside a triangle of verts,
// calling fn once per covered pixel with the interpolated texture coordinate.
// Pixels on an edge shared by two triangles are covered exactly once.
func rasterize(dst surface, verts []render.Vertex2D, mvp render.Matrix, fn func(x, y int, uv [2]float32)) {
	w, h := dst.dims()
	for i := 0; i+2 < len(verts); i += 3 {
		var tri [3]point
		for k := range tri {
			v := verts[i+k]
			nx, ny := mvp.Transform(v.Position[0], v.Position[1])
			tri[k] = point{
				x:  (float64(nx) + 1) / 2 * float64(w),
				y:  (1 - float64(ny)) / 2 * float64(h),
				uv: v.TexCoord,
			}
		}
		triangle(tri, w, h, fn)
	}
}

func triangle(t [3]point, w, h int, fn func(x, y int, uv [2]float32)) {
	area := edge(t[0], t[1], t[2].x, t[2].y)
	if area == 0 {
		return
	}
	if area < 0 {
		t[1], t[2] = t[2], t[1]
		area = -area
	}

	minX := max(int(math.Floor(min(t[0].x, t[1].x, t[2].x))), 0)
	maxX := min(int(math.Ceil(max(t[0].x, t[1].x, t[2].x))), w)
	minY := max(int(math.Floor(min(t[0].y, t[1].y, t[2].y))), 0)
	maxY := min(int(math.Ceil(max(t[0].y, t[1].y, t[2].y))), h)

	own := [3]bool{owns(t[1], t[2]), owns(t[2], t[0]), owns(t[0], t[1])}

	for y := minY; y < maxY; y++ {
		cy := float64(y) + 0.5
		for x := minX; x < maxX; x++ {
			cx := float64(x) + 0.5
			b := [3]float64{
				edge(t[1], t[2], cx, cy),
				edge(t[2], t[0], cx, cy),
				edge(t[0], t[1], cx, cy),
			}
			if !inside(b, own) {
				continue
			}
			var uv [2]float32
			for k := range 2 {
				uv[k] = float32((b[0]*float64(t[0].uv[k]) + b[1]*float64(t[1].uv[k]) + b[2]*float64(t[2].uv[k])) / area)
			}
			fn(x, y, uv)
		}
	}
}

func inside(b [3]float64, own [3]bool) bool {
	for k := range b {
		if b[k] < 0 || (b[k] == 0 && !own[k]) {
			return false
		}
	}
	return true
}

// edge is twice the signed area of (a, b, p).
func edge(a, b point, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// owns is the tie rule for pixel centers exactly on the edge a→b. It is
// antisymmetric, so of two triangles sharing an edge only one claims it.
func owns(a, b point) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy > 0 || (dy == 0 && dx > 0)
}
