package corner

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/frost/region"
)

// kappa places cubic control points for a quarter-circle approximation.
const kappa = 0.5522847498

// superellipseSteps is the angular resolution of squircle outlines.
const superellipseSteps = 360

// maskCanvas returns a 2*size square alpha canvas that is opaque outside the
// rounded outline and transparent inside it.
func maskCanvas(s Shape, size int) *image.Alpha {
	bounds := image.Rect(0, 0, 2*size, 2*size)

	cutout := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	off := float32(s.ShadowOffset)
	switch s.Kind {
	case Squircle:
		superellipse(cutout, float32(size)-off, s.Exponent, off)
	default:
		ellipse(cutout, off, off, float32(2*size)-off, float32(2*size)-off)
	}
	coverage := image.NewAlpha(bounds)
	cutout.Draw(coverage, bounds, image.Opaque, image.Point{})

	canvas := image.NewAlpha(bounds)
	draw.Draw(canvas, bounds, image.Opaque, image.Point{}, draw.Src)
	destinationOut(canvas, coverage)
	return canvas
}

// destinationOut scales dst by the inverse of mask, dst = dst*(1-mask).
// Both images must share bounds and stride.
func destinationOut(dst, mask *image.Alpha) {
	for i, m := range mask.Pix {
		dst.Pix[i] = uint8(uint32(dst.Pix[i]) * uint32(255-m) / 255) //nolint:gosec // result <= 255
	}
}

// ellipse adds the ellipse inscribed in (x0,y0)-(x1,y1) to z.
func ellipse(z *vector.Rasterizer, x0, y0, x1, y1 float32) {
	cx, cy := (x0+x1)/2, (y0+y1)/2
	rx, ry := (x1-x0)/2, (y1-y0)/2
	kx, ky := rx*kappa, ry*kappa

	z.MoveTo(x1, cy)
	z.CubeTo(x1, cy+ky, cx+kx, y1, cx, y1)
	z.CubeTo(cx-kx, y1, x0, cy+ky, x0, cy)
	z.CubeTo(x0, cy-ky, cx-kx, y0, cx, y0)
	z.CubeTo(cx+kx, y0, x1, cy-ky, x1, cy)
	z.ClosePath()
}

// superellipse adds the closed polygon |x|^n + |y|^n = size^n, centered at
// (size, size) and shifted by translate, to z.
func superellipse(z *vector.Rasterizer, size float32, n int, translate float32) {
	n2 := 2.0 / float64(n)
	step := 2 * math.Pi / superellipseSteps
	s := float64(size)

	z.MoveTo(2*size+translate, size+translate)
	for i := 1; i < superellipseSteps; i++ {
		t := float64(i) * step
		cosT, sinT := math.Cos(t), math.Sin(t)
		x := s + math.Pow(math.Abs(cosT), n2)*s*signum(cosT)
		y := s - math.Pow(math.Abs(sinT), n2)*s*signum(sinT)
		z.LineTo(float32(x)+translate, float32(y)+translate)
	}
	z.ClosePath()
}

func signum(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// thresholdRegion converts the fully opaque pixels of canvas inside crop into
// a region whose origin is crop.Min. Runs repeating on consecutive rows are
// merged into taller rectangles.
func thresholdRegion(canvas *image.Alpha, crop image.Rectangle) region.Region {
	type run struct{ x0, x1 int }

	var (
		rects []image.Rectangle
		open  = map[run]int{} // run -> index into rects of the rect ending on the previous row
	)
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		ly := y - crop.Min.Y
		next := map[run]int{}
		for x := crop.Min.X; x < crop.Max.X; {
			if canvas.AlphaAt(x, y).A != 0xff {
				x++
				continue
			}
			start := x
			for x < crop.Max.X && canvas.AlphaAt(x, y).A == 0xff {
				x++
			}
			rn := run{start - crop.Min.X, x - crop.Min.X}
			if i, ok := open[rn]; ok {
				rects[i].Max.Y = ly + 1
				next[rn] = i
				continue
			}
			next[rn] = len(rects)
			rects = append(rects, image.Rect(rn.x0, ly, rn.x1, ly+1))
		}
		open = next
	}
	return region.New(rects...)
}
