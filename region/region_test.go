package region

import (
	"image"
	"testing"
)

func TestRegionUnion(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []image.Rectangle
		wantArea int
		wantBox  image.Rectangle
	}{
		{"disjoint", []image.Rectangle{image.Rect(0, 0, 10, 10)}, []image.Rectangle{image.Rect(20, 0, 30, 10)}, 200, image.Rect(0, 0, 30, 10)},
		{"overlapping", []image.Rectangle{image.Rect(0, 0, 10, 10)}, []image.Rectangle{image.Rect(5, 5, 15, 15)}, 175, image.Rect(0, 0, 15, 15)},
		{"contained", []image.Rectangle{image.Rect(0, 0, 10, 10)}, []image.Rectangle{image.Rect(2, 2, 4, 4)}, 100, image.Rect(0, 0, 10, 10)},
		{"empty other", []image.Rectangle{image.Rect(0, 0, 10, 10)}, nil, 100, image.Rect(0, 0, 10, 10)},
		{"both empty", nil, nil, 0, image.Rectangle{}},
		{"idempotent", []image.Rectangle{image.Rect(0, 0, 10, 10)}, []image.Rectangle{image.Rect(0, 0, 10, 10)}, 100, image.Rect(0, 0, 10, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := New(tt.a...).Union(New(tt.b...))
			if got := u.Area(); got != tt.wantArea {
				t.Errorf("Area() = %d, want %d", got, tt.wantArea)
			}
			if got := u.Bounds(); got != tt.wantBox {
				t.Errorf("Bounds() = %v, want %v", got, tt.wantBox)
			}
			assertDisjoint(t, u)
		})
	}
}

func TestRegionSubtract(t *testing.T) {
	base := New(image.Rect(0, 0, 10, 10))

	tests := []struct {
		name     string
		hole     image.Rectangle
		wantArea int
		inside   image.Point
		outside  image.Point
	}{
		{"center hole", image.Rect(3, 3, 7, 7), 84, image.Pt(1, 1), image.Pt(5, 5)},
		{"corner", image.Rect(5, 5, 20, 20), 75, image.Pt(0, 9), image.Pt(9, 9)},
		{"disjoint", image.Rect(20, 20, 30, 30), 100, image.Pt(9, 9), image.Pt(25, 25)},
		{"full", image.Rect(-1, -1, 11, 11), 0, image.Pt(-100, -100), image.Pt(5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base.SubtractRect(tt.hole)
			if got := d.Area(); got != tt.wantArea {
				t.Errorf("Area() = %d, want %d", got, tt.wantArea)
			}
			if tt.wantArea > 0 && !d.Contains(tt.inside) {
				t.Errorf("Contains(%v) = false, want true", tt.inside)
			}
			if d.Contains(tt.outside) {
				t.Errorf("Contains(%v) = true, want false", tt.outside)
			}
			assertDisjoint(t, d)
		})
	}
}

func TestRegionIntersect(t *testing.T) {
	a := New(image.Rect(0, 0, 10, 10), image.Rect(20, 0, 30, 10))
	b := New(image.Rect(5, 5, 25, 15))

	got := a.Intersect(b)
	want := New(image.Rect(5, 5, 10, 10), image.Rect(20, 5, 25, 10))
	if !got.Equal(want) {
		t.Errorf("Intersect() = %v, want %v", got, want)
	}
	if !a.Intersects(b) {
		t.Error("Intersects() = false, want true")
	}
	if a.Intersects(New(image.Rect(10, 0, 20, 10))) {
		t.Error("touching edges must not intersect")
	}
	if !a.IntersectsRect(image.Rect(29, 9, 40, 40)) {
		t.Error("IntersectsRect() = false, want true")
	}
}

func TestRegionTranslate(t *testing.T) {
	r := New(image.Rect(0, 0, 4, 4)).Translate(image.Pt(10, -2))
	if got, want := r.Bounds(), image.Rect(10, -2, 14, 2); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestRegionImmutable(t *testing.T) {
	a := New(image.Rect(0, 0, 10, 10))
	_ = a.SubtractRect(image.Rect(0, 0, 5, 5))
	_ = a.UnionRect(image.Rect(10, 0, 20, 10))
	if a.Area() != 100 {
		t.Errorf("receiver modified: area = %d", a.Area())
	}
}

func TestRegionInfinite(t *testing.T) {
	inf := Infinite()
	if !inf.IsInfinite() {
		t.Fatal("IsInfinite() = false")
	}
	r := New(image.Rect(-500, -500, 500, 500))
	if !inf.Intersect(r).Equal(r) {
		t.Error("infinite ∩ r != r")
	}
	if inf.Subtract(r).IsInfinite() {
		t.Error("subtracting from infinite must produce a finite description")
	}
}

func TestRegionEqual(t *testing.T) {
	a := New(image.Rect(0, 0, 10, 5), image.Rect(0, 5, 10, 10))
	b := New(image.Rect(0, 0, 5, 10), image.Rect(5, 0, 10, 10))
	if !a.Equal(b) {
		t.Errorf("%v should equal %v", a, b)
	}
	if a.Equal(New(image.Rect(0, 0, 10, 9))) {
		t.Error("regions with different area compared equal")
	}
}

func assertDisjoint(t *testing.T, r Region) {
	t.Helper()
	rects := r.Rects()
	for i := range rects {
		if rects[i].Empty() {
			t.Errorf("empty rect %v stored", rects[i])
		}
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Overlaps(rects[j]) {
				t.Errorf("rects %v and %v overlap", rects[i], rects[j])
			}
		}
	}
}
