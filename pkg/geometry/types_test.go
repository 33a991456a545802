package geometry

import (
	"math"
	"testing"
)

func TestNormalizedFoldsNegativeExtents(t *testing.T) {
	cases := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"already positive", NewRect(10, 20, 30, 40), NewRect(10, 20, 30, 40)},
		{"negative width", NewRect(100, 20, -30, 40), NewRect(70, 20, 30, 40)},
		{"negative height", NewRect(10, 100, 30, -40), NewRect(10, 60, 30, 40)},
		{"both negative", NewRect(100, 100, -30, -40), NewRect(70, 60, 30, 40)},
	}

	for _, tc := range cases {
		got := tc.in.Normalized()
		if got != tc.want {
			t.Errorf("%s: Normalized() = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestNormalizedKeepsCorners(t *testing.T) {
	r := NewRect(100, 80, -60, -50)
	n := r.Normalized()

	// Same corner set regardless of drag direction.
	orig := map[Point2D]bool{
		{X: 100, Y: 80}: true,
		{X: 40, Y: 80}:  true,
		{X: 100, Y: 30}: true,
		{X: 40, Y: 30}:  true,
	}
	for _, c := range n.Corners() {
		if !orig[c] {
			t.Errorf("corner %+v not in pre-normalization corner set", c)
		}
	}
	if n.Width < 0 || n.Height < 0 {
		t.Errorf("normalized rect has negative extent: %+v", n)
	}
}

func TestRounded(t *testing.T) {
	r := NewRect(10.4, 19.6, 30.5, 39.49)
	got := r.Rounded()
	want := NewRect(10, 20, 31, 39)
	if got != want {
		t.Errorf("Rounded() = %+v, want %+v", got, want)
	}
}

func TestContainsUsesNormalizedBounds(t *testing.T) {
	r := NewRect(100, 100, -50, -50)
	if !r.Contains(Point2D{X: 75, Y: 75}) {
		t.Error("point inside normalized bounds reported outside")
	}
	if r.Contains(Point2D{X: 101, Y: 75}) {
		t.Error("point outside normalized bounds reported inside")
	}
}

func TestMinSide(t *testing.T) {
	if got := NewRect(0, 0, -8, 25).MinSide(); got != 8 {
		t.Errorf("MinSide() = %v, want 8", got)
	}
}

func TestApproxEqual(t *testing.T) {
	a := NewRect(1, 2, 3, 4)
	b := NewRect(1.4, 2.4, 3.4, 4.4)
	if !a.ApproxEqual(b, 0.5) {
		t.Error("rects within tolerance reported unequal")
	}
	if a.ApproxEqual(b, 0.1) {
		t.Error("rects outside tolerance reported equal")
	}
}

func TestPointDistance(t *testing.T) {
	d := Point2D{X: 0, Y: 0}.Distance(Point2D{X: 3, Y: 4})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("Distance = %v, want 5", d)
	}
}
