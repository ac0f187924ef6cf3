package geom

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

func TestConvexHullSquare(t *testing.T) {
	points := []v2.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2},
		{X: 1, Y: 1}, {X: 0.5, Y: 1.5}, // interior
	}
	hull := ConvexHull(points)
	if len(hull) != 4 {
		t.Fatalf("hull size = %d, want 4 (%v)", len(hull), hull)
	}
	for _, h := range hull {
		if h.X == 1 && h.Y == 1 {
			t.Errorf("interior point on hull")
		}
	}
}

func TestConvexHullIdempotent(t *testing.T) {
	points := []v2.Vec{
		{X: 0, Y: 0}, {X: 3, Y: 1}, {X: 2, Y: 4}, {X: -1, Y: 3},
		{X: 1, Y: 1}, {X: 0.5, Y: 2}, {X: 2.5, Y: 2},
	}
	hull := ConvexHull(points)
	again := ConvexHull(hull)
	if len(hull) != len(again) {
		t.Fatalf("hull of hull size %d != %d", len(again), len(hull))
	}
	for i := range hull {
		if hull[i] != again[i] {
			t.Errorf("vertex %d: %v != %v", i, again[i], hull[i])
		}
	}
}

func TestConvexHullSmallInputs(t *testing.T) {
	two := []v2.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}}
	if got := ConvexHull(two); len(got) != 2 {
		t.Errorf("2-point input: got %d points", len(got))
	}
}

func TestSignedArea(t *testing.T) {
	ccw := []v2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	if a := SignedArea(ccw); math.Abs(a-1) > 1e-12 {
		t.Errorf("ccw area = %g, want 1", a)
	}
	cw := []v2.Vec{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	if a := SignedArea(cw); math.Abs(a+1) > 1e-12 {
		t.Errorf("cw area = %g, want -1", a)
	}
	if a := SignedArea(ccw[:2]); a != 0 {
		t.Errorf("degenerate area = %g, want 0", a)
	}
}

func TestPolygonContains(t *testing.T) {
	poly := NewPolygon([]v2.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2},
	})
	tests := []struct {
		name string
		q    v2.Vec
		eps  float64
		want bool
	}{
		{"center", v2.Vec{X: 1, Y: 1}, 1e-9, true},
		{"outside", v2.Vec{X: 3, Y: 1}, 1e-9, false},
		{"near edge within eps", v2.Vec{X: 2.005, Y: 1}, 1e-2, true},
		{"near edge beyond eps", v2.Vec{X: 2.05, Y: 1}, 1e-2, false},
		{"corner", v2.Vec{X: 0, Y: 0}, 1e-9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := poly.Contains(tt.q, tt.eps); got != tt.want {
				t.Errorf("Contains(%v, %g) = %v, want %v", tt.q, tt.eps, got, tt.want)
			}
		})
	}
}

func TestPolygonContainsInvalid(t *testing.T) {
	poly := NewPolygon([]v2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}})
	if poly.Valid {
		t.Fatalf("2-vertex polygon should be invalid")
	}
	if poly.Contains(v2.Vec{X: 0.5, Y: 0}, 1e-2) {
		t.Errorf("invalid polygon contains nothing")
	}
}

func TestEarClipSquare(t *testing.T) {
	square := []v2.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
	tris := EarClip(square, 1e-12)
	if len(tris) != 2 {
		t.Fatalf("triangle count = %d, want 2", len(tris))
	}
	// The triangulation must cover the square's area exactly.
	total := 0.0
	for _, tri := range tris {
		total += math.Abs(SignedArea([]v2.Vec{square[tri[0]], square[tri[1]], square[tri[2]]}))
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("triangulated area = %g, want 1", total)
	}
}

func TestEarClipConcave(t *testing.T) {
	// L-shape: 6 vertices, area 3.
	poly := []v2.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
		{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	tris := EarClip(poly, 1e-12)
	if len(tris) != 4 {
		t.Fatalf("triangle count = %d, want 4", len(tris))
	}
	total := 0.0
	for _, tri := range tris {
		total += math.Abs(SignedArea([]v2.Vec{poly[tri[0]], poly[tri[1]], poly[tri[2]]}))
	}
	if math.Abs(total-3) > 1e-9 {
		t.Errorf("triangulated area = %g, want 3", total)
	}
}

func TestEarClipDegenerate(t *testing.T) {
	line := []v2.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0},
	}
	if tris := EarClip(line, 1e-12); tris != nil {
		t.Errorf("collinear outline produced %d triangles", len(tris))
	}
	if tris := EarClip(line[:2], 1e-12); tris != nil {
		t.Errorf("2-vertex outline produced triangles")
	}
}
