package geom

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func zPlane(t *testing.T) Plane {
	t.Helper()
	plane := FitPlane(circlePoints(8), 1e-6)
	if !plane.Valid {
		t.Fatalf("fit failed")
	}
	return plane
}

func TestSegmentPlaneCrossing(t *testing.T) {
	plane := zPlane(t)
	a := v3.Vec{X: 0.2, Y: 0.1, Z: 1}
	b := v3.Vec{X: 0.2, Y: 0.1, Z: -1}
	p, ok := SegmentPlane(a, b, plane, 1e-2)
	if !ok {
		t.Fatalf("expected crossing")
	}
	if math.Abs(p.Z) > 1e-9 || math.Abs(p.X-0.2) > 1e-9 || math.Abs(p.Y-0.1) > 1e-9 {
		t.Errorf("intersection point %+v", p)
	}
}

func TestSegmentPlaneRejections(t *testing.T) {
	plane := zPlane(t)
	tests := []struct {
		name     string
		a, b     v3.Vec
		epsPlane float64
	}{
		{"same side", v3.Vec{Z: 1}, v3.Vec{Z: 2}, 1e-2},
		// Endpoint distances +5e-3 and -3e-2: the near endpoint sits
		// inside the graze band and must not count as a crossing.
		{"graze", v3.Vec{X: 0.1, Z: 5e-3}, v3.Vec{X: 0.1, Z: -3e-2}, 1e-2},
		{"endpoint on plane", v3.Vec{X: 0.1, Z: 0}, v3.Vec{X: 0.1, Z: -1}, 1e-2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := SegmentPlane(tt.a, tt.b, plane, tt.epsPlane); ok {
				t.Errorf("expected rejection")
			}
		})
	}
	// The graze case is accepted once the epsilon shrinks below the
	// near distance.
	if _, ok := SegmentPlane(v3.Vec{X: 0.1, Z: 5e-3}, v3.Vec{X: 0.1, Z: -3e-2}, plane, 1e-3); !ok {
		t.Errorf("expected crossing with eps below endpoint distance")
	}
}

func TestSegmentPlaneInvalid(t *testing.T) {
	if _, ok := SegmentPlane(v3.Vec{Z: 1}, v3.Vec{Z: -1}, Plane{}, 1e-2); ok {
		t.Errorf("invalid plane must reject")
	}
}

func TestSegmentTriangle(t *testing.T) {
	tri := Triangle{
		A: v3.Vec{X: 0, Y: 0, Z: 0},
		B: v3.Vec{X: 2, Y: 0, Z: 0},
		C: v3.Vec{X: 0, Y: 2, Z: 0},
	}
	tests := []struct {
		name string
		a, b v3.Vec
		want bool
	}{
		{"through center", v3.Vec{X: 0.5, Y: 0.5, Z: 1}, v3.Vec{X: 0.5, Y: 0.5, Z: -1}, true},
		{"outside", v3.Vec{X: 3, Y: 3, Z: 1}, v3.Vec{X: 3, Y: 3, Z: -1}, false},
		{"parallel", v3.Vec{X: 0.5, Y: 0.5, Z: 1}, v3.Vec{X: 1.5, Y: 0.5, Z: 1}, false},
		{"stops short", v3.Vec{X: 0.5, Y: 0.5, Z: 2}, v3.Vec{X: 0.5, Y: 0.5, Z: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := SegmentTriangle(tt.a, tt.b, tri, 1e-8)
			if ok != tt.want {
				t.Fatalf("hit = %v, want %v", ok, tt.want)
			}
			if ok && math.Abs(p.Z) > 1e-9 {
				t.Errorf("intersection off plane: %+v", p)
			}
		})
	}
}

func TestTriangleArea(t *testing.T) {
	tri := Triangle{
		A: v3.Vec{X: 0, Y: 0, Z: 0},
		B: v3.Vec{X: 1, Y: 0, Z: 0},
		C: v3.Vec{X: 0, Y: 1, Z: 0},
	}
	if a := tri.Area(); math.Abs(a-0.5) > 1e-12 {
		t.Errorf("area = %g, want 0.5", a)
	}
}
