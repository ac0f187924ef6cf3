package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is a triangle in 3-D space.
type Triangle struct {
	A v3.Vec
	B v3.Vec
	C v3.Vec
}

// Normal returns the (unnormalized) face normal.
func (t Triangle) Normal() v3.Vec {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A))
}

// Area returns the triangle's area.
func (t Triangle) Area() float64 {
	return 0.5 * t.Normal().Length()
}

// SegmentPlane intersects segment ab with a plane. Same-side segments
// are rejected, as are segments with an endpoint within epsPlane of the
// plane: a graze that close is ambiguous and must not count as a
// crossing. Returns the intersection point and whether one exists
// strictly interior to the segment.
func SegmentPlane(a, b v3.Vec, plane Plane, epsPlane float64) (v3.Vec, bool) {
	if !plane.Valid {
		return v3.Vec{}, false
	}
	dA := plane.SignedDistance(a)
	dB := plane.SignedDistance(b)
	if dA*dB > 0.0 {
		return v3.Vec{}, false
	}
	if math.Abs(dA) < epsPlane || math.Abs(dB) < epsPlane {
		return v3.Vec{}, false
	}
	denom := dA - dB
	if denom == 0.0 {
		return v3.Vec{}, false
	}
	t := dA / denom
	if t <= 0.0 || t >= 1.0 {
		return v3.Vec{}, false
	}
	return a.Add(b.Sub(a).MulScalar(t)), true
}

// SegmentTriangle intersects segment ab with a triangle using the
// Moller-Trumbore determinant form. eps widens the barycentric bounds
// so on-edge crossings count, and rejects near-parallel segments.
func SegmentTriangle(a, b v3.Vec, tri Triangle, eps float64) (v3.Vec, bool) {
	dir := b.Sub(a)
	e1 := tri.B.Sub(tri.A)
	e2 := tri.C.Sub(tri.A)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return v3.Vec{}, false
	}
	inv := 1.0 / det
	s := a.Sub(tri.A)
	u := s.Dot(p) * inv
	if u < -eps || u > 1.0+eps {
		return v3.Vec{}, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < -eps || u+v > 1.0+eps {
		return v3.Vec{}, false
	}
	t := e2.Dot(q) * inv
	if t <= eps || t >= 1.0-eps {
		return v3.Vec{}, false
	}
	return a.Add(dir.MulScalar(t)), true
}
