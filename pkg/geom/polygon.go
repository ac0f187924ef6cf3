package geom

import (
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Polygon is a closed 2-D polygon in plane coordinates. Valid marks a
// polygon of at least 3 vertices; the orientation and simplicity of the
// outline are not checked.
type Polygon struct {
	Vertices []v2.Vec
	Valid    bool
}

// NewPolygon wraps vertices as a polygon, marking it valid when there
// are at least 3 of them.
func NewPolygon(vertices []v2.Vec) Polygon {
	return Polygon{Vertices: vertices, Valid: len(vertices) >= 3}
}

// cross2 is the z-component of (b-a) x (c-a); positive for a left turn.
func cross2(a, b, c v2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// distPointSegment2 returns the squared distance from p to segment ab.
func distPointSegment2(p, a, b v2.Vec) float64 {
	v := b.Sub(a)
	w := p.Sub(a)
	vv := v.Dot(v)
	if vv <= 0.0 {
		return w.Dot(w)
	}
	t := w.Dot(v) / vv
	if t < 0.0 {
		return w.Dot(w)
	}
	if t > 1.0 {
		d := p.Sub(b)
		return d.Dot(d)
	}
	d := p.Sub(a.Add(v.MulScalar(t)))
	return d.Dot(d)
}

// ConvexHull computes the 2-D convex hull by the Andrew monotone chain.
// Collinear points are discarded. The closing duplicate vertex is not
// included in the result. Inputs of fewer than 3 points are returned
// as given.
func ConvexHull(points []v2.Vec) []v2.Vec {
	if len(points) < 3 {
		return append([]v2.Vec(nil), points...)
	}
	pts := append([]v2.Vec(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X == pts[j].X {
			return pts[i].Y < pts[j].Y
		}
		return pts[i].X < pts[j].X
	})
	hull := make([]v2.Vec, 0, len(pts)*2)
	for _, p := range pts {
		for len(hull) >= 2 && cross2(hull[len(hull)-2], hull[len(hull)-1], p) <= 0.0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull)
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(hull) > lower && cross2(hull[len(hull)-2], hull[len(hull)-1], p) <= 0.0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	if len(hull) > 0 {
		hull = hull[:len(hull)-1]
	}
	return hull
}

// SignedArea is the signed area of the polygon outline; positive for
// counter-clockwise orientation.
func SignedArea(poly []v2.Vec) float64 {
	if len(poly) < 3 {
		return 0.0
	}
	area := 0.0
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		area += a.X*b.Y - a.Y*b.X
	}
	return 0.5 * area
}

// Contains reports whether q lies inside the polygon. Points within
// epsEdge of any edge count as inside; elsewhere a horizontal-ray
// crossing-count parity test decides.
func (p Polygon) Contains(q v2.Vec, epsEdge float64) bool {
	if !p.Valid || len(p.Vertices) < 3 {
		return false
	}
	eps2 := epsEdge * epsEdge
	for i := range p.Vertices {
		a := p.Vertices[i]
		b := p.Vertices[(i+1)%len(p.Vertices)]
		if distPointSegment2(q, a, b) <= eps2 {
			return true
		}
	}
	inside := false
	n := len(p.Vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi := p.Vertices[i]
		pj := p.Vertices[j]
		if (pi.Y > q.Y) != (pj.Y > q.Y) &&
			q.X < (pj.X-pi.X)*(q.Y-pi.Y)/(pj.Y-pi.Y+1e-12)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// pointInTriangle2 reports whether p lies in triangle abc. An edge
// cross product within eps of zero counts as inside for that edge; eps
// is compared with the cross product, not with a distance.
func pointInTriangle2(p, a, b, c v2.Vec, eps float64) bool {
	c1 := cross2(a, b, p)
	c2 := cross2(b, c, p)
	c3 := cross2(c, a, p)
	hasNeg := c1 < -eps || c2 < -eps || c3 < -eps
	hasPos := c1 > eps || c2 > eps || c3 > eps
	return !(hasNeg && hasPos)
}

// earClipGuard bounds the clipping loop for degenerate outlines.
const earClipGuard = 10000

// EarClip triangulates a simple polygon by ear clipping and returns
// index triples into poly. A near-zero outline area, or an outline
// where no ear can be found, yields no triangles.
func EarClip(poly []v2.Vec, eps float64) [][3]int {
	if len(poly) < 3 {
		return nil
	}
	area := SignedArea(poly)
	if math.Abs(area) <= eps {
		return nil
	}
	orient := 1.0
	if area < 0.0 {
		orient = -1.0
	}

	indices := make([]int, len(poly))
	for i := range poly {
		indices[i] = i
	}

	var tris [][3]int
	for guard := 0; len(indices) > 3 && guard < earClipGuard; guard++ {
		earFound := false
		n := len(indices)
		for i := 0; i < n; i++ {
			iPrev := indices[(i+n-1)%n]
			iCurr := indices[i]
			iNext := indices[(i+1)%n]
			a := poly[iPrev]
			b := poly[iCurr]
			c := poly[iNext]
			if orient*cross2(a, b, c) <= eps {
				continue
			}
			hasInside := false
			for k := 0; k < n; k++ {
				idx := indices[k]
				if idx == iPrev || idx == iCurr || idx == iNext {
					continue
				}
				if pointInTriangle2(poly[idx], a, b, c, eps) {
					hasInside = true
					break
				}
			}
			if hasInside {
				continue
			}
			tris = append(tris, [3]int{iPrev, iCurr, iNext})
			indices = append(indices[:i], indices[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			return nil
		}
	}
	if len(indices) == 3 {
		tris = append(tris, [3]int{indices[0], indices[1], indices[2]})
	}
	return tris
}
