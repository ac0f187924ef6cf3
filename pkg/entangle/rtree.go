package entangle

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/rnaknot/pkg/coords"
	"github.com/chazu/rnaknot/pkg/surface"
)

// boundsPad keeps every bounding box strictly positive in extent so
// axis-aligned segments and flat surfaces still index cleanly.
const boundsPad = 1e-9

// segmentSpatial adapts one backbone segment to the R-tree.
type segmentSpatial struct {
	seg    coords.Segment
	bounds rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (s *segmentSpatial) Bounds() rtreego.Rect {
	return s.bounds
}

// rectAround builds a padded axis-aligned box over points.
func rectAround(points []v3.Vec, pad float64) (rtreego.Rect, bool) {
	if len(points) == 0 {
		return rtreego.Rect{}, false
	}
	min := points[0]
	max := points[0]
	for _, p := range points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{min.X - pad, min.Y - pad, min.Z - pad},
		[]float64{
			max.X - min.X + 2*pad,
			max.Y - min.Y + 2*pad,
			max.Z - min.Z + 2*pad,
		},
	)
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}

// buildSegmentTree indexes segments by bounding box for the per-surface
// prefilter. The tree is an optimization only; a nil return falls back
// to scanning every segment.
func buildSegmentTree(segments []coords.Segment) *rtreego.Rtree {
	tree := rtreego.NewTree(3, 2, 5)
	for i := range segments {
		rect, ok := rectAround([]v3.Vec{segments[i].A, segments[i].B}, boundsPad)
		if !ok {
			return nil
		}
		tree.Insert(&segmentSpatial{seg: segments[i], bounds: rect})
	}
	return tree
}

// surfaceRect bounds the region a segment must touch to hit the
// surface: its triangles when present, otherwise the polygon outline
// lifted back to 3-D, padded by the polygon edge epsilon.
func surfaceRect(s surface.Surface, pad float64) (rtreego.Rect, bool) {
	var points []v3.Vec
	if len(s.Triangles) > 0 {
		for _, t := range s.Triangles {
			points = append(points, t.A, t.B, t.C)
		}
	} else if s.Plane.Valid && s.Polygon.Valid {
		for _, q := range s.Polygon.Vertices {
			points = append(points, s.Plane.Unproject(q))
		}
	}
	if pad < boundsPad {
		pad = boundsPad
	}
	return rectAround(points, pad)
}
