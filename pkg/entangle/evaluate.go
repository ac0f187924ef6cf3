// Package entangle counts topological entanglements: unique piercings
// of the backbone polyline through loop surfaces.
package entangle

import (
	"fmt"
	"io"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/rnaknot/pkg/coords"
	"github.com/chazu/rnaknot/pkg/geom"
	"github.com/chazu/rnaknot/pkg/surface"
)

// PolylineMode selects how the backbone polyline is built.
type PolylineMode int

const (
	// SingleAtom links one designated atom between consecutive residues.
	SingleAtom PolylineMode = iota
	// PC4Alternating interleaves P and C4' atoms per residue.
	PC4Alternating
)

// Options control evaluation.
type Options struct {
	// AtomIndex is the backbone atom for SingleAtom mode, and sizes the
	// skip masks in either mode.
	AtomIndex   int
	AtomIndexP  int
	AtomIndexC4 int
	Polyline    PolylineMode
	// EpsPlane treats segment endpoints closer than this to a surface's
	// plane as non-crossing, suppressing ambiguous grazes.
	EpsPlane float64
	// EpsPolygon is the on-edge tolerance for point-in-polygon tests.
	EpsPolygon float64
	// EpsTriangle is the Moller-Trumbore tolerance for triangulated
	// surfaces.
	EpsTriangle float64
	// Trace receives per-segment decisions when non-nil. The core is
	// otherwise silent.
	Trace io.Writer
}

// DefaultOptions matches the original pipeline defaults.
func DefaultOptions() Options {
	return Options{
		AtomIndex:   0,
		AtomIndexP:  0,
		AtomIndexC4: 1,
		Polyline:    SingleAtom,
		EpsPlane:    1e-2,
		EpsPolygon:  1e-2,
		EpsTriangle: 1e-8,
	}
}

// Hit records one piercing: which loop, which segment, and where.
type Hit struct {
	LoopID    int
	SegmentID int
	ResA      int
	ResB      int
	AtomA     coords.AtomKind
	AtomB     coords.AtomKind
	Point     v3.Vec
}

// Result is the entanglement count K with the underlying hits. The
// (LoopID, SegmentID) key is unique across Hits and K == len(Hits).
type Result struct {
	K    int
	Hits []Hit
}

// hitKey dedupes hits per (loop, segment). A comparable struct key
// cannot silently collide as IDs grow.
type hitKey struct {
	loopID    int
	segmentID int
}

// Evaluate tests every backbone segment against every surface and
// returns the unique piercings. Hits are emitted in (surface order,
// segment order); the first observation of a (loop, segment) key wins.
// The evaluator holds no state between calls.
func Evaluate(residues []coords.Residue, surfaces []surface.Surface, opts Options) Result {
	var result Result

	table := coords.BuildTable(residues, opts.AtomIndex)
	var segments []coords.Segment
	if opts.Polyline == PC4Alternating {
		segments = coords.PolylineSegments(coords.AlternatingPolyline(residues, opts.AtomIndexP, opts.AtomIndexC4))
	} else {
		segments = coords.SingleAtomSegments(table)
	}
	if len(segments) == 0 {
		return result
	}

	tree := buildSegmentTree(segments)

	seen := make(map[hitKey]struct{})
	for _, s := range surfaces {
		useTriangles := len(s.Triangles) > 0
		if !useTriangles && (!s.Plane.Valid || !s.Polygon.Valid) {
			continue
		}
		skip := skipMask(s.SkipResidues, table.N)

		for _, seg := range candidateSegments(tree, segments, s, opts.EpsPolygon) {
			if maskedEndpoint(skip, seg.ResA) || maskedEndpoint(skip, seg.ResB) {
				trace(opts.Trace, s, seg, "skipped_by_mask")
				continue
			}

			var point v3.Vec
			hit := false
			if useTriangles {
				for _, tri := range s.Triangles {
					if p, ok := geom.SegmentTriangle(seg.A, seg.B, tri, opts.EpsTriangle); ok {
						point = p
						hit = true
						break
					}
				}
				if !hit {
					trace(opts.Trace, s, seg, "triangle_miss")
					continue
				}
			} else {
				p, ok := geom.SegmentPlane(seg.A, seg.B, s.Plane, opts.EpsPlane)
				if !ok {
					trace(opts.Trace, s, seg, "plane_miss")
					continue
				}
				if !s.Polygon.Contains(s.Plane.Project(p), opts.EpsPolygon) {
					trace(opts.Trace, s, seg, "outside_polygon")
					continue
				}
				point = p
				hit = true
			}

			key := hitKey{loopID: s.LoopID, segmentID: seg.ID}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			trace(opts.Trace, s, seg, "hit")
			result.Hits = append(result.Hits, Hit{
				LoopID:    s.LoopID,
				SegmentID: seg.ID,
				ResA:      seg.ResA,
				ResB:      seg.ResB,
				AtomA:     seg.AtomA,
				AtomB:     seg.AtomB,
				Point:     point,
			})
		}
	}
	result.K = len(result.Hits)
	return result
}

// candidateSegments narrows segments to those whose bounding box
// touches the surface's, re-sorted by ID so hit ordering matches a
// full scan. Falls back to all segments when the tree or the surface
// box is unavailable.
func candidateSegments(tree *rtreego.Rtree, segments []coords.Segment, s surface.Surface, pad float64) []coords.Segment {
	if tree == nil {
		return segments
	}
	rect, ok := surfaceRect(s, pad)
	if !ok {
		return segments
	}
	matches := tree.SearchIntersect(rect)
	candidates := make([]coords.Segment, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, m.(*segmentSpatial).seg)
	}
	sort.Slice(candidates, func(a, b int) bool {
		return candidates[a].ID < candidates[b].ID
	})
	return candidates
}

// skipMask expands a surface's skip-residue list into a lookup sized
// to the chain.
func skipMask(skipResidues []int, n int) []bool {
	mask := make([]bool, n+1)
	for _, idx := range skipResidues {
		if idx > 0 && idx <= n {
			mask[idx] = true
		}
	}
	return mask
}

// maskedEndpoint reports whether residue idx is inside the mask range
// and masked.
func maskedEndpoint(mask []bool, idx int) bool {
	return idx > 0 && idx < len(mask) && mask[idx]
}

// trace writes one per-segment decision line when tracing is enabled.
func trace(w io.Writer, s surface.Surface, seg coords.Segment, status string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "loop=%d kind=%s segment=%d (%d,%d) %s\n",
		s.LoopID, s.Kind, seg.ID, seg.ResA, seg.ResB, status)
}
