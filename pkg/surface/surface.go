// Package surface turns classified loops into planar surfaces: it
// orders each loop's boundary residues, fits a plane, and builds either
// a convex-hull outline or an ear-clipped triangle fan on it.
package surface

import (
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/rnaknot/pkg/coords"
	"github.com/chazu/rnaknot/pkg/geom"
	"github.com/chazu/rnaknot/pkg/secstruct"
)

// Mode selects how a loop's surface is represented.
type Mode int

const (
	// BestFitPlane projects boundary points onto the fit plane and
	// takes their 2-D convex hull as the outline.
	BestFitPlane Mode = iota
	// TrianglePlanes additionally ear-clips the projected outline into
	// 3-D triangles tested individually.
	TrianglePlanes
)

// Options control surface construction.
type Options struct {
	// AtomIndex selects the boundary atom per residue.
	AtomIndex int
	// EpsCollinear rejects near-collinear boundaries: planes whose
	// eigenvalue ratio falls below it, and triangles whose cross-product
	// magnitude does not exceed it.
	EpsCollinear float64
	Mode         Mode
}

// DefaultOptions matches the original pipeline defaults.
func DefaultOptions() Options {
	return Options{
		AtomIndex:    0,
		EpsCollinear: 1e-6,
		Mode:         TrianglePlanes,
	}
}

// earClipEps is the signed-area tolerance used during triangulation.
const earClipEps = 1e-12

// Surface is one loop's planar face with everything the evaluator
// needs: the plane frame, the 2-D outline, optional 3-D triangles, and
// the residues masked from self-intersection.
type Surface struct {
	LoopID       int
	Kind         secstruct.LoopKind
	ClosingPairs []secstruct.BasePair
	Plane        geom.Plane
	Polygon      geom.Polygon
	Triangles    []geom.Triangle
	SkipResidues []int
}

// boundaryIndices orders the residues that outline a loop's face.
// Hairpins walk their full closing range. Internal loops walk the left
// strand, cross the child pair, walk the right strand, and close
// through the outer pair. Multi-loops take the branch-gap face: from
// the outer pair's left endpoint to the first branch, closed through
// that branch's right endpoint; remaining branches belong to the child
// loops' own entries.
func boundaryIndices(loop secstruct.Loop, n int) []int {
	if len(loop.ClosingPairs) == 0 {
		return append([]int(nil), loop.Boundary...)
	}

	var indices []int
	seen := make(map[int]bool)
	add := func(idx int) {
		if idx <= 0 || idx > n || seen[idx] {
			return
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	addRange := func(start, end int) {
		for idx := start; idx <= end; idx++ {
			add(idx)
		}
	}

	switch loop.Kind {
	case secstruct.LoopHairpin:
		i, j := loop.ClosingPairs[0].Sorted()
		addRange(i, j)

	case secstruct.LoopInternal:
		i, j := loop.ClosingPairs[0].Sorted()
		if len(loop.ClosingPairs) < 2 {
			addRange(i, j)
			break
		}
		h, l := loop.ClosingPairs[1].Sorted()
		addRange(i, h-1)
		add(h)
		add(l)
		addRange(l+1, j-1)
		add(i)
		add(j)

	case secstruct.LoopMulti:
		pairs := append([]secstruct.BasePair(nil), loop.ClosingPairs...)
		sort.Slice(pairs, func(a, b int) bool {
			ai, _ := pairs[a].Sorted()
			bi, _ := pairs[b].Sorted()
			return ai < bi
		})
		l, _ := pairs[0].Sorted()
		if len(pairs) < 2 {
			_, r := pairs[0].Sorted()
			addRange(l, r)
			break
		}
		iBr, jBr := pairs[1].Sorted()
		addRange(l, iBr-1)
		add(iBr)
		add(jBr)

	default:
		for _, idx := range loop.Boundary {
			add(idx)
		}
		for _, p := range loop.ClosingPairs {
			add(p.I)
			add(p.J)
		}
	}
	return indices
}

// Build constructs one surface per loop. Loops whose boundary has too
// few located residues, or whose boundary is near-collinear, get an
// invalid plane and contribute nothing downstream; that is a degeneracy,
// not an error.
func Build(residues []coords.Residue, loops []secstruct.Loop, opts Options) []Surface {
	table := coords.BuildTable(residues, opts.AtomIndex)
	surfaces := make([]Surface, 0, len(loops))
	for _, loop := range loops {
		s := Surface{
			LoopID:       loop.ID,
			Kind:         loop.Kind,
			ClosingPairs: append([]secstruct.BasePair(nil), loop.ClosingPairs...),
			SkipResidues: secstruct.SkipResidues(loop),
		}

		var boundary []v3.Vec
		for _, idx := range boundaryIndices(loop, table.N) {
			if !table.Has(idx) {
				continue
			}
			boundary = append(boundary, table.At(idx))
		}

		s.Plane = geom.FitPlane(boundary, opts.EpsCollinear)
		switch opts.Mode {
		case BestFitPlane:
			s.Polygon = hullPolygon(boundary, s.Plane)
		default:
			s.Polygon, s.Triangles = fanTriangles(boundary, s.Plane, opts.EpsCollinear)
		}
		surfaces = append(surfaces, s)
	}
	return surfaces
}

// hullPolygon projects the boundary into plane coordinates and keeps
// the convex hull as the outline.
func hullPolygon(boundary []v3.Vec, plane geom.Plane) geom.Polygon {
	if !plane.Valid || len(boundary) < 3 {
		return geom.Polygon{}
	}
	projected := make([]v2.Vec, 0, len(boundary))
	for _, p := range boundary {
		projected = append(projected, plane.Project(p))
	}
	hull := geom.ConvexHull(projected)
	return geom.NewPolygon(hull)
}

// fanTriangles keeps the projected outline in input order and ear-clips
// it; triangles whose cross-product magnitude does not exceed
// epsCollinear are dropped.
func fanTriangles(boundary []v3.Vec, plane geom.Plane, epsCollinear float64) (geom.Polygon, []geom.Triangle) {
	if !plane.Valid || len(boundary) < 3 {
		return geom.Polygon{}, nil
	}
	outline := make([]v2.Vec, 0, len(boundary))
	planar := make([]v3.Vec, 0, len(boundary))
	for _, p := range boundary {
		q := plane.Project(p)
		outline = append(outline, q)
		planar = append(planar, plane.Unproject(q))
	}
	polygon := geom.NewPolygon(outline)

	var triangles []geom.Triangle
	for _, idx := range geom.EarClip(outline, earClipEps) {
		t := geom.Triangle{A: planar[idx[0]], B: planar[idx[1]], C: planar[idx[2]]}
		if t.Normal().Length() <= epsCollinear {
			continue
		}
		triangles = append(triangles, t)
	}
	return polygon, triangles
}
