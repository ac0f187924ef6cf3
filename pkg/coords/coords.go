// Package coords holds per-residue backbone coordinates and derives
// the polyline segments tested for entanglement.
package coords

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// AtomKind labels which backbone atom a polyline endpoint came from.
type AtomKind int

const (
	AtomSingle AtomKind = iota
	AtomP
	AtomC4
)

// String returns a short label for the atom kind.
func (k AtomKind) String() string {
	switch k {
	case AtomP:
		return "P"
	case AtomC4:
		return "C4'"
	}
	return "X"
}

// Residue carries the coordinates of one residue's designated backbone
// atoms, indexed by atom index. ResIndex is 1-based; records may arrive
// out of order.
type Residue struct {
	ResIndex int
	Atoms    []v3.Vec
}

// finite reports whether every component of v is a finite number.
func finite(v v3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Table is a dense residue-indexed coordinate lookup for one atom
// index. Index 0 is unused.
type Table struct {
	N   int
	pos []v3.Vec
	has []bool
}

// BuildTable selects atom atomIndex from every residue record.
// Residues without that atom, and coordinates with non-finite
// components, are treated as absent.
func BuildTable(residues []Residue, atomIndex int) Table {
	maxIndex := 0
	for _, r := range residues {
		if r.ResIndex > maxIndex {
			maxIndex = r.ResIndex
		}
	}
	t := Table{
		N:   maxIndex,
		pos: make([]v3.Vec, maxIndex+1),
		has: make([]bool, maxIndex+1),
	}
	for _, r := range residues {
		if r.ResIndex <= 0 || r.ResIndex > maxIndex {
			continue
		}
		if atomIndex < 0 || atomIndex >= len(r.Atoms) {
			continue
		}
		v := r.Atoms[atomIndex]
		if !finite(v) {
			continue
		}
		t.pos[r.ResIndex] = v
		t.has[r.ResIndex] = true
	}
	return t
}

// Has reports whether residue idx has a coordinate.
func (t Table) Has(idx int) bool {
	return idx > 0 && idx <= t.N && t.has[idx]
}

// At returns residue idx's coordinate; only meaningful when Has(idx).
func (t Table) At(idx int) v3.Vec {
	return t.pos[idx]
}

// Segment is one backbone polyline link under test. IDs are contiguous
// from 1 in emission order.
type Segment struct {
	ID    int
	ResA  int
	ResB  int
	AtomA AtomKind
	AtomB AtomKind
	A     v3.Vec
	B     v3.Vec
}

// PolylinePoint is one ordered backbone point with its provenance.
type PolylinePoint struct {
	ResIndex int
	Atom     AtomKind
	Point    v3.Vec
}

// SingleAtomSegments links consecutive residues i, i+1 whenever both
// have a coordinate in the table. Missing residues break the chain
// silently.
func SingleAtomSegments(t Table) []Segment {
	if t.N <= 1 {
		return nil
	}
	var segments []Segment
	id := 1
	for i := 1; i < t.N; i++ {
		if !t.Has(i) || !t.Has(i + 1) {
			continue
		}
		segments = append(segments, Segment{
			ID:    id,
			ResA:  i,
			ResB:  i + 1,
			AtomA: AtomSingle,
			AtomB: AtomSingle,
			A:     t.At(i),
			B:     t.At(i + 1),
		})
		id++
	}
	return segments
}

// AlternatingPolyline emits P then C4' per residue in index order,
// skipping absent atoms, as the alternating backbone trace.
func AlternatingPolyline(residues []Residue, atomIndexP, atomIndexC4 int) []PolylinePoint {
	tp := BuildTable(residues, atomIndexP)
	tc := BuildTable(residues, atomIndexC4)
	n := tp.N
	if tc.N > n {
		n = tc.N
	}
	points := make([]PolylinePoint, 0, n*2)
	for i := 1; i <= n; i++ {
		if tp.Has(i) {
			points = append(points, PolylinePoint{ResIndex: i, Atom: AtomP, Point: tp.At(i)})
		}
		if tc.Has(i) {
			points = append(points, PolylinePoint{ResIndex: i, Atom: AtomC4, Point: tc.At(i)})
		}
	}
	return points
}

// PolylineSegments links consecutive polyline points into segments.
func PolylineSegments(points []PolylinePoint) []Segment {
	if len(points) < 2 {
		return nil
	}
	segments := make([]Segment, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		a := points[i]
		b := points[i+1]
		segments = append(segments, Segment{
			ID:    i + 1,
			ResA:  a.ResIndex,
			ResB:  b.ResIndex,
			AtomA: a.Atom,
			AtomB: b.Atom,
			A:     a.Point,
			B:     b.Point,
		})
	}
	return segments
}
