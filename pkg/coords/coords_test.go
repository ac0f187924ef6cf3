package coords

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func res(idx int, atoms ...v3.Vec) Residue {
	return Residue{ResIndex: idx, Atoms: atoms}
}

func TestBuildTable(t *testing.T) {
	residues := []Residue{
		res(3, v3.Vec{X: 3}),
		res(1, v3.Vec{X: 1}), // out of order is fine
		res(2, v3.Vec{X: math.NaN()}),
		res(5, v3.Vec{X: 5}),
	}
	table := BuildTable(residues, 0)
	if table.N != 5 {
		t.Fatalf("N = %d, want 5", table.N)
	}
	for _, idx := range []int{1, 3, 5} {
		if !table.Has(idx) {
			t.Errorf("residue %d missing", idx)
		}
	}
	// NaN coordinate and absent residue are both treated as missing.
	for _, idx := range []int{2, 4} {
		if table.Has(idx) {
			t.Errorf("residue %d should be absent", idx)
		}
	}
	if table.Has(0) || table.Has(6) {
		t.Errorf("out-of-range lookup succeeded")
	}
}

func TestBuildTableAtomIndexOutOfRange(t *testing.T) {
	table := BuildTable([]Residue{res(1, v3.Vec{X: 1})}, 3)
	if table.Has(1) {
		t.Errorf("atom index beyond record should yield no coordinate")
	}
}

func TestSingleAtomSegments(t *testing.T) {
	residues := []Residue{
		res(1, v3.Vec{X: 1}),
		res(2, v3.Vec{X: 2}),
		res(3, v3.Vec{X: math.NaN()}), // breaks the chain
		res(4, v3.Vec{X: 4}),
		res(5, v3.Vec{X: 5}),
	}
	segments := SingleAtomSegments(BuildTable(residues, 0))
	if len(segments) != 2 {
		t.Fatalf("segment count = %d, want 2", len(segments))
	}
	// IDs are contiguous from 1 in emission order.
	if segments[0].ID != 1 || segments[1].ID != 2 {
		t.Errorf("segment IDs = %d, %d", segments[0].ID, segments[1].ID)
	}
	if segments[0].ResA != 1 || segments[0].ResB != 2 {
		t.Errorf("first segment residues = (%d,%d)", segments[0].ResA, segments[0].ResB)
	}
	if segments[1].ResA != 4 || segments[1].ResB != 5 {
		t.Errorf("second segment residues = (%d,%d)", segments[1].ResA, segments[1].ResB)
	}
	for _, s := range segments {
		if s.AtomA != AtomSingle || s.AtomB != AtomSingle {
			t.Errorf("segment %d atom kinds = %s,%s", s.ID, s.AtomA, s.AtomB)
		}
	}
}

func TestAlternatingPolyline(t *testing.T) {
	residues := []Residue{
		res(1, v3.Vec{X: 1, Y: 0}, v3.Vec{X: 1, Y: 1}),
		res(2, v3.Vec{X: math.NaN()}, v3.Vec{X: 2, Y: 1}), // P missing
		res(3, v3.Vec{X: 3, Y: 0}, v3.Vec{X: 3, Y: 1}),
	}
	points := AlternatingPolyline(residues, 0, 1)
	wantAtoms := []AtomKind{AtomP, AtomC4, AtomC4, AtomP, AtomC4}
	wantRes := []int{1, 1, 2, 3, 3}
	if len(points) != len(wantAtoms) {
		t.Fatalf("point count = %d, want %d", len(points), len(wantAtoms))
	}
	for i, p := range points {
		if p.Atom != wantAtoms[i] || p.ResIndex != wantRes[i] {
			t.Errorf("point %d = res %d %s, want res %d %s",
				i, p.ResIndex, p.Atom, wantRes[i], wantAtoms[i])
		}
	}

	segments := PolylineSegments(points)
	if len(segments) != len(points)-1 {
		t.Fatalf("segment count = %d, want %d", len(segments), len(points)-1)
	}
	for i, s := range segments {
		if s.ID != i+1 {
			t.Errorf("segment %d has ID %d", i, s.ID)
		}
	}
	// Endpoint atom kinds carry through for reporting.
	if segments[1].AtomA != AtomC4 || segments[1].AtomB != AtomC4 {
		t.Errorf("segment 2 kinds = %s,%s", segments[1].AtomA, segments[1].AtomB)
	}
}

func TestPolylineSegmentsTooShort(t *testing.T) {
	if s := PolylineSegments(nil); s != nil {
		t.Errorf("nil polyline produced segments")
	}
	one := []PolylinePoint{{ResIndex: 1, Atom: AtomP}}
	if s := PolylineSegments(one); s != nil {
		t.Errorf("single point produced segments")
	}
}

func TestAtomKindString(t *testing.T) {
	if AtomP.String() != "P" || AtomC4.String() != "C4'" || AtomSingle.String() != "X" {
		t.Errorf("atom kind labels wrong: %s %s %s", AtomP, AtomC4, AtomSingle)
	}
}
