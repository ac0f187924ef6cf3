package input

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// pdbLine formats a minimal fixed-column ATOM record. Atom names
// shorter than 4 characters start at column 14 per the PDB convention.
func pdbLine(serial int, atom, res, chain string, resSeq int, x, y, z float64) string {
	if len(atom) < 4 {
		atom = " " + atom
	}
	return fmt.Sprintf("ATOM  %5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f  1.00  0.00",
		serial, atom, strings.TrimSpace(res), chain, resSeq, x, y, z)
}

func TestReadPDBCoords(t *testing.T) {
	lines := []string{
		pdbLine(1, "P", "  G", "A", 10, 1.0, 2.0, 3.0),
		pdbLine(2, "C4'", "  G", "A", 10, 1.5, 2.5, 3.5),
		pdbLine(3, "N1", "  G", "A", 10, 9.0, 9.0, 9.0), // not requested
		pdbLine(4, "P", "  C", "A", 11, 4.0, 5.0, 6.0),
		// Residue 12 has only C4'.
		pdbLine(5, "C4'", "  A", "A", 12, 7.0, 8.0, 9.0),
		// Another chain is ignored once chain A is selected.
		pdbLine(6, "P", "  U", "B", 1, 0.0, 0.0, 0.0),
	}
	residues, err := ReadPDBCoords(strings.NewReader(strings.Join(lines, "\n")), DefaultPDBOptions())
	if err != nil {
		t.Fatalf("ReadPDBCoords: %v", err)
	}
	if len(residues) != 3 {
		t.Fatalf("residue count = %d, want 3", len(residues))
	}
	// Dense renumbering from 1 in file order.
	for i, r := range residues {
		if r.ResIndex != i+1 {
			t.Errorf("residue %d has index %d", i, r.ResIndex)
		}
		if len(r.Atoms) != 2 {
			t.Errorf("residue %d has %d atom slots", i, len(r.Atoms))
		}
	}
	if residues[0].Atoms[0].X != 1.0 || residues[0].Atoms[1].X != 1.5 {
		t.Errorf("residue 1 atoms = %+v", residues[0].Atoms)
	}
	// The P slot of residue 12 is absent (NaN).
	if !math.IsNaN(residues[2].Atoms[0].X) {
		t.Errorf("missing P should be NaN, got %+v", residues[2].Atoms[0])
	}
	if residues[2].Atoms[1].X != 7.0 {
		t.Errorf("residue 3 C4' = %+v", residues[2].Atoms[1])
	}
}

func TestReadPDBCoordsChainSelect(t *testing.T) {
	lines := []string{
		pdbLine(1, "P", "  G", "A", 1, 1.0, 0.0, 0.0),
		pdbLine(2, "P", "  G", "B", 1, 2.0, 0.0, 0.0),
	}
	opts := DefaultPDBOptions()
	opts.Chain = "B"
	residues, err := ReadPDBCoords(strings.NewReader(strings.Join(lines, "\n")), opts)
	if err != nil {
		t.Fatalf("ReadPDBCoords: %v", err)
	}
	if len(residues) != 1 || residues[0].Atoms[0].X != 2.0 {
		t.Errorf("residues = %+v", residues)
	}
}

func TestReadPDBCoordsSkipsJunk(t *testing.T) {
	src := strings.Join([]string{
		"HEADER    RNA",
		"short line",
		pdbLine(1, "P", "  G", "A", 1, 1.0, 0.0, 0.0),
		"TER",
		"END",
	}, "\n")
	residues, err := ReadPDBCoords(strings.NewReader(src), DefaultPDBOptions())
	if err != nil {
		t.Fatalf("ReadPDBCoords: %v", err)
	}
	if len(residues) != 1 {
		t.Errorf("residue count = %d, want 1", len(residues))
	}
}

func TestReadPDBCoordsFirstModelOnly(t *testing.T) {
	src := strings.Join([]string{
		pdbLine(1, "P", "  G", "A", 1, 1.0, 0.0, 0.0),
		"ENDMDL",
		pdbLine(2, "P", "  G", "A", 2, 2.0, 0.0, 0.0),
	}, "\n")
	residues, err := ReadPDBCoords(strings.NewReader(src), DefaultPDBOptions())
	if err != nil {
		t.Fatalf("ReadPDBCoords: %v", err)
	}
	if len(residues) != 1 {
		t.Errorf("residue count = %d, want 1 (first model only)", len(residues))
	}
}
