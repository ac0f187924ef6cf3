package input

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/rnaknot/pkg/coords"
)

// PDBOptions select which atoms and chain to read.
type PDBOptions struct {
	// AtomNames are the backbone atoms collected per residue, in atom
	// index order. Empty defaults to P then C4'.
	AtomNames []string
	// Chain selects a chain ID; empty takes the first chain seen.
	Chain string
	// IncludeHetero also reads HETATM records.
	IncludeHetero bool
}

// DefaultPDBOptions reads the P / C4' backbone trace of the first
// chain.
func DefaultPDBOptions() PDBOptions {
	return PDBOptions{AtomNames: []string{"P", "C4'"}}
}

// pdbResidue accumulates one residue's requested atoms while reading.
type pdbResidue struct {
	seq   string
	atoms []v3.Vec
	found []bool
}

// absent marks a coordinate slot with no atom; the coordinate table
// treats non-finite components as missing.
var absent = v3.Vec{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}

// ReadPDBCoords reads backbone coordinates from fixed-column PDB ATOM
// records. Residues are renumbered densely from 1 in file order, one
// chain per call. Residues with none of the requested atoms, and
// records with malformed coordinate fields, are skipped silently.
func ReadPDBCoords(r io.Reader, opts PDBOptions) ([]coords.Residue, error) {
	atomNames := opts.AtomNames
	if len(atomNames) == 0 {
		atomNames = []string{"P", "C4'"}
	}
	nameIndex := make(map[string]int, len(atomNames))
	for i, name := range atomNames {
		nameIndex[name] = i
	}

	chain := opts.Chain
	var order []string
	byKey := make(map[string]*pdbResidue)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "ENDMDL") {
			// First model only.
			break
		}
		if len(line) < 54 {
			continue
		}
		record := strings.TrimSpace(line[0:6])
		if record != "ATOM" && !(opts.IncludeHetero && record == "HETATM") {
			continue
		}

		chainID := strings.TrimSpace(line[21:22])
		if chain == "" {
			chain = chainID
		}
		if chainID != chain {
			continue
		}

		atomName := strings.TrimSpace(line[12:16])
		slot, wanted := nameIndex[atomName]
		if !wanted {
			continue
		}

		// Residue key includes the insertion code so inserted residues
		// stay distinct.
		resKey := strings.TrimSpace(line[22:27])
		res, ok := byKey[resKey]
		if !ok {
			res = &pdbResidue{
				seq:   resKey,
				atoms: make([]v3.Vec, len(atomNames)),
				found: make([]bool, len(atomNames)),
			}
			for i := range res.atoms {
				res.atoms[i] = absent
			}
			byKey[resKey] = res
			order = append(order, resKey)
		}
		if res.found[slot] {
			// Keep the first altloc.
			continue
		}

		x, errX := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
		z, errZ := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
		if errX != nil || errY != nil || errZ != nil {
			continue
		}
		res.atoms[slot] = v3.Vec{X: x, Y: y, Z: z}
		res.found[slot] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pdb: %w", err)
	}

	var residues []coords.Residue
	seq := 1
	for _, key := range order {
		res := byKey[key]
		any := false
		for _, f := range res.found {
			if f {
				any = true
				break
			}
		}
		if !any {
			continue
		}
		residues = append(residues, coords.Residue{
			ResIndex: seq,
			Atoms:    append([]v3.Vec(nil), res.atoms...),
		})
		seq++
	}
	return residues, nil
}
