// Package secstruct models RNA secondary structure: base pairs, the
// residue pair map, pseudoknot main-layer extraction, and closed-loop
// classification.
package secstruct

import (
	"errors"
	"fmt"
)

// PairType classifies a base pair's geometry class. The pipeline
// carries it through untouched; it only matters to downstream
// tabulation.
type PairType int

const (
	PairUnclassified PairType = iota
	PairCanonical
	PairNonCanonical
)

// String returns a short label for the pair type.
func (t PairType) String() string {
	switch t {
	case PairCanonical:
		return "canonical"
	case PairNonCanonical:
		return "non-canonical"
	}
	return "unclassified"
}

// BasePair is an unordered pair of 1-based residue indices.
type BasePair struct {
	I    int
	J    int
	Type PairType
}

// Sorted returns the pair's endpoints with i < j.
func (p BasePair) Sorted() (int, int) {
	if p.I > p.J {
		return p.J, p.I
	}
	return p.I, p.J
}

// Crosses reports whether two pairs form a pseudoknot: with a<b and
// c<d, they cross iff a<c<b<d or c<a<d<b.
func (p BasePair) Crosses(o BasePair) bool {
	a, b := p.Sorted()
	c, d := o.Sorted()
	return (a < c && c < b && b < d) || (c < a && a < d && d < b)
}

// Input invariant violations surfaced by BuildPairMap and BuildLoops.
var (
	ErrNonPositiveLength = errors.New("secstruct: residue count must be positive")
	ErrPairOutOfRange    = errors.New("secstruct: base pair index out of range")
	ErrSelfPaired        = errors.New("secstruct: base pair cannot be self-paired")
	ErrMultiplePairing   = errors.New("secstruct: residue paired multiple times")
	ErrCrossingPairs     = errors.New("secstruct: crossing pairs in non-pseudoknot input")
)

// PairMap maps each residue index to its partner, or 0 when unpaired.
// Index 0 is unused. The map satisfies m[i] == j iff m[j] == i.
type PairMap []int

// BuildPairMap validates pairs against a chain of n residues and
// builds the partner map. Out-of-range endpoints, self-pairs, and
// residues claimed by more than one pair are invariant violations.
func BuildPairMap(pairs []BasePair, n int) (PairMap, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n=%d", ErrNonPositiveLength, n)
	}
	m := make(PairMap, n+1)
	for _, bp := range pairs {
		if bp.I <= 0 || bp.J <= 0 || bp.I > n || bp.J > n {
			return nil, fmt.Errorf("%w: (%d,%d) with n=%d", ErrPairOutOfRange, bp.I, bp.J, n)
		}
		if bp.I == bp.J {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrSelfPaired, bp.I, bp.J)
		}
		i, j := bp.Sorted()
		if m[i] != 0 || m[j] != 0 {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrMultiplePairing, i, j)
		}
		m[i] = j
		m[j] = i
	}
	return m, nil
}

// Paired reports whether residue idx has a partner.
func (m PairMap) Paired(idx int) bool {
	return m[idx] != 0
}

// Pairs extracts every pair {i, m[i]} with i < m[i], in order of i.
func (m PairMap) Pairs() []BasePair {
	var pairs []BasePair
	for i := 1; i < len(m); i++ {
		if j := m[i]; j > i {
			pairs = append(pairs, BasePair{I: i, J: j})
		}
	}
	return pairs
}

// unpairedIn collects unpaired residues in the inclusive range
// [start, end].
func (m PairMap) unpairedIn(start, end int) []int {
	var residues []int
	for k := start; k <= end; k++ {
		if !m.Paired(k) {
			residues = append(residues, k)
		}
	}
	return residues
}
