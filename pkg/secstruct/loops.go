package secstruct

import "fmt"

// LoopKind classifies a closed loop by its immediate child count.
type LoopKind int

const (
	LoopUnknown LoopKind = iota
	LoopHairpin
	LoopInternal
	LoopMulti
)

// String returns a short label for the loop kind.
func (k LoopKind) String() string {
	switch k {
	case LoopHairpin:
		return "hairpin"
	case LoopInternal:
		return "internal"
	case LoopMulti:
		return "multi"
	}
	return "unknown"
}

// Loop is a closed structural element. ClosingPairs[0] is the outer
// pair; the rest are the immediate child pairs inside it, in encounter
// order. Boundary holds the unpaired residues on the loop boundary.
type Loop struct {
	ID           int
	Kind         LoopKind
	ClosingPairs []BasePair
	Boundary     []int
}

// Outer returns the loop's outer closing pair with sorted endpoints.
func (l Loop) Outer() (int, int) {
	if len(l.ClosingPairs) == 0 {
		return 0, 0
	}
	return l.ClosingPairs[0].Sorted()
}

// LoopOptions control loop construction.
type LoopOptions struct {
	// MainLayerOnly runs the pseudoknot extractor first; otherwise the
	// input must already be non-crossing and crossings are an invariant
	// violation.
	MainLayerOnly bool
	// IncludeMulti keeps multi-branch loops in the result.
	IncludeMulti bool
}

// DefaultLoopOptions matches the full pipeline: pairs are reduced to
// the main layer and multi-loops are kept.
func DefaultLoopOptions() LoopOptions {
	return LoopOptions{MainLayerOnly: true, IncludeMulti: true}
}

// childPairs enumerates the immediate child pairs inside (i, j). A
// residue opens a child when its partner lies to its right at nesting
// depth 0; depth tracks opens and closes across the scan.
func (m PairMap) childPairs(i, j int) []BasePair {
	var children []BasePair
	depth := 0
	for idx := i + 1; idx <= j-1; idx++ {
		if !m.Paired(idx) {
			continue
		}
		partner := m[idx]
		if idx < partner {
			if depth == 0 {
				children = append(children, BasePair{I: idx, J: partner})
			}
			depth++
		} else {
			depth--
		}
	}
	return children
}

// classify determines the loop kind for outer pair (i, j) and returns
// the closing pairs and boundary residues. 0 children is a hairpin,
// 1 an internal loop (covering bulges and stacks), 2+ a multi-loop.
func (m PairMap) classify(i, j int) (LoopKind, []BasePair, []int) {
	closing := []BasePair{{I: i, J: j}}
	children := m.childPairs(i, j)
	closing = append(closing, children...)

	switch len(children) {
	case 0:
		return LoopHairpin, closing, m.unpairedIn(i+1, j-1)
	case 1:
		k, l := children[0].Sorted()
		boundary := append(m.unpairedIn(i+1, k-1), m.unpairedIn(l+1, j-1)...)
		return LoopInternal, closing, boundary
	}
	return LoopMulti, closing, m.unpairedIn(i+1, j-1)
}

// findCrossing returns the first crossing pair of pairs, if any.
func findCrossing(pairs []BasePair) (BasePair, BasePair, bool) {
	for a := 0; a < len(pairs); a++ {
		for b := a + 1; b < len(pairs); b++ {
			if pairs[a].Crosses(pairs[b]) {
				return pairs[a], pairs[b], true
			}
		}
	}
	return BasePair{}, BasePair{}, false
}

// MultiLoopPairs collects the closing pairs of every multi-branch loop,
// deduplicated in encounter order. Debug front-ends use it to color
// multi-loop stems.
func MultiLoopPairs(pairs []BasePair, n int, opts LoopOptions) ([]BasePair, error) {
	loops, err := BuildLoops(pairs, n, opts)
	if err != nil {
		return nil, err
	}
	seen := make(map[[2]int]bool)
	var out []BasePair
	for _, loop := range loops {
		if loop.Kind != LoopMulti {
			continue
		}
		for _, p := range loop.ClosingPairs {
			i, j := p.Sorted()
			if seen[[2]int{i, j}] {
				continue
			}
			seen[[2]int{i, j}] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// BuildLoops partitions a non-crossing pair set over n residues into
// loops, emitted in increasing order of the outer pair's left endpoint.
// With MainLayerOnly set the pseudoknot extractor runs first; otherwise
// crossing input is an invariant violation.
func BuildLoops(pairs []BasePair, n int, opts LoopOptions) ([]Loop, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n=%d", ErrNonPositiveLength, n)
	}
	filtered := pairs
	if opts.MainLayerOnly {
		layer, err := ExtractMainLayer(pairs)
		if err != nil {
			return nil, err
		}
		filtered = layer
	} else if a, b, crossing := findCrossing(pairs); crossing {
		return nil, fmt.Errorf("%w: (%d,%d) x (%d,%d)", ErrCrossingPairs, a.I, a.J, b.I, b.J)
	}

	m, err := BuildPairMap(filtered, n)
	if err != nil {
		return nil, err
	}

	var loops []Loop
	id := 1
	for i := 1; i <= n; i++ {
		j := m[i]
		if j == 0 || i > j {
			continue
		}
		kind, closing, boundary := m.classify(i, j)
		if kind == LoopMulti && !opts.IncludeMulti {
			continue
		}
		loops = append(loops, Loop{
			ID:           id,
			Kind:         kind,
			ClosingPairs: closing,
			Boundary:     boundary,
		})
		id++
	}
	return loops, nil
}
