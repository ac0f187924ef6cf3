package secstruct

// SkipResidues lists the residues whose incident backbone segments must
// not be tested against the loop's own surface. Hairpins mask their
// whole closing range; internal loops mask both strands between the
// outer and child pairs; multi-loops mask the span between their
// extreme endpoints plus every closing-pair endpoint.
func SkipResidues(loop Loop) []int {
	if len(loop.ClosingPairs) == 0 {
		return nil
	}
	var skip []int
	addRange := func(start, end int) {
		for k := start; k <= end; k++ {
			skip = append(skip, k)
		}
	}

	switch loop.Kind {
	case LoopHairpin:
		i, j := loop.ClosingPairs[0].Sorted()
		addRange(i, j)

	case LoopInternal:
		if len(loop.ClosingPairs) < 2 {
			i, j := loop.ClosingPairs[0].Sorted()
			addRange(i, j)
			return skip
		}
		i, j := loop.ClosingPairs[0].Sorted()
		k, l := loop.ClosingPairs[1].Sorted()
		addRange(i, k)
		addRange(l, j)

	case LoopMulti:
		minRes, maxRes := loop.ClosingPairs[0].Sorted()
		for _, p := range loop.ClosingPairs {
			i, j := p.Sorted()
			if i < minRes {
				minRes = i
			}
			if j > maxRes {
				maxRes = j
			}
			skip = append(skip, i, j)
		}
		addRange(minRes, maxRes)
	}
	return skip
}
