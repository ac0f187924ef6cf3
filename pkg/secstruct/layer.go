package secstruct

import (
	"fmt"
	"sort"
)

// pairKey identifies an unordered pair by its sorted endpoints.
type pairKey struct {
	i int
	j int
}

func keyOf(i, j int) pairKey {
	if i > j {
		i, j = j, i
	}
	return pairKey{i: i, j: j}
}

// ExtractMainLayer returns the largest subset of pairs in which no two
// pairs cross, computed by a Nussinov-style dynamic program over the
// compressed endpoint set. Each returned pair keeps the classification
// tag of the matching input pair. Self-paired input is an invariant
// violation; an empty input yields an empty layer.
func ExtractMainLayer(pairs []BasePair) ([]BasePair, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	sorted := make([][2]int, 0, len(pairs))
	types := make(map[pairKey]PairType, len(pairs))
	for _, bp := range pairs {
		if bp.I == bp.J {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrSelfPaired, bp.I, bp.J)
		}
		i, j := bp.Sorted()
		sorted = append(sorted, [2]int{i, j})
		if _, ok := types[keyOf(i, j)]; !ok {
			types[keyOf(i, j)] = bp.Type
		}
	}

	layer := extractLayer(sorted)

	result := make([]BasePair, 0, len(layer))
	for _, p := range layer {
		result = append(result, BasePair{I: p[0], J: p[1], Type: types[keyOf(p[0], p[1])]})
	}
	return result, nil
}

// compressEndpoints maps residue indices onto 0..L-1 over the sorted
// unique endpoint set, so the DP is cubic in distinct endpoints rather
// than in the maximum residue index.
func compressEndpoints(pairs [][2]int) (compressed [][2]int, invHash []int) {
	residues := make([]int, 0, len(pairs)*2)
	for _, p := range pairs {
		residues = append(residues, p[0], p[1])
	}
	sort.Ints(residues)
	invHash = make([]int, 0, len(residues))
	for idx, r := range residues {
		if idx == 0 || r != residues[idx-1] {
			invHash = append(invHash, r)
		}
	}
	hash := make(map[int]int, len(invHash))
	for idx, r := range invHash {
		hash[r] = idx
	}
	compressed = make([][2]int, 0, len(pairs))
	for _, p := range pairs {
		compressed = append(compressed, [2]int{hash[p[0]], hash[p[1]]})
	}
	return compressed, invHash
}

// extractLayer runs the DP and backtrace over sorted (i<j) pairs and
// returns the selected non-crossing subset in original numbering.
func extractLayer(pairs [][2]int) [][2]int {
	compressed, invHash := compressEndpoints(pairs)
	L := len(invHash)

	exists := make(map[pairKey]bool, len(compressed))
	for _, p := range compressed {
		exists[keyOf(p[0], p[1])] = true
	}

	gamma := make([][]int, L)
	for i := range gamma {
		gamma[i] = make([]int, L)
	}
	gv := func(i, j int) int {
		if i < 0 || j < 0 || i >= L || j >= L || i > j {
			return 0
		}
		return gamma[i][j]
	}

	for d := 1; d < L; d++ {
		for i := 0; i+d < L; i++ {
			j := i + d
			best := gv(i+1, j)
			if v := gv(i, j-1); v > best {
				best = v
			}
			diag := gv(i+1, j-1)
			if exists[keyOf(i, j)] {
				diag++
			}
			if diag > best {
				best = diag
			}
			for k := i; k < j; k++ {
				if v := gv(i, k) + gv(k+1, j); v > best {
					best = v
				}
			}
			gamma[i][j] = best
		}
	}

	// Backtrace. Tie-break order matters for reproducibility: skip
	// left, skip right, take the pair, then split at the smallest k.
	var layer [][2]int
	emitted := make([]bool, L)
	stack := [][2]int{{0, L - 1}}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i, j := node[0], node[1]
		if i >= j {
			continue
		}
		if gv(i+1, j) == gamma[i][j] {
			stack = append(stack, [2]int{i + 1, j})
			continue
		}
		if gv(i, j-1) == gamma[i][j] {
			stack = append(stack, [2]int{i, j - 1})
			continue
		}
		if exists[keyOf(i, j)] && gv(i+1, j-1)+1 == gamma[i][j] && !emitted[i] && !emitted[j] {
			emitted[i] = true
			emitted[j] = true
			layer = append(layer, [2]int{i, j})
			stack = append(stack, [2]int{i + 1, j - 1})
			continue
		}
		for k := i; k < j; k++ {
			if gv(i, k)+gv(k+1, j) == gamma[i][j] {
				stack = append(stack, [2]int{k + 1, j})
				stack = append(stack, [2]int{i, k})
				break
			}
		}
	}

	decompressed := make([][2]int, 0, len(layer))
	for _, p := range layer {
		decompressed = append(decompressed, [2]int{invHash[p[0]], invHash[p[1]]})
	}
	return decompressed
}
