// Package input reads the secondary-structure and coordinate file
// formats the front-end feeds to the core. It is a collaborator of the
// pipeline: everything it produces enters through the four core
// operations.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/rnaknot/pkg/secstruct"
)

// ReadBPSEQ parses BPSEQ records: one "index base partner" line per
// residue, partner 0 meaning unpaired. Blank lines and # comments are
// ignored. Returns the pair list (each pair once, i<j) and the residue
// count. Partner claims must be symmetric.
func ReadBPSEQ(r io.Reader) ([]secstruct.BasePair, int, error) {
	partner := make(map[int]int)
	n := 0

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, 0, fmt.Errorf("bpseq: line %d: expected 3 fields, got %d", lineNo, len(fields))
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, 0, fmt.Errorf("bpseq: line %d: bad index %q", lineNo, fields[0])
		}
		p, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, 0, fmt.Errorf("bpseq: line %d: bad partner %q", lineNo, fields[2])
		}
		if idx <= 0 {
			return nil, 0, fmt.Errorf("bpseq: line %d: index must be positive", lineNo)
		}
		if prev, dup := partner[idx]; dup && prev != p {
			return nil, 0, fmt.Errorf("bpseq: line %d: residue %d listed twice with different partners", lineNo, idx)
		}
		partner[idx] = p
		if idx > n {
			n = idx
		}
		if p > n {
			n = p
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("bpseq: %w", err)
	}

	var pairs []secstruct.BasePair
	for i := 1; i <= n; i++ {
		j, ok := partner[i]
		if !ok || j == 0 {
			continue
		}
		if back, ok := partner[j]; ok && back != i {
			return nil, 0, fmt.Errorf("bpseq: residue %d claims %d but %d claims %d", i, j, j, back)
		}
		if i < j {
			pairs = append(pairs, secstruct.BasePair{I: i, J: j})
		}
	}
	return pairs, n, nil
}
