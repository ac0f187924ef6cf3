package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/rnaknot/pkg/secstruct"
)

// openToClose maps each bracket alphabet. Each alphabet is an
// independent pairing layer, so pseudoknots between layers survive
// parsing and reach the main-layer extractor intact.
var openToClose = map[byte]byte{
	'(': ')',
	'[': ']',
	'{': '}',
	'<': '>',
}

var closeToOpen = map[byte]byte{
	')': '(',
	']': '[',
	'}': '{',
	'>': '<',
}

// unpairedChars are the characters that mark an unpaired residue.
const unpairedChars = ".-xX"

// sequenceChars are the characters accepted in a sequence line.
const sequenceChars = "ACGUTNacgutn"

// ParseDotBracket converts a dot-bracket string to base pairs, one
// stack per bracket alphabet. Unbalanced or unknown characters are an
// error.
func ParseDotBracket(s string) ([]secstruct.BasePair, error) {
	stacks := make(map[byte][]int)
	var pairs []secstruct.BasePair

	for idx := 0; idx < len(s); idx++ {
		ch := s[idx]
		pos := idx + 1
		switch {
		case openToClose[ch] != 0:
			stacks[ch] = append(stacks[ch], pos)
		case closeToOpen[ch] != 0:
			open := closeToOpen[ch]
			stack := stacks[open]
			if len(stack) == 0 {
				return nil, fmt.Errorf("dotbracket: position %d: unbalanced %q", pos, string(ch))
			}
			i := stack[len(stack)-1]
			stacks[open] = stack[:len(stack)-1]
			pairs = append(pairs, secstruct.BasePair{I: i, J: pos})
		case strings.IndexByte(unpairedChars, ch) >= 0:
			// unpaired
		default:
			return nil, fmt.Errorf("dotbracket: position %d: unknown character %q", pos, string(ch))
		}
	}
	for open, stack := range stacks {
		if len(stack) > 0 {
			return nil, fmt.Errorf("dotbracket: unbalanced %q: %d left open", string(open), len(stack))
		}
	}
	return pairs, nil
}

// isSequenceLine reports whether every character belongs to the
// sequence alphabet.
func isSequenceLine(line string) bool {
	for i := 0; i < len(line); i++ {
		if strings.IndexByte(sequenceChars, line[i]) < 0 {
			return false
		}
	}
	return len(line) > 0
}

// isStructureLine reports whether every character is a bracket or an
// unpaired marker.
func isStructureLine(line string) bool {
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if openToClose[ch] == 0 && closeToOpen[ch] == 0 &&
			strings.IndexByte(unpairedChars, ch) < 0 {
			return false
		}
	}
	return len(line) > 0
}

// ReadSecstruct reads the two-part secstruct file format: sequence
// lines and dot-bracket lines, each possibly wrapped, classified per
// line and concatenated. Comment lines start with # or >. Returns the
// sequence, the pair list, and the residue count.
func ReadSecstruct(r io.Reader) (string, []secstruct.BasePair, int, error) {
	var seqParts, ssParts []string

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">") {
			continue
		}
		switch {
		case isStructureLine(line):
			ssParts = append(ssParts, line)
		case isSequenceLine(line):
			seqParts = append(seqParts, line)
		default:
			return "", nil, 0, fmt.Errorf("secstruct: line %d: neither sequence nor structure", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, 0, fmt.Errorf("secstruct: %w", err)
	}

	sequence := strings.Join(seqParts, "")
	structure := strings.Join(ssParts, "")
	if structure == "" {
		return "", nil, 0, fmt.Errorf("secstruct: no structure line found")
	}
	if sequence != "" && len(sequence) != len(structure) {
		return "", nil, 0, fmt.Errorf("secstruct: sequence length %d != structure length %d",
			len(sequence), len(structure))
	}
	pairs, err := ParseDotBracket(structure)
	if err != nil {
		return "", nil, 0, err
	}
	return sequence, pairs, len(structure), nil
}
