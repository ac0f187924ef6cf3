package input

import (
	"strings"
	"testing"

	"github.com/chazu/rnaknot/pkg/secstruct"
)

func pairSet(pairs []secstruct.BasePair) map[[2]int]bool {
	set := make(map[[2]int]bool)
	for _, p := range pairs {
		i, j := p.Sorted()
		set[[2]int{i, j}] = true
	}
	return set
}

func TestParseDotBracket(t *testing.T) {
	pairs, err := ParseDotBracket("((....))")
	if err != nil {
		t.Fatalf("ParseDotBracket: %v", err)
	}
	set := pairSet(pairs)
	if len(set) != 2 || !set[[2]int{1, 8}] || !set[[2]int{2, 7}] {
		t.Errorf("pairs = %+v", pairs)
	}
}

func TestParseDotBracketPseudoknot(t *testing.T) {
	// Brackets of different alphabets may cross; that is the whole
	// point of keeping them as separate layers.
	pairs, err := ParseDotBracket("((..[[..))..]]")
	if err != nil {
		t.Fatalf("ParseDotBracket: %v", err)
	}
	set := pairSet(pairs)
	want := [][2]int{{1, 10}, {2, 9}, {5, 14}, {6, 13}}
	if len(set) != len(want) {
		t.Fatalf("pair count = %d, want %d", len(set), len(want))
	}
	for _, w := range want {
		if !set[w] {
			t.Errorf("missing pair %v", w)
		}
	}
	// Crossing pairs survive parsing and are resolved downstream.
	layer, err := secstruct.ExtractMainLayer(pairs)
	if err != nil {
		t.Fatalf("ExtractMainLayer: %v", err)
	}
	if len(layer) != 2 {
		t.Errorf("main layer size = %d, want 2", len(layer))
	}
}

func TestParseDotBracketErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unbalanced close", "))"},
		{"unbalanced open", "(("},
		{"unknown char", "(?)"},
		{"mismatched alphabets", "(]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDotBracket(tt.src); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestReadSecstruct(t *testing.T) {
	src := `> toy
GGAAAACC
((....))
`
	seq, pairs, n, err := ReadSecstruct(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadSecstruct: %v", err)
	}
	if seq != "GGAAAACC" || n != 8 {
		t.Errorf("seq = %q n = %d", seq, n)
	}
	if len(pairs) != 2 {
		t.Errorf("pair count = %d, want 2", len(pairs))
	}
}

func TestReadSecstructMismatchedLengths(t *testing.T) {
	src := "GGAA\n((....))\n"
	if _, _, _, err := ReadSecstruct(strings.NewReader(src)); err == nil {
		t.Errorf("expected length mismatch error")
	}
}

func TestReadSecstructStructureOnly(t *testing.T) {
	_, pairs, n, err := ReadSecstruct(strings.NewReader("((..))\n"))
	if err != nil {
		t.Fatalf("ReadSecstruct: %v", err)
	}
	if n != 6 || len(pairs) != 2 {
		t.Errorf("n = %d pairs = %+v", n, pairs)
	}
}
