package secstruct

import (
	"reflect"
	"sort"
	"testing"
)

func sortedUnique(in []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func rangeInts(a, b int) []int {
	var out []int
	for i := a; i <= b; i++ {
		out = append(out, i)
	}
	return out
}

func TestSkipResiduesHairpin(t *testing.T) {
	loop := Loop{Kind: LoopHairpin, ClosingPairs: []BasePair{{I: 3, J: 9}}}
	got := sortedUnique(SkipResidues(loop))
	if want := rangeInts(3, 9); !reflect.DeepEqual(got, want) {
		t.Errorf("skip = %v, want %v", got, want)
	}
}

func TestSkipResiduesInternal(t *testing.T) {
	loop := Loop{
		Kind:         LoopInternal,
		ClosingPairs: []BasePair{{I: 1, J: 12}, {I: 4, J: 9}},
	}
	got := sortedUnique(SkipResidues(loop))
	want := append(rangeInts(1, 4), rangeInts(9, 12)...)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("skip = %v, want %v", got, want)
	}
}

func TestSkipResiduesInternalDegenerate(t *testing.T) {
	loop := Loop{Kind: LoopInternal, ClosingPairs: []BasePair{{I: 2, J: 7}}}
	got := sortedUnique(SkipResidues(loop))
	if want := rangeInts(2, 7); !reflect.DeepEqual(got, want) {
		t.Errorf("skip = %v, want %v", got, want)
	}
}

func TestSkipResiduesMulti(t *testing.T) {
	loop := Loop{
		Kind: LoopMulti,
		ClosingPairs: []BasePair{
			{I: 1, J: 20}, {I: 3, J: 8}, {I: 10, J: 15},
		},
	}
	got := sortedUnique(SkipResidues(loop))
	if want := rangeInts(1, 20); !reflect.DeepEqual(got, want) {
		t.Errorf("skip = %v, want %v", got, want)
	}
}

func TestSkipResiduesEmpty(t *testing.T) {
	if skip := SkipResidues(Loop{Kind: LoopHairpin}); skip != nil {
		t.Errorf("skip = %v, want nil", skip)
	}
}
