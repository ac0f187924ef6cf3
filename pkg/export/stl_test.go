package export

import (
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/rnaknot/pkg/geom"
	"github.com/chazu/rnaknot/pkg/surface"
)

func TestWriteSTL(t *testing.T) {
	surfaces := []surface.Surface{
		{
			LoopID: 1,
			Triangles: []geom.Triangle{
				{
					A: v3.Vec{X: 0, Y: 0, Z: 0},
					B: v3.Vec{X: 1, Y: 0, Z: 0},
					C: v3.Vec{X: 0, Y: 1, Z: 0},
				},
				{
					A: v3.Vec{X: 1, Y: 0, Z: 0},
					B: v3.Vec{X: 1, Y: 1, Z: 0},
					C: v3.Vec{X: 0, Y: 1, Z: 0},
				},
			},
		},
		{LoopID: 2}, // no triangles: omitted
	}

	var sb strings.Builder
	if err := WriteSTL(&sb, "loops", surfaces); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "solid loops\n") || !strings.HasSuffix(out, "endsolid loops\n") {
		t.Errorf("solid wrapper missing:\n%s", out)
	}
	if got := strings.Count(out, "facet normal"); got != 2 {
		t.Errorf("facet count = %d, want 2", got)
	}
	if got := strings.Count(out, "vertex"); got != 6 {
		t.Errorf("vertex count = %d, want 6", got)
	}
}

func TestWriteSTLEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteSTL(&sb, "empty", nil); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	if strings.Count(sb.String(), "facet") != 0 {
		t.Errorf("unexpected facets:\n%s", sb.String())
	}
}
