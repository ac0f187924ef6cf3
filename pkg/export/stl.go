// Package export writes loop surfaces in mesh formats for external
// viewers. It replaces the pipeline's PyMOL debug dump: the triangles
// land in any STL-capable tool instead of a CGO object.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/deadsy/sdfx/render"

	"github.com/chazu/rnaknot/pkg/surface"
)

// WriteSTL writes every triangulated surface as one ASCII STL solid.
// Surfaces without triangles (invalid planes, hull-only mode) are
// omitted; an empty surface list produces an empty solid.
func WriteSTL(w io.Writer, name string, surfaces []surface.Surface) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "solid %s\n", name); err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	for _, s := range surfaces {
		for _, t := range s.Triangles {
			tri := render.Triangle3{t.A, t.B, t.C}
			n := tri.Normal()
			fmt.Fprintf(bw, "  facet normal %g %g %g\n", n.X, n.Y, n.Z)
			fmt.Fprintf(bw, "    outer loop\n")
			for _, v := range tri {
				fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
			}
			fmt.Fprintf(bw, "    endloop\n")
			fmt.Fprintf(bw, "  endfacet\n")
		}
	}
	if _, err := fmt.Fprintf(bw, "endsolid %s\n", name); err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	return nil
}
