// Command rnaknot runs the entanglement pipeline on one RNA chain:
// secondary structure in (BPSEQ or secstruct), PDB coordinates in,
// entanglement count and piercing list out.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/chazu/rnaknot/pkg/engine"
	"github.com/chazu/rnaknot/pkg/entangle"
	"github.com/chazu/rnaknot/pkg/export"
	"github.com/chazu/rnaknot/pkg/input"
	"github.com/chazu/rnaknot/pkg/secstruct"
	"github.com/chazu/rnaknot/pkg/surface"
)

func main() {
	var (
		bpseqPath     = flag.String("bpseq", "", "BPSEQ secondary-structure file")
		secstructPath = flag.String("secstruct", "", "dot-bracket secstruct file")
		pdbPath       = flag.String("pdb", "", "PDB coordinate file")
		chain         = flag.String("chain", "", "chain ID (default: first chain)")
		scriptPath    = flag.String("script", "", "run a zygomys script instead of the file pipeline")
		csvPath       = flag.String("csv", "", "write hits as CSV to this path")
		stlPath       = flag.String("stl", "", "write surface triangles as ASCII STL to this path")
		surfaceMode   = flag.String("surface-mode", "triangles", "surface mode: plane or triangles")
		polyline      = flag.String("polyline", "pc4", "polyline mode: single or pc4")
		epsCollinear  = flag.Float64("eps-collinear", 1e-6, "collinearity threshold for plane fitting")
		epsPlane      = flag.Float64("eps-plane", 1e-2, "near-plane rejection epsilon")
		epsPolygon    = flag.Float64("eps-polygon", 1e-2, "polygon edge epsilon")
		epsTriangle   = flag.Float64("eps-triangle", 1e-8, "triangle intersection epsilon")
		verbose       = flag.Bool("v", false, "trace per-segment decisions to stderr")
	)
	flag.Parse()

	if *scriptPath != "" {
		runScript(*scriptPath)
		return
	}
	if *pdbPath == "" || (*bpseqPath == "" && *secstructPath == "") {
		log.Fatalf("need -pdb and one of -bpseq/-secstruct (or -script); see -h")
	}

	pairs, n := loadStructure(*bpseqPath, *secstructPath)

	pdbFile, err := os.Open(*pdbPath)
	if err != nil {
		log.Fatalf("open pdb: %v", err)
	}
	defer pdbFile.Close()
	pdbOpts := input.DefaultPDBOptions()
	pdbOpts.Chain = *chain
	residues, err := input.ReadPDBCoords(pdbFile, pdbOpts)
	if err != nil {
		log.Fatalf("read pdb: %v", err)
	}
	if len(residues) > n {
		n = len(residues)
	}

	loops, err := secstruct.BuildLoops(pairs, n, secstruct.DefaultLoopOptions())
	if err != nil {
		log.Fatalf("build loops: %v", err)
	}

	surfOpts := surface.DefaultOptions()
	surfOpts.EpsCollinear = *epsCollinear
	// The backbone trace reads P then C4'; surfaces sit on the C4' ring.
	surfOpts.AtomIndex = 1
	switch *surfaceMode {
	case "plane":
		surfOpts.Mode = surface.BestFitPlane
	case "triangles":
		surfOpts.Mode = surface.TrianglePlanes
	default:
		log.Fatalf("unknown -surface-mode %q", *surfaceMode)
	}
	surfaces := surface.Build(residues, loops, surfOpts)

	evalOpts := entangle.DefaultOptions()
	evalOpts.AtomIndex = surfOpts.AtomIndex
	evalOpts.EpsPlane = *epsPlane
	evalOpts.EpsPolygon = *epsPolygon
	evalOpts.EpsTriangle = *epsTriangle
	switch *polyline {
	case "single":
		evalOpts.Polyline = entangle.SingleAtom
	case "pc4":
		evalOpts.Polyline = entangle.PC4Alternating
	default:
		log.Fatalf("unknown -polyline %q", *polyline)
	}
	if *verbose {
		evalOpts.Trace = os.Stderr
	}

	result := entangle.Evaluate(residues, surfaces, evalOpts)

	report(os.Stdout, loops, result)
	if *csvPath != "" {
		if err := writeCSV(*csvPath, result); err != nil {
			log.Fatalf("write csv: %v", err)
		}
	}
	if *stlPath != "" {
		if err := writeSTL(*stlPath, surfaces); err != nil {
			log.Fatalf("write stl: %v", err)
		}
	}
}

// loadStructure reads base pairs from whichever structure flag was
// given.
func loadStructure(bpseqPath, secstructPath string) ([]secstruct.BasePair, int) {
	if bpseqPath != "" {
		f, err := os.Open(bpseqPath)
		if err != nil {
			log.Fatalf("open bpseq: %v", err)
		}
		defer f.Close()
		pairs, n, err := input.ReadBPSEQ(f)
		if err != nil {
			log.Fatalf("read bpseq: %v", err)
		}
		return pairs, n
	}
	f, err := os.Open(secstructPath)
	if err != nil {
		log.Fatalf("open secstruct: %v", err)
	}
	defer f.Close()
	_, pairs, n, err := input.ReadSecstruct(f)
	if err != nil {
		log.Fatalf("read secstruct: %v", err)
	}
	return pairs, n
}

// report prints the per-loop summary and total K.
func report(w io.Writer, loops []secstruct.Loop, result entangle.Result) {
	perLoop := make(map[int]int)
	for _, h := range result.Hits {
		perLoop[h.LoopID]++
	}
	for _, loop := range loops {
		i, j := loop.Outer()
		fmt.Fprintf(w, "loop %d %s (%d,%d): %d hit(s)\n",
			loop.ID, loop.Kind, i, j, perLoop[loop.ID])
	}
	fmt.Fprintf(w, "K = %d\n", result.K)
	for _, h := range result.Hits {
		fmt.Fprintf(w, "  loop %d segment %d (%d:%s -> %d:%s) at (%.3f, %.3f, %.3f)\n",
			h.LoopID, h.SegmentID, h.ResA, h.AtomA, h.ResB, h.AtomB,
			h.Point.X, h.Point.Y, h.Point.Z)
	}
}

// writeCSV tabulates hits, one row per piercing.
func writeCSV(path string, result entangle.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"loop_id", "segment_id", "res_a", "res_b", "atom_a", "atom_b", "x", "y", "z"}); err != nil {
		return err
	}
	for _, h := range result.Hits {
		row := []string{
			strconv.Itoa(h.LoopID),
			strconv.Itoa(h.SegmentID),
			strconv.Itoa(h.ResA),
			strconv.Itoa(h.ResB),
			h.AtomA.String(),
			h.AtomB.String(),
			strconv.FormatFloat(h.Point.X, 'f', 3, 64),
			strconv.FormatFloat(h.Point.Y, 'f', 3, 64),
			strconv.FormatFloat(h.Point.Z, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeSTL dumps the surface triangles for external viewers.
func writeSTL(path string, surfaces []surface.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteSTL(f, "rnaknot", surfaces)
}

// runScript evaluates a zygomys script through the engine and prints
// its result.
func runScript(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read script: %v", err)
	}
	eng := engine.NewEngine()
	result, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		log.Fatalf("script: %v", err)
	}
	for _, e := range evalErrs {
		fmt.Fprintf(os.Stderr, "script error: %s\n", e.Error())
	}
	if len(evalErrs) > 0 {
		os.Exit(1)
	}
	if result == nil {
		fmt.Println("script produced no entanglement result")
		return
	}
	fmt.Printf("K = %d\n", result.K)
	for _, h := range result.Hits {
		fmt.Printf("  loop %d segment %d (%d,%d)\n", h.LoopID, h.SegmentID, h.ResA, h.ResB)
	}
}
