package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/rnaknot/pkg/coords"
	"github.com/chazu/rnaknot/pkg/entangle"
	"github.com/chazu/rnaknot/pkg/secstruct"
	"github.com/chazu/rnaknot/pkg/surface"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: build-loops -> build_loops
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				// Keyword names normalize to underscore form so
				// :main-layer-only and :main_layer_only agree.
				kwName := strings.ReplaceAll(string(b[i+1:j]), "-", "_")
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus
		// operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a 3-D coordinate.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.3f %.3f %.3f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPair wraps one base pair.
type sexpPair struct {
	pair secstruct.BasePair
}

func (p *sexpPair) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(bp %d %d)", p.pair.I, p.pair.J)
}
func (p *sexpPair) Type() *zygo.RegisteredType { return nil }

// sexpPairs wraps a base-pair list.
type sexpPairs struct {
	pairs []secstruct.BasePair
}

func (p *sexpPairs) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pairs n=%d)", len(p.pairs))
}
func (p *sexpPairs) Type() *zygo.RegisteredType { return nil }

// sexpResidue wraps one residue's backbone coordinates.
type sexpResidue struct {
	res coords.Residue
}

func (r *sexpResidue) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(residue %d atoms=%d)", r.res.ResIndex, len(r.res.Atoms))
}
func (r *sexpResidue) Type() *zygo.RegisteredType { return nil }

// sexpResidues wraps a residue coordinate list.
type sexpResidues struct {
	residues []coords.Residue
}

func (r *sexpResidues) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(residues n=%d)", len(r.residues))
}
func (r *sexpResidues) Type() *zygo.RegisteredType { return nil }

// sexpLoops wraps a classified loop list.
type sexpLoops struct {
	loops []secstruct.Loop
}

func (l *sexpLoops) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(loops n=%d)", len(l.loops))
}
func (l *sexpLoops) Type() *zygo.RegisteredType { return nil }

// sexpSurfaces wraps a surface list.
type sexpSurfaces struct {
	surfaces []surface.Surface
}

func (s *sexpSurfaces) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(surfaces n=%d)", len(s.surfaces))
}
func (s *sexpSurfaces) Type() *zygo.RegisteredType { return nil }

// sexpResult wraps an evaluation result.
type sexpResult struct {
	result entangle.Result
}

func (r *sexpResult) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(result K=%d)", r.result.K)
}
func (r *sexpResult) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword
// argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_canonical) and plain strings
// ("canonical").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toPairType maps a keyword to a pair classification.
func toPairType(s zygo.Sexp) (secstruct.PairType, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return secstruct.PairUnclassified, err
	}
	switch name {
	case "canonical":
		return secstruct.PairCanonical, nil
	case "non_canonical", "non-canonical":
		return secstruct.PairNonCanonical, nil
	case "unclassified":
		return secstruct.PairUnclassified, nil
	}
	return secstruct.PairUnclassified, fmt.Errorf("unknown pair type %q", name)
}

// runState accumulates what a script produced; the engine reads it back
// after Run completes.
type runState struct {
	result *entangle.Result
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the pipeline builtins into a zygomys
// environment. Source must be preprocessed with preprocessSource()
// first so :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, state *runState) {

	// -----------------------------------------------------------------------
	// (vec3 1.0 2.0 3.0)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var parts [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
			}
			parts[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: parts[0], Y: parts[1], Z: parts[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (bp 1 8) or (bp 1 8 :type :canonical)
	// -----------------------------------------------------------------------
	env.AddFunction("bp", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("bp requires two residue indices, got %d", len(pa.positional))
		}
		i, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bp: i: %w", err)
		}
		j, err := toInt(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bp: j: %w", err)
		}
		pair := secstruct.BasePair{I: i, J: j}
		if v, ok := pa.kw["type"]; ok {
			t, err := toPairType(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bp: type: %w", err)
			}
			pair.Type = t
		}
		return &sexpPair{pair: pair}, nil
	})

	// -----------------------------------------------------------------------
	// (pairs (bp 1 8) (bp 2 7) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("pairs", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		list := make([]secstruct.BasePair, 0, len(args))
		for _, a := range args {
			p, ok := a.(*sexpPair)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("pairs: expected bp expression, got %T", a)
			}
			list = append(list, p.pair)
		}
		return &sexpPairs{pairs: list}, nil
	})

	// -----------------------------------------------------------------------
	// (residue 1 (vec3 ...) (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("residue", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("residue requires an index argument")
		}
		idx, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("residue: index: %w", err)
		}
		res := coords.Residue{ResIndex: idx}
		for _, a := range args[1:] {
			v, ok := a.(*sexpVec3)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("residue: expected vec3 expression, got %T", a)
			}
			res.Atoms = append(res.Atoms, v.vec)
		}
		return &sexpResidue{res: res}, nil
	})

	// -----------------------------------------------------------------------
	// (residues (residue ...) (residue ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("residues", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		list := make([]coords.Residue, 0, len(args))
		for _, a := range args {
			r, ok := a.(*sexpResidue)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("residues: expected residue expression, got %T", a)
			}
			list = append(list, r.res)
		}
		return &sexpResidues{residues: list}, nil
	})

	// -----------------------------------------------------------------------
	// (extract-main-layer pairs)
	// -----------------------------------------------------------------------
	env.AddFunction("extract_main_layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("extract-main-layer requires a pairs argument")
		}
		p, ok := args[0].(*sexpPairs)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("extract-main-layer: expected pairs, got %T", args[0])
		}
		layer, err := secstruct.ExtractMainLayer(p.pairs)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extract-main-layer: %w", err)
		}
		return &sexpPairs{pairs: layer}, nil
	})

	// -----------------------------------------------------------------------
	// (build-loops pairs 20 :main-layer-only true :include-multi true)
	// -----------------------------------------------------------------------
	env.AddFunction("build_loops", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("build-loops requires pairs and a residue count")
		}
		p, ok := pa.positional[0].(*sexpPairs)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("build-loops: expected pairs, got %T", pa.positional[0])
		}
		n, err := toInt(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("build-loops: n: %w", err)
		}
		opts := secstruct.DefaultLoopOptions()
		if v, ok := pa.kw["main_layer_only"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("build-loops: main-layer-only: %w", err)
			}
			opts.MainLayerOnly = b
		}
		if v, ok := pa.kw["include_multi"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("build-loops: include-multi: %w", err)
			}
			opts.IncludeMulti = b
		}
		loops, err := secstruct.BuildLoops(p.pairs, n, opts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("build-loops: %w", err)
		}
		return &sexpLoops{loops: loops}, nil
	})

	// -----------------------------------------------------------------------
	// (build-surfaces residues loops :atom-index 0 :eps-collinear 1e-6
	//                 :mode :triangle-planes)
	// -----------------------------------------------------------------------
	env.AddFunction("build_surfaces", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("build-surfaces requires residues and loops")
		}
		r, ok := pa.positional[0].(*sexpResidues)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("build-surfaces: expected residues, got %T", pa.positional[0])
		}
		l, ok := pa.positional[1].(*sexpLoops)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("build-surfaces: expected loops, got %T", pa.positional[1])
		}
		opts := surface.DefaultOptions()
		if v, ok := pa.kw["atom_index"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("build-surfaces: atom-index: %w", err)
			}
			opts.AtomIndex = n
		}
		if v, ok := pa.kw["eps_collinear"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("build-surfaces: eps-collinear: %w", err)
			}
			opts.EpsCollinear = f
		}
		if v, ok := pa.kw["mode"]; ok {
			mode, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("build-surfaces: mode: %w", err)
			}
			switch mode {
			case "best_fit_plane", "best-fit-plane":
				opts.Mode = surface.BestFitPlane
			case "triangle_planes", "triangle-planes":
				opts.Mode = surface.TrianglePlanes
			default:
				return zygo.SexpNull, fmt.Errorf("build-surfaces: unknown mode %q", mode)
			}
		}
		return &sexpSurfaces{surfaces: surface.Build(r.residues, l.loops, opts)}, nil
	})

	// -----------------------------------------------------------------------
	// (evaluate-entanglement residues surfaces :polyline :pc4
	//                        :eps-plane 1e-2 :eps-polygon 1e-2)
	// -----------------------------------------------------------------------
	env.AddFunction("evaluate_entanglement", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("evaluate-entanglement requires residues and surfaces")
		}
		r, ok := pa.positional[0].(*sexpResidues)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("evaluate-entanglement: expected residues, got %T", pa.positional[0])
		}
		s, ok := pa.positional[1].(*sexpSurfaces)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("evaluate-entanglement: expected surfaces, got %T", pa.positional[1])
		}
		opts := entangle.DefaultOptions()
		if v, ok := pa.kw["atom_index"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("evaluate-entanglement: atom-index: %w", err)
			}
			opts.AtomIndex = n
		}
		if v, ok := pa.kw["atom_index_p"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("evaluate-entanglement: atom-index-p: %w", err)
			}
			opts.AtomIndexP = n
		}
		if v, ok := pa.kw["atom_index_c4"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("evaluate-entanglement: atom-index-c4: %w", err)
			}
			opts.AtomIndexC4 = n
		}
		if v, ok := pa.kw["polyline"]; ok {
			mode, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("evaluate-entanglement: polyline: %w", err)
			}
			switch mode {
			case "single_atom", "single-atom", "single":
				opts.Polyline = entangle.SingleAtom
			case "pc4_alternating", "pc4-alternating", "pc4":
				opts.Polyline = entangle.PC4Alternating
			default:
				return zygo.SexpNull, fmt.Errorf("evaluate-entanglement: unknown polyline mode %q", mode)
			}
		}
		for kw, dst := range map[string]*float64{
			"eps_plane":    &opts.EpsPlane,
			"eps_polygon":  &opts.EpsPolygon,
			"eps_triangle": &opts.EpsTriangle,
		} {
			if v, ok := pa.kw[kw]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("evaluate-entanglement: %s: %w", strings.ReplaceAll(kw, "_", "-"), err)
				}
				*dst = f
			}
		}
		result := entangle.Evaluate(r.residues, s.surfaces, opts)
		state.result = &result
		return &sexpResult{result: result}, nil
	})

	// -----------------------------------------------------------------------
	// (k-of (evaluate-entanglement ...)) -> integer K
	// -----------------------------------------------------------------------
	env.AddFunction("k_of", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("k-of requires a result argument")
		}
		r, ok := args[0].(*sexpResult)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("k-of: expected result, got %T", args[0])
		}
		return &zygo.SexpInt{Val: int64(r.result.K)}, nil
	})
}
