package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/poly"
	"github.com/chazu/brep/pkg/kernel/sdfx"
	"github.com/chazu/brep/pkg/topo"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys.
// It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: center-of-mass -> center_of_mass
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
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
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
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
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

// sexpShape wraps a topo.Shape so it can be passed between builtins.
type sexpShape struct {
	shape topo.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %s)", s.shape)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a point.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

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

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
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
				// Keyword at end with no value: treat as flag with nil.
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

// toPositive extracts a number that must be greater than zero.
func toPositive(s zygo.Sexp) (float64, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("expected positive number, got %g", f)
	}
	return f, nil
}

// toVec3 extracts a point from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a shape handle from a sexpShape.
func toShape(s zygo.Sexp) (topo.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return topo.Shape{}, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toTyped narrows every shape in items with as.
func toTyped[T any](items []zygo.Sexp, as func(topo.Shaper) (T, error)) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, item := range items {
		sh, err := toShape(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		v, err := as(sh)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// listOf narrows every shape of a list argument such as :faces or :shells.
func listOf[T any](s zygo.Sexp, as func(topo.Shaper) (T, error)) ([]T, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	return toTyped(items, as)
}

func shapeResult(s topo.Shaper) zygo.Sexp {
	return &sexpShape{shape: s.Upcast()}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the shape builtins into a zygomys environment.
// Planar shapes are built in k; curved primitives are faceted by b.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, k *poly.Kernel, b *sdfx.Builder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (box 10 20 30) -> closed shell, min corner at the origin
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("box requires exactly 3 arguments, got %d", len(args))
		}
		var dims [3]float64
		for i, a := range args {
			f, err := toPositive(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: dimension %d: %w", i, err)
			}
			dims[i] = f
		}
		return shapeResult(topo.NewShape(k, k.Box(dims[0], dims[1], dims[2]))), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 20 :radius 5) -> faceted closed shell
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		hv, hok := pa.kw["height"]
		rv, rok := pa.kw["radius"]
		if !hok || !rok {
			return zygo.SexpNull, fmt.Errorf("cylinder requires :height and :radius")
		}
		h, err := toPositive(hv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		r, err := toPositive(rv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}
		s, err := b.Cylinder(h, r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return shapeResult(topo.NewShape(k, s)), nil
	})

	// -----------------------------------------------------------------------
	// (sphere 5) -> faceted closed shell
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius")
		}
		r, err := toPositive(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		s, err := b.Sphere(r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		return shapeResult(topo.NewShape(k, s)), nil
	})

	// -----------------------------------------------------------------------
	// (disk 5 :segments 32) -> flat face in the XY plane
	// -----------------------------------------------------------------------
	env.AddFunction("disk", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("disk requires a radius")
		}
		r, err := toPositive(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("disk: radius: %w", err)
		}
		segments := 32
		if v, ok := pa.kw["segments"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("disk: segments: %w", err)
			}
			segments = int(f)
		}
		f, err := k.Disk(r, segments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("disk: %w", err)
		}
		return shapeResult(topo.NewShape(k, f)), nil
	})

	// -----------------------------------------------------------------------
	// (polygon (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)) -> planar face
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		points := make([]v3.Vec, 0, len(args))
		for i, a := range args {
			p, err := toVec3(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: point %d: %w", i, err)
			}
			points = append(points, p)
		}
		f, err := k.Polygon(points...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		return shapeResult(topo.NewShape(k, f)), nil
	})

	// -----------------------------------------------------------------------
	// (shell face face ...)
	// -----------------------------------------------------------------------
	env.AddFunction("shell", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		faces, err := toTyped(args, topo.AsFace)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shell: %w", err)
		}
		raw := make([]kernel.Shape, len(faces))
		for i, f := range faces {
			raw[i] = f.Raw()
		}
		s, err := k.MakeShell(raw...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shell: %w", err)
		}
		return shapeResult(topo.NewShape(k, s)), nil
	})

	// -----------------------------------------------------------------------
	// (solid outer-shell void-shell ...)
	// -----------------------------------------------------------------------
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		shells, err := toTyped(args, topo.AsShell)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: %w", err)
		}
		raw := make([]kernel.Shape, len(shells))
		for i, s := range shells {
			raw[i] = s.Raw()
		}
		s, err := k.MakeSolid(raw...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: %w", err)
		}
		return shapeResult(topo.NewShape(k, s)), nil
	})

	// -----------------------------------------------------------------------
	// (compound shape shape ...) -> children by reference
	// -----------------------------------------------------------------------
	env.AddFunction("compound", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		shapes := make([]topo.Shape, 0, len(args))
		for i, a := range args {
			s, err := toShape(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compound: child %d: %w", i, err)
			}
			shapes = append(shapes, s)
		}
		return shapeResult(topo.FromShapes(k, shapes...)), nil
	})

	// -----------------------------------------------------------------------
	// (volume :faces (list ...) :shells (list ...) :solids (list ...))
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("volume takes only :faces, :shells and :solids")
		}

		var (
			faces  []topo.Face
			shells []topo.Shell
			solids []topo.Solid
			err    error
		)
		if v, ok := pa.kw["faces"]; ok {
			if faces, err = listOf(v, topo.AsFace); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: faces: %w", err)
			}
		}
		if v, ok := pa.kw["shells"]; ok {
			if shells, err = listOf(v, topo.AsShell); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: shells: %w", err)
			}
		}
		if v, ok := pa.kw["solids"]; ok {
			if solids, err = listOf(v, topo.AsSolid); err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: solids: %w", err)
			}
		}

		c, err := topo.Volume(k, faces, shells, solids)
		if err != nil {
			return zygo.SexpNull, err
		}
		return shapeResult(c), nil
	})

	// -----------------------------------------------------------------------
	// (clone compound)
	// -----------------------------------------------------------------------
	env.AddFunction("clone", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := compoundArg("clone", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		cp, err := c.Clone()
		if err != nil {
			return zygo.SexpNull, err
		}
		return shapeResult(cp), nil
	})

	// -----------------------------------------------------------------------
	// (clean compound) -> shape of whatever kind cleanup leaves
	// -----------------------------------------------------------------------
	env.AddFunction("clean", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := compoundArg("clean", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := c.Clean()
		if err != nil {
			return zygo.SexpNull, err
		}
		return shapeResult(s), nil
	})

	// -----------------------------------------------------------------------
	// (center-of-mass shape) -> vec3, surface-area weighted
	// -----------------------------------------------------------------------
	env.AddFunction("center_of_mass", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s, err := shapeArg("center-of-mass", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		p, err := topo.CenterOfMass(s)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: p}, nil
	})

	// -----------------------------------------------------------------------
	// (area shape)
	// -----------------------------------------------------------------------
	env.AddFunction("area", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s, err := shapeArg("area", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		a, err := topo.SurfaceArea(s)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpFloat{Val: a}, nil
	})

	// -----------------------------------------------------------------------
	// (kind shape) -> "compound", "solid", ...
	// -----------------------------------------------------------------------
	env.AddFunction("kind", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s, err := shapeArg("kind", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: topo.Classify(s).String()}, nil
	})

	// -----------------------------------------------------------------------
	// (child-count shape)
	// -----------------------------------------------------------------------
	env.AddFunction("child_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s, err := shapeArg("child-count", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpInt{Val: int64(len(s.Children()))}, nil
	})

	// -----------------------------------------------------------------------
	// (translate shape (vec3 10 0 0)) -> moves the shape in place
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a shape and a vec3")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		d, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		k.Translate(s.Raw(), d.X, d.Y, d.Z)
		return args[0], nil
	})
}

// shapeArg extracts the single shape argument of op.
func shapeArg(op string, args []zygo.Sexp) (topo.Shape, error) {
	if len(args) != 1 {
		return topo.Shape{}, fmt.Errorf("%s requires exactly 1 argument, got %d", op, len(args))
	}
	s, err := toShape(args[0])
	if err != nil {
		return topo.Shape{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// compoundArg extracts the single compound argument of op.
func compoundArg(op string, args []zygo.Sexp) (topo.Compound, error) {
	s, err := shapeArg(op, args)
	if err != nil {
		return topo.Compound{}, err
	}
	c, err := topo.AsCompound(s)
	if err != nil {
		return topo.Compound{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
