package engine

import (
	"fmt"
	"math"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/planarize/pkg/document"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/units"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms model source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: stacked-owner -> stacked_owner
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

// sexpVec3 wraps a point in metres.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpElementRef wraps an element id so it can be passed between builtins.
type sexpElementRef struct {
	id       document.ElementID
	name     string
	category document.Category
}

func (r *sexpElementRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", r.category, r.name)
}
func (r *sexpElementRef) Type() *zygo.RegisteredType { return nil }

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
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword with no value reads as a flag.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// name returns the leading positional string argument.
func (pa kwArgs) name(fn string) (string, error) {
	if len(pa.positional) < 1 {
		return "", fmt.Errorf("%s requires a name argument", fn)
	}
	s, err := toString(pa.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", fn, err)
	}
	return s, nil
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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. A bare trailing keyword counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	if s == zygo.SexpNull {
		return true, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_mm) and plain strings ("mm").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toSketchMode converts :authored, :hidden or :none.
func toSketchMode(s zygo.Sexp) (document.SketchMode, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return document.SketchNone, err
	}
	switch name {
	case "none":
		return document.SketchNone, nil
	case "authored":
		return document.SketchAuthored, nil
	case "hidden":
		return document.SketchHidden, nil
	}
	return document.SketchNone, fmt.Errorf("invalid sketch mode %q, expected authored, hidden or none", name)
}

// toVec3 extracts a point from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
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

// toLoop reads a list of vec3 as a closed polygon.
func toLoop(s zygo.Sexp) (geom.Loop, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return geom.Loop{}, err
	}
	if len(items) < 3 {
		return geom.Loop{}, fmt.Errorf("a loop needs at least 3 points, got %d", len(items))
	}
	pts := make([]v3.Vec, len(items))
	for i, item := range items {
		if pts[i], err = toVec3(item); err != nil {
			return geom.Loop{}, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return geom.PolygonLoop(pts...), nil
}

// toLoops reads a list of point lists.
func toLoops(s zygo.Sexp) ([]geom.Loop, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	loops := make([]geom.Loop, len(items))
	for i, item := range items {
		if loops[i], err = toLoop(item); err != nil {
			return nil, fmt.Errorf("loop %d: %w", i, err)
		}
	}
	return loops, nil
}

// ---------------------------------------------------------------------------
// Builder state
// ---------------------------------------------------------------------------

// builder is the state shared by the builtins of one evaluation.
type builder struct {
	doc  *document.Document
	unit units.Unit
}

// length reads a number in the current unit and returns metres.
func (b *builder) length(s zygo.Sexp) (float64, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	return b.unit.ToMetres(f), nil
}

// lengths fills the named keyword lengths that are present.
func (b *builder) lengths(fn string, pa kwArgs, dst map[string]*float64) error {
	for key, p := range dst {
		v, ok := pa.kw[key]
		if !ok {
			continue
		}
		f, err := b.length(v)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", fn, key, err)
		}
		*p = f
	}
	return nil
}

func (b *builder) add(e *document.Element) (zygo.Sexp, error) {
	if err := b.doc.Add(e); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s %q: %w", e.Category, e.Name, err)
	}
	return &sexpElementRef{id: e.ID, name: e.Name, category: e.Category}, nil
}

// host resolves an element reference or a name to a host element.
func (b *builder) host(s zygo.Sexp) (*document.Element, error) {
	var e *document.Element
	switch v := s.(type) {
	case *sexpElementRef:
		e = b.doc.Element(v.id)
	case *zygo.SexpStr:
		e = b.doc.Lookup(v.S)
		if e == nil {
			return nil, fmt.Errorf("no element named %q", v.S)
		}
	default:
		return nil, fmt.Errorf("expected element or name, got %T (%s)", s, s.SexpString(nil))
	}
	if e == nil || !e.Category.IsHost() {
		return nil, fmt.Errorf("%s is not a wall, floor, roof or ceiling", s.SexpString(nil))
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the model DSL into a zygomys environment. The
// builtins add elements to b.doc as they are evaluated.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (units :mm)
	// -----------------------------------------------------------------------
	env.AddFunction("units", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("units requires exactly 1 argument, got %d", len(args))
		}
		s, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("units: %w", err)
		}
		u, err := units.Parse(s)
		if err != nil {
			return zygo.SexpNull, err
		}
		b.unit = u
		return &zygo.SexpStr{S: u.String()}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := b.length(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (element "name")
	// -----------------------------------------------------------------------
	env.AddFunction("element", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		elemName, err := pa.name("element")
		if err != nil {
			return zygo.SexpNull, err
		}
		e := b.doc.Lookup(elemName)
		if e == nil {
			return zygo.SexpNull, fmt.Errorf("element: no element named %q", elemName)
		}
		return &sexpElementRef{id: e.ID, name: e.Name, category: e.Category}, nil
	})

	// -----------------------------------------------------------------------
	// (wall "south" :start (vec3 0 0 0) :end (vec3 10 0 0) :height 3
	//       :thickness 0.2 :base 0 :sketch :hidden :sweep 90
	//       :stacked-owner "core" :profile (list (list (vec3 ...) ...)))
	// -----------------------------------------------------------------------
	env.AddFunction("wall", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		wallName, err := pa.name("wall")
		if err != nil {
			return zygo.SexpNull, err
		}

		var start, end v3.Vec
		for key, dst := range map[string]*v3.Vec{"start": &start, "end": &end} {
			v, ok := pa.kw[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("wall %q: missing :%s", wallName, key)
			}
			if *dst, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: %s: %w", key, err)
			}
		}

		var data document.WallData
		base := math.NaN()
		if err := b.lengths("wall", pa, map[string]*float64{
			"height":    &data.Height,
			"thickness": &data.Thickness,
			"base":      &base,
		}); err != nil {
			return zygo.SexpNull, err
		}
		if !math.IsNaN(base) {
			start.Z, end.Z = base, base
		}

		if v, ok := pa.kw["sketch"]; ok {
			if data.Sketch, err = toSketchMode(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: sketch: %w", err)
			}
		}
		if v, ok := pa.kw["profile"]; ok {
			if data.Profile, err = toLoops(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: profile: %w", err)
			}
		}
		if v, ok := pa.kw["stacked-owner"]; ok {
			if data.StackedOwner, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: stacked-owner: %w", err)
			}
		}

		var sweep float64
		if v, ok := pa.kw["curved"]; ok {
			curved, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: curved: %w", err)
			}
			if curved {
				sweep = defaultSweep
			}
		}
		if v, ok := pa.kw["sweep"]; ok {
			deg, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: sweep: %w", err)
			}
			sweep = deg
		}

		if sweep != 0 {
			arc, err := document.ArcLocation(start, end, sweep*math.Pi/180)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("wall %q: %w", wallName, err)
			}
			data.Location = arc
		} else {
			data.Location = geom.NewLine(start, end)
		}
		return b.add(document.NewWall(wallName, data))
	})

	// -----------------------------------------------------------------------
	// (floor "ground" :outline (list (vec3 0 0 0) ...) :holes (list ...)
	//        :elevation 0 :thickness 0.25 :sketch :authored :curved false)
	//
	// roof and ceiling take the same arguments.
	// -----------------------------------------------------------------------
	for _, cat := range []document.Category{document.CategoryFloor, document.CategoryRoof, document.CategoryCeiling} {
		fn := cat.String()
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			slabName, err := pa.name(fn)
			if err != nil {
				return zygo.SexpNull, err
			}
			v, ok := pa.kw["outline"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s %q: missing :outline", fn, slabName)
			}
			outer, err := toLoop(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: outline: %w", fn, err)
			}

			data := document.SlabData{Boundary: []geom.Loop{outer}}
			if v, ok := pa.kw["holes"]; ok {
				holes, err := toLoops(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: holes: %w", fn, err)
				}
				data.Boundary = append(data.Boundary, holes...)
			}
			if err := b.lengths(fn, pa, map[string]*float64{
				"elevation": &data.Elevation,
				"thickness": &data.Thickness,
			}); err != nil {
				return zygo.SexpNull, err
			}
			if v, ok := pa.kw["sketch"]; ok {
				if data.Sketch, err = toSketchMode(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: sketch: %w", fn, err)
				}
			}
			if v, ok := pa.kw["curved"]; ok {
				if data.Curved, err = toBool(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: curved: %w", fn, err)
				}
			}
			return b.add(document.NewSlab(cat, slabName, data))
		})
	}

	// -----------------------------------------------------------------------
	// (window "w1" :host "south" :u 5 :v 1.5 :width 1 :height 2)
	//
	// door and opening take the same arguments.
	// -----------------------------------------------------------------------
	for _, cat := range []document.Category{document.CategoryWindow, document.CategoryDoor, document.CategoryOpening} {
		fn := cat.String()
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			insName, err := pa.name(fn)
			if err != nil {
				return zygo.SexpNull, err
			}
			v, ok := pa.kw["host"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s %q: missing :host", fn, insName)
			}
			host, err := b.host(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: host: %w", fn, err)
			}

			var data document.OpeningData
			if err := b.lengths(fn, pa, map[string]*float64{
				"u":      &data.U,
				"v":      &data.V,
				"width":  &data.Width,
				"height": &data.Height,
			}); err != nil {
				return zygo.SexpNull, err
			}
			return b.add(document.NewInsert(cat, insName, host, data))
		})
	}
}

// defaultSweep is the arc angle in degrees of a wall marked :curved
// without an explicit :sweep.
const defaultSweep = 90
