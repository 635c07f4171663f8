package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/planarize/pkg/document"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/units"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(wall "s" :height 3)`,
			expect: `(wall "s" "__kw_height" 3)`,
		},
		{
			name:   "multiple keywords",
			input:  `(window "w" :u 5 :v 1.5)`,
			expect: `(window "w" "__kw_u" 5 "__kw_v" 1.5)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def south-wall 1)`,
			expect: `(def south_wall 1)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -5 0 0)`,
			expect: `(vec3 -5 0 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:stacked-owner`,
			expect: `"__kw_stacked-owner"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Element builtins
// ---------------------------------------------------------------------------

func mustEvaluate(t *testing.T, source string) *document.Document {
	t.Helper()
	d, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if d == nil {
		t.Fatal("expected non-nil document")
	}
	return d
}

func TestWall(t *testing.T) {
	d := mustEvaluate(t, `
(wall "south" :start (vec3 0 0 0) :end (vec3 10 0 0)
      :height 3 :thickness 0.2 :base 1 :sketch :hidden)
`)
	e := d.Lookup("south")
	if e == nil {
		t.Fatal("expected element named 'south'")
	}
	if e.Category != document.CategoryWall {
		t.Errorf("expected wall, got %s", e.Category)
	}
	if e.ID != document.NewElementID("wall/south") {
		t.Errorf("unexpected id %s", e.ID)
	}
	w, ok := e.Data.(document.WallData)
	if !ok {
		t.Fatalf("expected WallData, got %T", e.Data)
	}
	if w.Height != 3 || w.Thickness != 0.2 {
		t.Errorf("height/thickness = %g/%g, want 3/0.2", w.Height, w.Thickness)
	}
	if w.Base() != 1 {
		t.Errorf("base = %g, want 1", w.Base())
	}
	if w.Sketch != document.SketchHidden {
		t.Errorf("sketch = %s, want hidden", w.Sketch)
	}
	if w.IsCurved() {
		t.Error("straight wall reported as curved")
	}
}

func TestCurvedAndStackedWalls(t *testing.T) {
	d := mustEvaluate(t, `
(wall "core" :start (vec3 0 0 0) :end (vec3 4 0 0) :height 3 :thickness 0.3)
(wall "skin" :start (vec3 0 0 0) :end (vec3 4 0 0) :height 3 :thickness 0.1
      :stacked-owner "core")
(wall "apse" :start (vec3 5 0 0) :end (vec3 -5 0 0) :height 3 :thickness 0.2
      :sweep 180)
(wall "bay" :start (vec3 0 5 0) :end (vec3 2 5 0) :height 3 :thickness 0.2 :curved)
`)
	skin := d.Lookup("skin").Data.(document.WallData)
	if skin.StackedOwner != "core" {
		t.Errorf("stacked owner = %q, want core", skin.StackedOwner)
	}
	for _, name := range []string{"apse", "bay"} {
		w := d.Lookup(name).Data.(document.WallData)
		if !w.IsCurved() {
			t.Errorf("%s: expected a curved location", name)
		}
		if w.Location.Kind() != geom.CurveArc {
			t.Errorf("%s: location kind = %v, want arc", name, w.Location.Kind())
		}
	}
	apse := d.Lookup("apse").Data.(document.WallData)
	if math.Abs(apse.Location.Length()-5*math.Pi) > 1e-9 {
		t.Errorf("apse length = %g, want %g", apse.Location.Length(), 5*math.Pi)
	}
}

func TestSlabs(t *testing.T) {
	d := mustEvaluate(t, `
(def outline (list (vec3 0 0 0) (vec3 8 0 0) (vec3 8 6 0) (vec3 0 6 0)))
(floor "ground" :outline outline
       :holes (list (list (vec3 2 2 0) (vec3 4 2 0) (vec3 4 4 0) (vec3 2 4 0)))
       :elevation 0.25 :thickness 0.25 :sketch :authored)
(roof "top" :outline outline :elevation 6 :thickness 0.3 :curved true)
(ceiling "lid" :outline outline :elevation 2.7 :thickness 0.05)
`)
	tests := []struct {
		name      string
		cat       document.Category
		loops     int
		elevation float64
	}{
		{"ground", document.CategoryFloor, 2, 0.25},
		{"top", document.CategoryRoof, 1, 6},
		{"lid", document.CategoryCeiling, 1, 2.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := d.Lookup(tt.name)
			if e == nil {
				t.Fatalf("missing %s", tt.name)
			}
			if e.Category != tt.cat {
				t.Errorf("category = %s, want %s", e.Category, tt.cat)
			}
			var s document.SlabData
			switch data := e.Data.(type) {
			case document.FloorData:
				s = data.SlabData
			case document.RoofData:
				s = data.SlabData
			case document.CeilingData:
				s = data.SlabData
			default:
				t.Fatalf("unexpected payload %T", e.Data)
			}
			if len(s.Boundary) != tt.loops {
				t.Errorf("boundary loops = %d, want %d", len(s.Boundary), tt.loops)
			}
			if s.Elevation != tt.elevation {
				t.Errorf("elevation = %g, want %g", s.Elevation, tt.elevation)
			}
		})
	}
	if !d.Lookup("top").Data.(document.RoofData).Curved {
		t.Error("roof should be curved")
	}
	if d.Lookup("ground").Data.(document.FloorData).Sketch != document.SketchAuthored {
		t.Error("floor sketch should be authored")
	}
}

func TestInserts(t *testing.T) {
	d := mustEvaluate(t, `
(def south (wall "south" :start (vec3 0 0 0) :end (vec3 10 0 0) :height 3 :thickness 0.2))
(window "w1" :host "south" :u 5 :v 1.5 :width 1 :height 2)
(door "d1" :host south :u 2 :v 1 :width 0.9 :height 2)
(floor "f" :outline (list (vec3 0 0 0) (vec3 4 0 0) (vec3 4 4 0)) :thickness 0.2)
(opening "stair" :host (element "f") :u 1 :v 1 :width 0.5 :height 0.5)
`)
	wall := d.Lookup("south")
	if got := len(d.Inserts(wall.ID)); got != 2 {
		t.Fatalf("wall inserts = %d, want 2", got)
	}
	w1 := d.Lookup("w1")
	if w1.Category != document.CategoryWindow || w1.Host != wall.ID {
		t.Errorf("w1 = %s hosted by %s", w1.Category, w1.Host)
	}
	od := w1.Data.(document.OpeningData)
	if od != (document.OpeningData{U: 5, V: 1.5, Width: 1, Height: 2}) {
		t.Errorf("w1 data = %+v", od)
	}
	if d.Lookup("d1").Category != document.CategoryDoor {
		t.Error("d1 should be a door")
	}
	if d.Lookup("stair").Host != d.Lookup("f").ID {
		t.Error("stair should be hosted by the floor")
	}
}

func TestUnits(t *testing.T) {
	d := mustEvaluate(t, `
(units :mm)
(wall "south" :start (vec3 0 0 0) :end (vec3 10000 0 0) :height 3000 :thickness 200)
(window "w1" :host "south" :u 5000 :v 1500 :width 1000 :height 2000)
`)
	w := d.Lookup("south").Data.(document.WallData)
	if math.Abs(w.Location.Length()-10) > 1e-9 || math.Abs(w.Thickness-0.2) > 1e-12 {
		t.Errorf("wall length/thickness = %g/%g, want 10/0.2", w.Location.Length(), w.Thickness)
	}
	od := d.Lookup("w1").Data.(document.OpeningData)
	if math.Abs(od.Width-1) > 1e-12 {
		t.Errorf("window width = %g, want 1", od.Width)
	}

	eng := NewEngine()
	eng.Units = units.Foot
	d, _, err := eng.Evaluate(`(wall "w" :start (vec3 0 0 0) :end (vec3 10 0 0) :height 8 :thickness 0.5)`)
	if err != nil || d == nil {
		t.Fatalf("evaluate: %v", err)
	}
	if h := d.Lookup("w").Data.(document.WallData).Height; math.Abs(h-2.4384) > 1e-9 {
		t.Errorf("height = %g, want 2.4384", h)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"wall without name", `(wall :height 3)`, "name"},
		{"wall without end", `(wall "w" :start (vec3 0 0 0))`, "missing :end"},
		{"bad sketch mode", `(wall "w" :start (vec3 0 0 0) :end (vec3 1 0 0) :sketch :drawn)`, "sketch mode"},
		{"duplicate name", `(wall "w" :start (vec3 0 0 0) :end (vec3 1 0 0))
(wall "w" :start (vec3 0 1 0) :end (vec3 1 1 0))`, "duplicate"},
		{"unknown host", `(window "w1" :host "nowhere")`, "nowhere"},
		{"insert hosted by insert", `(wall "w" :start (vec3 0 0 0) :end (vec3 1 0 0))
(window "a" :host "w")
(window "b" :host "a")`, "not a wall"},
		{"short outline", `(floor "f" :outline (list (vec3 0 0 0) (vec3 1 0 0)))`, "at least 3"},
		{"unknown units", `(units :cubit)`, "unknown unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if d != nil {
				t.Fatal("expected nil document")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected eval errors")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}
