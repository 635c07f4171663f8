package profile

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/planarize/pkg/document"
	"github.com/chazu/planarize/pkg/geom"
)

const tol = geom.DefaultTolerance

func square(x0, y0, x1, y1 float64) geom.Loop {
	return geom.PolygonLoop(
		v3.Vec{X: x0, Y: y0}, v3.Vec{X: x1, Y: y0},
		v3.Vec{X: x1, Y: y1}, v3.Vec{X: x0, Y: y1},
	)
}

func wallDoc(t *testing.T, data document.WallData) (*document.Document, *document.Element) {
	t.Helper()
	if data.Location == nil {
		data.Location = geom.NewLine(v3.Vec{}, v3.Vec{X: 10})
	}
	if data.Height == 0 {
		data.Height, data.Thickness = 3, 0.2
	}
	d := document.New()
	wall := document.NewWall("south", data)
	require.NoError(t, d.Add(wall))
	require.NoError(t, d.Add(document.NewInsert(document.CategoryWindow, "w1", wall,
		document.OpeningData{U: 5, V: 1.5, Width: 1, Height: 2})))
	return d, wall
}

func assertRectangle(t *testing.T, l geom.Loop, want ...v3.Vec) {
	t.Helper()
	require.True(t, l.IsClosed(tol), "loop not closed")
	pts := l.ControlPoints()
	require.Len(t, pts, len(want))
	for _, w := range want {
		found := false
		for _, p := range pts {
			if geom.Near(p, w, tol) {
				found = true
			}
		}
		assert.True(t, found, "missing corner %v in %v", w, pts)
	}
}

var wallCorners = []v3.Vec{{X: 0}, {X: 10}, {X: 10, Z: 3}, {Z: 3}}

func TestExtractStrategies(t *testing.T) {
	tests := []struct {
		name   string
		sketch document.SketchMode
		want   Source
	}{
		{"authored sketch", document.SketchAuthored, SourceSketch},
		{"hidden sketch", document.SketchHidden, SourceDerived},
		{"no sketch", document.SketchNone, SourceSolid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, wall := wallDoc(t, document.WallData{Sketch: tt.sketch})
			before := d.Fingerprint()

			p, err := Extractor{}.Extract(d, wall.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Source)
			require.Len(t, p.Loops, 1)
			assertRectangle(t, p.Loops[0], wallCorners...)
			assert.InDelta(t, 0.2, p.Thickness, 1e-12)
			assert.Equal(t, v3.Vec{Y: -1}, p.Plane.Normal)

			assert.Equal(t, before, d.Fingerprint(), "document changed")
			assert.False(t, d.InTransaction())
		})
	}
}

func TestExtractOpenAuthoredSketchFallsBack(t *testing.T) {
	open := geom.NewLoop(
		geom.NewLine(v3.Vec{}, v3.Vec{X: 10}),
		geom.NewLine(v3.Vec{X: 10}, v3.Vec{X: 10, Z: 3}),
		geom.NewLine(v3.Vec{X: 10, Z: 3}, v3.Vec{Z: 3}),
	)
	d, wall := wallDoc(t, document.WallData{Sketch: document.SketchAuthored, Profile: []geom.Loop{open}})
	p, err := Extractor{}.Extract(d, wall.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceSolid, p.Source)
}

func TestExtractDerivedOpenSketch(t *testing.T) {
	open := geom.NewLoop(
		geom.NewLine(v3.Vec{}, v3.Vec{X: 10}),
		geom.NewLine(v3.Vec{X: 10}, v3.Vec{X: 10, Z: 3}),
	)
	d, wall := wallDoc(t, document.WallData{Sketch: document.SketchHidden, Profile: []geom.Loop{open}})
	before := d.Fingerprint()
	_, err := Extractor{}.Extract(d, wall.ID)
	assert.ErrorIs(t, err, ErrOutlineNotClosed)
	assert.Equal(t, before, d.Fingerprint())
}

func TestExtractPanicRollsBackBothTransactions(t *testing.T) {
	// A sketch with a missing curve blows up while it is being read, after
	// both transactions have deleted something.
	broken := geom.Loop{Curves: []geom.Curve{nil}}
	d, wall := wallDoc(t, document.WallData{Sketch: document.SketchHidden, Profile: []geom.Loop{broken}})
	before := d.Fingerprint()
	ids := d.ElementIDs()

	p, err := Extractor{}.Extract(d, wall.ID)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "derived profile")

	assert.Equal(t, before, d.Fingerprint())
	assert.Equal(t, ids, d.ElementIDs())
	assert.False(t, d.InTransaction())
}

func TestExtractSlabFromSolid(t *testing.T) {
	d := document.New()
	floor := document.NewSlab(document.CategoryFloor, "f1", document.SlabData{
		Boundary:  []geom.Loop{square(0, 0, 8, 6), square(2, 2, 4, 4)},
		Elevation: 3,
		Thickness: 0.25,
	})
	require.NoError(t, d.Add(floor))

	p, err := Extractor{}.Extract(d, floor.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceSolid, p.Source)
	require.Len(t, p.Loops, 2)

	var areas []float64
	for _, l := range p.Loops {
		for _, q := range l.ControlPoints() {
			assert.InDelta(t, 3.0, q.Z, 1e-12)
		}
		areas = append(areas, math.Round(math.Abs(l.SignedArea(p.Plane))))
	}
	assert.ElementsMatch(t, []float64{48, 4}, areas)
}

func TestExtractSlabSketch(t *testing.T) {
	d := document.New()
	roof := document.NewSlab(document.CategoryRoof, "r", document.SlabData{
		Boundary:  []geom.Loop{square(0, 0, 5, 5)},
		Elevation: 6,
		Thickness: 0.3,
		Sketch:    document.SketchAuthored,
	})
	require.NoError(t, d.Add(roof))
	p, err := Extractor{}.Extract(d, roof.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceSketch, p.Source)
	assertRectangle(t, p.Loops[0], v3.Vec{Z: 6}, v3.Vec{X: 5, Z: 6}, v3.Vec{X: 5, Y: 5, Z: 6}, v3.Vec{Y: 5, Z: 6})
}

func TestExtractUnsupported(t *testing.T) {
	arc, err := document.ArcLocation(v3.Vec{X: 5}, v3.Vec{X: -5}, math.Pi)
	require.NoError(t, err)

	d := document.New()
	line := geom.NewLine(v3.Vec{}, v3.Vec{X: 4})
	curved := document.NewWall("curved", document.WallData{Location: arc, Height: 3, Thickness: 0.2})
	owner := document.NewWall("stack", document.WallData{Location: line, Height: 3, Thickness: 0.3})
	member := document.NewWall("member", document.WallData{Location: line, Height: 3, Thickness: 0.2, StackedOwner: "stack"})
	roof := document.NewSlab(document.CategoryRoof, "dome", document.SlabData{
		Boundary: []geom.Loop{square(0, 0, 1, 1)}, Thickness: 0.2, Curved: true,
	})
	win := document.NewInsert(document.CategoryWindow, "w", owner, document.OpeningData{U: 1, V: 1, Width: 1, Height: 1})
	for _, e := range []*document.Element{curved, owner, member, roof, win} {
		require.NoError(t, d.Add(e))
	}

	for _, e := range []*document.Element{curved, owner, member, roof, win} {
		t.Run(e.Name, func(t *testing.T) {
			_, err := Extractor{}.Extract(d, e.ID)
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}

	_, err = Extractor{}.Extract(d, document.NewElementID("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "sketch", SourceSketch.String())
	assert.Equal(t, "derived", SourceDerived.String())
	assert.Equal(t, "solid", SourceSolid.String())
	assert.Equal(t, "Source(9)", Source(9).String())
}
