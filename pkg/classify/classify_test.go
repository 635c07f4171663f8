package classify

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/planarize/pkg/diag"
	"github.com/chazu/planarize/pkg/geom"
)

const tol = geom.DefaultTolerance

func square(x0, y0, size float64) geom.Loop {
	return geom.PolygonLoop(
		v3.Vec{X: x0, Y: y0},
		v3.Vec{X: x0 + size, Y: y0},
		v3.Vec{X: x0 + size, Y: y0 + size},
		v3.Vec{X: x0, Y: y0 + size},
	)
}

func lShape() geom.Loop {
	return geom.PolygonLoop(
		v3.Vec{X: 0, Y: 0}, v3.Vec{X: 10, Y: 0}, v3.Vec{X: 10, Y: 4},
		v3.Vec{X: 4, Y: 4}, v3.Vec{X: 4, Y: 10}, v3.Vec{X: 0, Y: 10},
	)
}

func TestNestedSquaresOrderIndependent(t *testing.T) {
	outer := square(0, 0, 10)
	inner := square(3, 3, 2)

	for name, loops := range map[string][]geom.Loop{
		"outer first": {outer, inner},
		"inner first": {inner, outer},
	} {
		t.Run(name, func(t *testing.T) {
			groups, diags := New(tol).Classify(loops)
			assert.Empty(t, diags)
			require.Len(t, groups, 1)
			assert.Equal(t, outer, groups[0].Outer)
			require.Len(t, groups[0].Inners, 1)
			assert.Equal(t, inner, groups[0].Inners[0])
		})
	}
}

func TestDisjointLoopsAreAllOuter(t *testing.T) {
	groups, diags := New(tol).Classify([]geom.Loop{square(0, 0, 5), square(10, 0, 5)})
	assert.Empty(t, diags)
	require.Len(t, groups, 2)
	assert.Empty(t, groups[0].Inners)
	assert.Empty(t, groups[1].Inners)
}

func TestIslandBecomesOuter(t *testing.T) {
	slab := square(0, 0, 20)
	void := square(5, 5, 10)
	island := square(8, 8, 4)

	c := Classifier{Strategy: PolygonStrategy{Tolerance: tol}, Tolerance: tol}
	groups, diags := c.Classify([]geom.Loop{island, slab, void})
	assert.Empty(t, diags)
	require.Len(t, groups, 2)
	assert.Equal(t, island, groups[0].Outer)
	assert.Empty(t, groups[0].Inners)
	assert.Equal(t, slab, groups[1].Outer)
	assert.Equal(t, []geom.Loop{void}, groups[1].Inners)
}

func TestBoundingBoxNeverNestsInHoles(t *testing.T) {
	// A concave void whose box covers a second, separate void. Box
	// containment cannot tell that second void from an island.
	slab := square(0, 0, 20)
	lVoid := geom.PolygonLoop(
		v3.Vec{X: 2, Y: 2}, v3.Vec{X: 12, Y: 2}, v3.Vec{X: 12, Y: 6},
		v3.Vec{X: 6, Y: 6}, v3.Vec{X: 6, Y: 12}, v3.Vec{X: 2, Y: 12},
	)
	small := square(8, 8, 1)

	groups, diags := New(tol).Classify([]geom.Loop{slab, lVoid, small})
	assert.Empty(t, diags)
	require.Len(t, groups, 1)
	assert.Equal(t, slab, groups[0].Outer)
	assert.Equal(t, []geom.Loop{lVoid, small}, groups[0].Inners)

	t.Run("polygon agrees", func(t *testing.T) {
		c := Classifier{Strategy: PolygonStrategy{Tolerance: tol}, Tolerance: tol}
		groups, diags := c.Classify([]geom.Loop{slab, lVoid, small})
		assert.Empty(t, diags)
		require.Len(t, groups, 1)
		assert.Equal(t, []geom.Loop{lVoid, small}, groups[0].Inners)
	})

	t.Run("box island is a hole of the slab", func(t *testing.T) {
		island := square(8, 8, 4)
		groups, _ := New(tol).Classify([]geom.Loop{island, slab, square(5, 5, 10)})
		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Inners, 2)
	})
}

func TestSmallestContainingParentWins(t *testing.T) {
	// Two voids side by side in one slab; each must be a hole of the slab,
	// not of each other.
	slab := square(0, 0, 20)
	a := square(2, 2, 5)
	b := square(10, 2, 5)
	groups, _ := New(tol).Classify([]geom.Loop{a, b, slab})
	require.Len(t, groups, 1)
	assert.Equal(t, []geom.Loop{a, b}, groups[0].Inners)
}

func TestToleranceOnSharedEdge(t *testing.T) {
	outer := square(0, 0, 10)
	touching := geom.PolygonLoop(
		v3.Vec{X: -0.0005, Y: 2}, v3.Vec{X: 3, Y: 2}, v3.Vec{X: 3, Y: 4}, v3.Vec{X: -0.0005, Y: 4},
	)
	groups, _ := New(tol).Classify([]geom.Loop{outer, touching})
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Inners, 1)
}

func TestConcaveOuterStrategies(t *testing.T) {
	notch := square(6, 6, 2)
	arm := square(1, 1, 1)
	loops := []geom.Loop{lShape(), notch, arm}

	t.Run("bounding box accepts the notch", func(t *testing.T) {
		groups, _ := New(tol).Classify(loops)
		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Inners, 2)
	})

	t.Run("polygon rejects the notch", func(t *testing.T) {
		c := Classifier{Strategy: PolygonStrategy{Tolerance: tol}, Tolerance: tol}
		groups, diags := c.Classify(loops)
		assert.Empty(t, diags)
		require.Len(t, groups, 2)
		assert.Equal(t, []geom.Loop{arm}, groups[0].Inners)
		assert.Equal(t, notch, groups[1].Outer)
	})
}

func TestVerticalLoops(t *testing.T) {
	wall := geom.PolygonLoop(
		v3.Vec{X: 0, Y: 0, Z: 0}, v3.Vec{X: 10, Y: 0, Z: 0},
		v3.Vec{X: 10, Y: 0, Z: 3}, v3.Vec{X: 0, Y: 0, Z: 3},
	)
	window := geom.PolygonLoop(
		v3.Vec{X: 4.5, Y: 0, Z: 0.5}, v3.Vec{X: 5.5, Y: 0, Z: 0.5},
		v3.Vec{X: 5.5, Y: 0, Z: 2.5}, v3.Vec{X: 4.5, Y: 0, Z: 2.5},
	)
	for _, s := range []Strategy{BoundingBoxStrategy{Tolerance: tol}, PolygonStrategy{Tolerance: tol}} {
		groups, diags := Classifier{Strategy: s, Tolerance: tol}.Classify([]geom.Loop{window, wall})
		assert.Empty(t, diags)
		require.Len(t, groups, 1)
		assert.Equal(t, []geom.Loop{window}, groups[0].Inners)
	}
}

type failingStrategy struct{ panics bool }

func (s failingStrategy) Prepare(geom.Loop) (Region, error) {
	if s.panics {
		panic("malformed loop")
	}
	return nil, errors.New("cannot prepare")
}

var _ Strategy = failingStrategy{}

func TestContainmentFailureKeepsLoopAsOuter(t *testing.T) {
	for _, panics := range []bool{false, true} {
		c := Classifier{Strategy: failingStrategy{panics: panics}, Tolerance: tol}
		groups, diags := c.Classify([]geom.Loop{square(0, 0, 10), square(2, 2, 2)})
		require.Len(t, groups, 2, "no loop may be dropped")
		require.Len(t, diags, 1)
		assert.Equal(t, diag.CodeClassificationAmbiguous, diags[0].Code)
		assert.Equal(t, diag.SeverityWarning, diags[0].Severity)
	}
}

func TestDegenerateLoops(t *testing.T) {
	line := geom.NewLoop(geom.NewLine(v3.Vec{}, v3.Vec{X: 1}))
	groups, diags := New(tol).Classify([]geom.Loop{square(0, 0, 4), line})
	require.Len(t, groups, 2)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeClassificationAmbiguous, diags[0].Code)

	groups, diags = New(tol).Classify([]geom.Loop{line})
	require.Len(t, groups, 1)
	assert.Len(t, diags, 1)

	groups, diags = New(tol).Classify(nil)
	assert.Nil(t, groups)
	assert.Nil(t, diags)
}

func TestPolygonRegionBoundary(t *testing.T) {
	r, err := PolygonStrategy{Tolerance: tol}.Prepare(lShape())
	require.NoError(t, err)
	assert.True(t, r.Contains(v3.Vec{X: 2, Y: 2}))
	assert.True(t, r.Contains(v3.Vec{X: 4.0005, Y: 7}), "within tolerance of the boundary")
	assert.False(t, r.Contains(v3.Vec{X: 7, Y: 7}))
	assert.False(t, r.Contains(v3.Vec{X: 2, Y: 2, Z: 0.5}), "off the plane")
}
