package classify

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	sfgeom "github.com/peterstace/simplefeatures/geom"

	"github.com/chazu/planarize/pkg/geom"
)

// Region answers point-containment queries against one prepared loop.
type Region interface {
	Contains(p v3.Vec) bool
}

// Strategy prepares loops for containment testing. Implementations must be
// safe to call with malformed loops; they report failure with an error.
type Strategy interface {
	Prepare(region geom.Loop) (Region, error)
}

// An exact strategy tests true containment, so a loop it places inside a
// hole really is an island.
type exactStrategy interface {
	Exact() bool
}

func isExact(s Strategy) bool {
	e, ok := s.(exactStrategy)
	return ok && e.Exact()
}

// Compile-time interface checks.
var (
	_ Strategy = BoundingBoxStrategy{}
	_ Strategy = PolygonStrategy{}
)

// ---------------------------------------------------------------------------
// Bounding box
// ---------------------------------------------------------------------------

// BoundingBoxStrategy treats a loop as its axis-aligned bounding box grown
// by Tolerance. It is cheap and exact for rectangles, but it accepts points
// in the notch of a concave loop.
type BoundingBoxStrategy struct {
	Tolerance float64
}

// Prepare returns the loop's expanded bounding box.
func (s BoundingBoxStrategy) Prepare(region geom.Loop) (Region, error) {
	box := region.BoundingBox()
	if box.IsEmpty() {
		return nil, fmt.Errorf("%w: empty loop", geom.ErrDegenerate)
	}
	return boxRegion{box: box, tol: s.Tolerance}, nil
}

type boxRegion struct {
	box geom.BoundingBox
	tol float64
}

func (r boxRegion) Contains(p v3.Vec) bool { return r.box.Contains(p, r.tol) }

// ---------------------------------------------------------------------------
// Polygon
// ---------------------------------------------------------------------------

// PolygonStrategy tests true point-in-polygon containment in the loop's own
// plane. Points farther than Tolerance from the plane are outside; points
// within Tolerance of the boundary are inside.
type PolygonStrategy struct {
	Tolerance float64
}

// Exact reports true: polygon regions reject points in a concave notch.
func (PolygonStrategy) Exact() bool { return true }

// Prepare fits a plane to the loop and builds a polygon in its frame. Loops
// that do not form a valid simple polygon are rejected.
func (s PolygonStrategy) Prepare(region geom.Loop) (Region, error) {
	plane, err := region.Plane()
	if err != nil {
		return nil, err
	}
	ring := region.Points2D(plane)
	poly, err := polygon(ring)
	if err != nil {
		return nil, fmt.Errorf("classify: invalid polygon: %w", err)
	}
	return polygonRegion{plane: plane, ring: ring, poly: poly.AsGeometry(), tol: s.Tolerance}, nil
}

type polygonRegion struct {
	plane geom.Plane
	ring  []v2.Vec
	poly  sfgeom.Geometry
	tol   float64
}

func (r polygonRegion) Contains(p v3.Vec) bool {
	if math.Abs(r.plane.SignedDistance(p)) > r.tol {
		return false
	}
	q := r.plane.To2D(p)
	if ringDistance(r.ring, q) <= r.tol {
		return true
	}
	pt, err := sfgeom.XY{X: q.X, Y: q.Y}.AsPoint()
	if err != nil {
		return false
	}
	return sfgeom.Intersects(r.poly, pt.AsGeometry())
}

// polygon builds a single-ring polygon from ring, closing it.
func polygon(ring []v2.Vec) (sfgeom.Polygon, error) {
	if len(ring) < 3 {
		return sfgeom.Polygon{}, fmt.Errorf("%w: %d points", geom.ErrDegenerate, len(ring))
	}
	coords := make([]float64, 0, 2*len(ring)+2)
	for _, p := range ring {
		coords = append(coords, p.X, p.Y)
	}
	coords = append(coords, ring[0].X, ring[0].Y)
	ls, err := sfgeom.NewLineString(sfgeom.NewSequence(coords, sfgeom.DimXY))
	if err != nil {
		return sfgeom.Polygon{}, err
	}
	return sfgeom.NewPolygon([]sfgeom.LineString{ls})
}

// ringDistance is the distance from q to the nearest edge of the closed
// ring.
func ringDistance(ring []v2.Vec, q v2.Vec) float64 {
	best := math.Inf(1)
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		if d := segmentDistance(a, b, q); d < best {
			best = d
		}
	}
	return best
}

func segmentDistance(a, b, q v2.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, q.Sub(a).Dot(ab)/l2))
	}
	return q.Sub(a.Add(ab.MulScalar(t))).Length()
}
