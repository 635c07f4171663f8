package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CurveKind enumerates the concrete curve types.
type CurveKind int

const (
	CurveLine     CurveKind = iota // straight segment
	CurveArc                       // planar circular arc
	CurvePolyline                  // general curve approximated by points
)

func (k CurveKind) String() string {
	switch k {
	case CurveLine:
		return "line"
	case CurveArc:
		return "arc"
	case CurvePolyline:
		return "polyline"
	default:
		return fmt.Sprintf("CurveKind(%d)", int(k))
	}
}

// Curve is a finite, directed, immutable curve.
type Curve interface {
	Start() v3.Vec
	End() v3.Vec
	Length() float64
	// Tessellate returns points from Start to End inclusive.
	Tessellate() []v3.Vec
	Reverse() Curve
	Kind() CurveKind
	curve() // marker method restricting implementations to this package
}

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

// Line is a straight segment from A to B.
type Line struct {
	A, B v3.Vec
}

// NewLine returns the segment a→b.
func NewLine(a, b v3.Vec) Line {
	return Line{A: a, B: b}
}

func (l Line) Start() v3.Vec        { return l.A }
func (l Line) End() v3.Vec          { return l.B }
func (l Line) Length() float64      { return Distance(l.A, l.B) }
func (l Line) Tessellate() []v3.Vec { return []v3.Vec{l.A, l.B} }
func (l Line) Reverse() Curve       { return Line{A: l.B, B: l.A} }
func (l Line) Kind() CurveKind      { return CurveLine }
func (Line) curve()                 {}

// Direction returns the unit direction of the segment.
func (l Line) Direction() v3.Vec {
	d, _ := Unit(l.B.Sub(l.A))
	return d
}

// ---------------------------------------------------------------------------
// Arc
// ---------------------------------------------------------------------------

// arcStep is the maximum angle subtended by one tessellation segment.
const arcStep = math.Pi / 16

// Arc is a planar circular arc. XAxis and YAxis are orthonormal and span
// the arc's plane; angles are measured from XAxis towards YAxis. A negative
// Sweep runs clockwise.
type Arc struct {
	Center     v3.Vec
	XAxis      v3.Vec
	YAxis      v3.Vec
	Radius     float64
	StartAngle float64
	Sweep      float64
}

// ArcFrom builds an arc around center that starts at start and sweeps the
// given angle (radians) around normal.
func ArcFrom(center, start, normal v3.Vec, sweep float64) (Arc, error) {
	x, ok := Unit(start.Sub(center))
	if !ok {
		return Arc{}, fmt.Errorf("%w: arc start coincides with centre", ErrDegenerate)
	}
	n, ok := Unit(normal)
	if !ok {
		return Arc{}, fmt.Errorf("%w: arc normal is zero", ErrDegenerate)
	}
	y := n.Cross(x)
	return Arc{
		Center: center,
		XAxis:  x,
		YAxis:  y,
		Radius: Distance(start, center),
		Sweep:  sweep,
	}, nil
}

func (a Arc) pointAt(theta float64) v3.Vec {
	return a.Center.
		Add(a.XAxis.MulScalar(a.Radius * math.Cos(theta))).
		Add(a.YAxis.MulScalar(a.Radius * math.Sin(theta)))
}

func (a Arc) Start() v3.Vec   { return a.pointAt(a.StartAngle) }
func (a Arc) End() v3.Vec     { return a.pointAt(a.StartAngle + a.Sweep) }
func (a Arc) Length() float64 { return math.Abs(a.Sweep) * a.Radius }
func (a Arc) Kind() CurveKind { return CurveArc }
func (Arc) curve()            {}

// Tessellate returns points along the arc, at least one segment per
// arcStep of sweep.
func (a Arc) Tessellate() []v3.Vec {
	n := int(math.Ceil(math.Abs(a.Sweep) / arcStep))
	if n < 2 {
		n = 2
	}
	pts := make([]v3.Vec, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = a.pointAt(a.StartAngle + a.Sweep*float64(i)/float64(n))
	}
	return pts
}

// Reverse returns the same arc traversed from End to Start.
func (a Arc) Reverse() Curve {
	r := a
	r.StartAngle = a.StartAngle + a.Sweep
	r.Sweep = -a.Sweep
	return r
}

// Normal returns the arc's plane normal.
func (a Arc) Normal() v3.Vec {
	return a.XAxis.Cross(a.YAxis)
}

// ---------------------------------------------------------------------------
// Polyline
// ---------------------------------------------------------------------------

// Polyline approximates a general parametric curve by its points.
type Polyline struct {
	points []v3.Vec
}

// NewPolyline copies pts into a polyline. At least two points are required.
func NewPolyline(pts ...v3.Vec) (Polyline, error) {
	if len(pts) < 2 {
		return Polyline{}, fmt.Errorf("%w: polyline needs at least 2 points, got %d", ErrDegenerate, len(pts))
	}
	cp := make([]v3.Vec, len(pts))
	copy(cp, pts)
	return Polyline{points: cp}, nil
}

func (p Polyline) Start() v3.Vec   { return p.points[0] }
func (p Polyline) End() v3.Vec     { return p.points[len(p.points)-1] }
func (p Polyline) Kind() CurveKind { return CurvePolyline }
func (Polyline) curve()            {}

func (p Polyline) Length() float64 {
	var sum float64
	for i := 1; i < len(p.points); i++ {
		sum += Distance(p.points[i-1], p.points[i])
	}
	return sum
}

func (p Polyline) Tessellate() []v3.Vec {
	cp := make([]v3.Vec, len(p.points))
	copy(cp, p.points)
	return cp
}

func (p Polyline) Reverse() Curve {
	n := len(p.points)
	rev := make([]v3.Vec, n)
	for i, pt := range p.points {
		rev[n-1-i] = pt
	}
	return Polyline{points: rev}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// MapCurve applies f to every point of c. Lines stay lines; other curves
// become polylines through their mapped tessellation.
func MapCurve(c Curve, f func(v3.Vec) v3.Vec) Curve {
	if l, ok := c.(Line); ok {
		return Line{A: f(l.A), B: f(l.B)}
	}
	pts := c.Tessellate()
	for i := range pts {
		pts[i] = f(pts[i])
	}
	return Polyline{points: pts}
}

// SameSegment reports whether a and b share both endpoints (in either
// direction) and have equal length within tol.
func SameSegment(a, b Curve, tol float64) bool {
	if math.Abs(a.Length()-b.Length()) > tol {
		return false
	}
	if Near(a.Start(), b.Start(), tol) && Near(a.End(), b.End(), tol) {
		return true
	}
	return Near(a.Start(), b.End(), tol) && Near(a.End(), b.Start(), tol)
}
