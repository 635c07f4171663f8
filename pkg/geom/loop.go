package geom

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Loop is an ordered sequence of curves. A closed loop has each curve's end
// on the next curve's start and the last end back on the first start.
// Self-intersection is not checked.
type Loop struct {
	Curves []Curve
}

// NewLoop returns a loop over curves, in order.
func NewLoop(curves ...Curve) Loop {
	cp := make([]Curve, len(curves))
	copy(cp, curves)
	return Loop{Curves: cp}
}

// PolygonLoop connects pts with lines and closes the ring. A trailing point
// equal to the first is ignored.
func PolygonLoop(pts ...v3.Vec) Loop {
	pts = dedupe(pts, pointEpsilon)
	if len(pts) < 2 {
		return Loop{}
	}
	curves := make([]Curve, 0, len(pts))
	for i := range pts {
		curves = append(curves, Line{A: pts[i], B: pts[(i+1)%len(pts)]})
	}
	return Loop{Curves: curves}
}

// Len returns the number of curves.
func (l Loop) Len() int { return len(l.Curves) }

// IsEmpty reports whether the loop has no curves.
func (l Loop) IsEmpty() bool { return len(l.Curves) == 0 }

// Start returns the first curve's start point.
func (l Loop) Start() v3.Vec {
	if l.IsEmpty() {
		return v3.Vec{}
	}
	return l.Curves[0].Start()
}

// End returns the last curve's end point.
func (l Loop) End() v3.Vec {
	if l.IsEmpty() {
		return v3.Vec{}
	}
	return l.Curves[len(l.Curves)-1].End()
}

// Gap is the distance from the loop's end back to its start.
func (l Loop) Gap() float64 {
	return Distance(l.End(), l.Start())
}

// IsClosed reports whether consecutive curves connect and the loop returns
// to its start, all within tol.
func (l Loop) IsClosed(tol float64) bool {
	if l.IsEmpty() || l.Length() <= 2*tol {
		return false
	}
	for i := 1; i < len(l.Curves); i++ {
		if !Near(l.Curves[i-1].End(), l.Curves[i].Start(), tol) {
			return false
		}
	}
	return l.Gap() <= tol
}

// Length is the sum of curve lengths.
func (l Loop) Length() float64 {
	var sum float64
	for _, c := range l.Curves {
		sum += c.Length()
	}
	return sum
}

// ControlPoints returns the tessellated points of the loop without
// consecutive duplicates and without a closing repeat of the first point.
func (l Loop) ControlPoints() []v3.Vec {
	var pts []v3.Vec
	for _, c := range l.Curves {
		pts = append(pts, c.Tessellate()...)
	}
	return dedupe(pts, pointEpsilon)
}

// BoundingBox encloses every control point.
func (l Loop) BoundingBox() BoundingBox {
	return BoxOf(l.ControlPoints()...)
}

// Plane fits a plane to the control points; see PlaneFromPoints.
func (l Loop) Plane() (Plane, error) {
	return PlaneFromPoints(l.ControlPoints())
}

// Reverse returns the loop traversed backwards.
func (l Loop) Reverse() Loop {
	n := len(l.Curves)
	rev := make([]Curve, n)
	for i, c := range l.Curves {
		rev[n-1-i] = c.Reverse()
	}
	return Loop{Curves: rev}
}

// ForceClose appends a synthetic segment from the loop's end to its start.
// It only does so when the gap exceeds tol and the loop has at least three
// control points; the boolean reports whether a segment was added.
func (l Loop) ForceClose(tol float64) (Loop, bool) {
	if l.IsEmpty() || l.Gap() <= tol || len(l.ControlPoints()) < 3 {
		return l, false
	}
	closed := NewLoop(l.Curves...)
	closed.Curves = append(closed.Curves, Line{A: l.End(), B: l.Start()})
	return closed, true
}

// Map applies f to every curve point; see MapCurve.
func (l Loop) Map(f func(v3.Vec) v3.Vec) Loop {
	out := make([]Curve, len(l.Curves))
	for i, c := range l.Curves {
		out[i] = MapCurve(c, f)
	}
	return Loop{Curves: out}
}

// ProjectOnto drops the loop onto p along p's normal.
func (l Loop) ProjectOnto(p Plane) Loop {
	return l.Map(p.Project)
}

// Translate moves the loop by d.
func (l Loop) Translate(d v3.Vec) Loop {
	return l.Map(func(q v3.Vec) v3.Vec { return q.Add(d) })
}

// Points2D returns the control points in p's frame.
func (l Loop) Points2D(p Plane) []v2.Vec {
	pts := l.ControlPoints()
	out := make([]v2.Vec, len(pts))
	for i, q := range pts {
		out[i] = p.To2D(q)
	}
	return out
}

// SignedArea returns the loop's area in p's frame; positive when the loop
// winds counter-clockwise around p's normal.
func (l Loop) SignedArea(p Plane) float64 {
	return SignedArea(l.Points2D(p))
}
