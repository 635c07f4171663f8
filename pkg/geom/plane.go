package geom

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is an origin point and a unit normal.
type Plane struct {
	Origin v3.Vec
	Normal v3.Vec
}

// NewPlane normalizes normal and returns the plane through origin.
func NewPlane(origin, normal v3.Vec) (Plane, error) {
	n, ok := Unit(normal)
	if !ok {
		return Plane{}, fmt.Errorf("%w: zero plane normal", ErrDegenerate)
	}
	return Plane{Origin: origin, Normal: n}, nil
}

// HorizontalPlane returns the plane z = elevation facing up.
func HorizontalPlane(elevation float64) Plane {
	return Plane{Origin: v3.Vec{X: 0, Y: 0, Z: elevation}, Normal: Up}
}

// PlaneFromPoints fits a plane to an ordered ring of points. The normal comes
// from Newell's method, so it follows the ring's winding; the origin is the
// first point, which keeps the plane anchored on the input geometry instead
// of averaging it away.
func PlaneFromPoints(pts []v3.Vec) (Plane, error) {
	if len(pts) < 3 {
		return Plane{}, fmt.Errorf("%w: need at least 3 points, got %d", ErrDegenerate, len(pts))
	}
	var n v3.Vec
	for i := range pts {
		cur := pts[i]
		next := pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	unit, ok := Unit(n)
	if !ok {
		return Plane{}, fmt.Errorf("%w: points are collinear", ErrDegenerate)
	}
	return Plane{Origin: pts[0], Normal: unit}, nil
}

// SignedDistance is positive on the side the normal points to.
func (p Plane) SignedDistance(q v3.Vec) float64 {
	return q.Sub(p.Origin).Dot(p.Normal)
}

// Project drops q onto the plane along the normal.
func (p Plane) Project(q v3.Vec) v3.Vec {
	return q.Sub(p.Normal.MulScalar(p.SignedDistance(q)))
}

// Basis returns in-plane axes u, v with u × v = normal. For vertical planes
// u is horizontal and v points up; for horizontal planes u follows world X.
func (p Plane) Basis() (u, v v3.Vec) {
	n := p.Normal
	if math.Abs(n.Z) < 0.9 {
		u, _ = Unit(Up.Cross(n))
	} else {
		x := v3.Vec{X: 1, Y: 0, Z: 0}
		u, _ = Unit(x.Sub(n.MulScalar(x.Dot(n))))
	}
	v = n.Cross(u)
	return u, v
}

// To2D expresses q in the plane's (u, v) frame. The out-of-plane component
// is discarded.
func (p Plane) To2D(q v3.Vec) v2.Vec {
	u, v := p.Basis()
	d := q.Sub(p.Origin)
	return v2.Vec{X: d.Dot(u), Y: d.Dot(v)}
}

// From2D maps plane coordinates back to world space.
func (p Plane) From2D(q v2.Vec) v3.Vec {
	u, v := p.Basis()
	return p.Origin.Add(u.MulScalar(q.X)).Add(v.MulScalar(q.Y))
}

// Offset moves the plane d along its normal.
func (p Plane) Offset(d float64) Plane {
	return Plane{Origin: p.Origin.Add(p.Normal.MulScalar(d)), Normal: p.Normal}
}

// Flip reverses the normal.
func (p Plane) Flip() Plane {
	return Plane{Origin: p.Origin, Normal: p.Normal.Neg()}
}

// IsParallel reports whether both planes have parallel normals.
func (p Plane) IsParallel(o Plane, angTol float64) bool {
	return Parallel(p.Normal, o.Normal, angTol)
}

// IsCoplanar reports whether o is parallel to p and passes through it.
func (p Plane) IsCoplanar(o Plane, tol, angTol float64) bool {
	return p.IsParallel(o, angTol) && math.Abs(p.SignedDistance(o.Origin)) <= tol
}

// SignedArea returns the shoelace area of a 2-D ring; positive when the
// ring runs counter-clockwise.
func SignedArea(pts []v2.Vec) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}
