// Package brep implements the kernel.Kernel interface for polyhedral solids
// bounded by planar faces. Curved input is tessellated; the faces it
// produces report IsPlanar() == false.
package brep

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel = (*Kernel)(nil)
	_ kernel.Solid  = (*Solid)(nil)
	_ kernel.Face   = (*Face)(nil)
)

// ErrBadProfile is returned by Extrude for profiles that cannot be swept.
var ErrBadProfile = errors.New("brep: bad profile")

// Face is a planar face bounded by one or more point rings. Rings are
// stored without a closing repeat of their first point.
type Face struct {
	plane  geom.Plane
	rings  [][]v3.Vec
	curved bool
}

// NewFace returns a face on plane bounded by rings.
func NewFace(plane geom.Plane, rings ...[]v3.Vec) *Face {
	return &Face{plane: plane, rings: rings}
}

func (f *Face) Plane() geom.Plane { return f.plane }
func (f *Face) Normal() v3.Vec    { return f.plane.Normal }
func (f *Face) IsPlanar() bool    { return !f.curved }

// Loops returns one closed polygon loop per ring.
func (f *Face) Loops() []geom.Loop {
	out := make([]geom.Loop, 0, len(f.rings))
	for _, r := range f.rings {
		out = append(out, geom.PolygonLoop(r...))
	}
	return out
}

// Project drops p onto the face plane.
func (f *Face) Project(p v3.Vec) v3.Vec { return f.plane.Project(p) }

func (f *Face) points() []v3.Vec {
	var pts []v3.Vec
	for _, r := range f.rings {
		pts = append(pts, r...)
	}
	return pts
}

// Solid is a set of faces. Solids built by Union may consist of several
// disjoint shells.
type Solid struct {
	faces []*Face
	tol   float64
}

// BoundingBox encloses every face vertex.
func (s *Solid) BoundingBox() geom.BoundingBox {
	var b geom.BoundingBox
	for _, f := range s.faces {
		b = b.Union(geom.BoxOf(f.points()...))
	}
	return b
}

// Faces returns the solid's faces.
func (s *Solid) Faces() []kernel.Face {
	out := make([]kernel.Face, len(s.faces))
	for i, f := range s.faces {
		out[i] = f
	}
	return out
}

// Edges returns every ring segment once. Segments shared by two faces are
// reported from the first face that has them.
func (s *Solid) Edges() []geom.Curve {
	var out []geom.Curve
	for _, f := range s.faces {
		for _, l := range f.Loops() {
			for _, c := range l.Curves {
				if !hasSegment(out, c, s.tol) {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// IsEmpty reports whether the solid has no faces.
func (s *Solid) IsEmpty() bool { return len(s.faces) == 0 }

func hasSegment(list []geom.Curve, c geom.Curve, tol float64) bool {
	for _, e := range list {
		if geom.SameSegment(e, c, tol) {
			return true
		}
	}
	return false
}

// Kernel builds and cuts polyhedral solids. Tolerance is the distance below
// which a vertex counts as lying on a cutting plane.
type Kernel struct {
	Tolerance float64
}

// New returns a kernel using tol.
func New(tol float64) *Kernel {
	return &Kernel{Tolerance: tol}
}

func (k *Kernel) tol() float64 {
	if k.Tolerance <= 0 {
		return geom.DefaultTolerance
	}
	return k.Tolerance
}

func asSolid(s kernel.Solid) (*Solid, error) {
	b, ok := s.(*Solid)
	if !ok {
		return nil, fmt.Errorf("brep: foreign solid %T", s)
	}
	return b, nil
}

// Box returns the axis-aligned box spanning min and max.
func (k *Kernel) Box(min, max v3.Vec) kernel.Solid {
	base := geom.PolygonLoop(
		v3.Vec{X: min.X, Y: min.Y, Z: min.Z},
		v3.Vec{X: max.X, Y: min.Y, Z: min.Z},
		v3.Vec{X: max.X, Y: max.Y, Z: min.Z},
		v3.Vec{X: min.X, Y: max.Y, Z: min.Z},
	)
	s, err := k.Extrude([]geom.Loop{base}, v3.Vec{X: 0, Y: 0, Z: max.Z - min.Z})
	if err != nil {
		return &Solid{tol: k.tol()}
	}
	return s
}

// pointTol merges tessellation points that are numerically equal.
const pointTol = 1e-9

// ring is a closed point sequence; curved[i] marks the edge from point i to
// point i+1 as part of a tessellated curve.
type ring struct {
	pts    []v3.Vec
	curved []bool
}

func ringOf(l geom.Loop) ring {
	var r ring
	for _, c := range l.Curves {
		pts := c.Tessellate()
		isCurve := c.Kind() != geom.CurveLine
		for i := 0; i+1 < len(pts); i++ {
			if n := len(r.pts); n > 0 && geom.Near(r.pts[n-1], pts[i], pointTol) {
				r.curved[n-1] = isCurve
				continue
			}
			r.pts = append(r.pts, pts[i])
			r.curved = append(r.curved, isCurve)
		}
	}
	for n := len(r.pts); n > 1 && geom.Near(r.pts[0], r.pts[n-1], pointTol); n-- {
		r.pts = r.pts[:n-1]
		r.curved = r.curved[:n-1]
	}
	return r
}

func (r ring) reversed() ring {
	n := len(r.pts)
	out := ring{pts: make([]v3.Vec, n), curved: make([]bool, n)}
	for i := range r.pts {
		out.pts[i] = r.pts[n-1-i]
		// Edge i of the reversed ring runs from old point n-1-i to n-2-i,
		// which is old edge n-2-i.
		out.curved[i] = r.curved[(2*n-2-i)%n]
	}
	return out
}

func newell(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range pts {
		c, nx := pts[i], pts[(i+1)%len(pts)]
		n.X += (c.Y - nx.Y) * (c.Z + nx.Z)
		n.Y += (c.Z - nx.Z) * (c.X + nx.X)
		n.Z += (c.X - nx.X) * (c.Y + nx.Y)
	}
	return n
}

func translate(pts []v3.Vec, d v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[i] = p.Add(d)
	}
	return out
}

// Extrude sweeps profile along direction. profile[0] is the outer boundary,
// the remaining loops are holes. Loops need not be closed explicitly but
// must lie in one plane that direction is not parallel to.
func (k *Kernel) Extrude(profile []geom.Loop, direction v3.Vec) (kernel.Solid, error) {
	if len(profile) == 0 {
		return nil, fmt.Errorf("%w: no loops", ErrBadProfile)
	}
	d, ok := geom.Unit(direction)
	if !ok {
		return nil, fmt.Errorf("%w: zero direction", ErrBadProfile)
	}
	plane, err := profile[0].Plane()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadProfile, err)
	}
	n := plane.Normal
	if n.Dot(d) < 0 {
		n = n.Neg()
	}
	if math.Abs(n.Dot(d)) < 1e-9 {
		return nil, fmt.Errorf("%w: direction lies in the profile plane", ErrBadProfile)
	}

	rings := make([]ring, 0, len(profile))
	for i, l := range profile {
		r := ringOf(l)
		if len(r.pts) < 3 {
			return nil, fmt.Errorf("%w: loop %d has %d points", ErrBadProfile, i, len(r.pts))
		}
		// Outer counter-clockwise about n, holes clockwise.
		aligned := newell(r.pts).Dot(n) > 0
		if aligned != (i == 0) {
			r = r.reversed()
		}
		rings = append(rings, r)
	}

	bottom := &Face{plane: geom.Plane{Origin: rings[0].pts[0], Normal: n.Neg()}}
	top := &Face{plane: geom.Plane{Origin: rings[0].pts[0].Add(direction), Normal: n}}
	s := &Solid{tol: k.tol()}
	var sides []*Face
	for _, r := range rings {
		bottom.rings = append(bottom.rings, r.reversed().pts)
		top.rings = append(top.rings, translate(r.pts, direction))
		for i := range r.pts {
			a, b := r.pts[i], r.pts[(i+1)%len(r.pts)]
			sn, ok := geom.Unit(b.Sub(a).Cross(direction))
			if !ok {
				continue
			}
			sides = append(sides, &Face{
				plane:  geom.Plane{Origin: a, Normal: sn},
				rings:  [][]v3.Vec{{a, b, b.Add(direction), a.Add(direction)}},
				curved: r.curved[i],
			})
		}
	}
	s.faces = append([]*Face{bottom, top}, sides...)
	return s, nil
}

// Union concatenates the faces of a and b. Overlapping solids are not
// merged.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	out := &Solid{tol: k.tol()}
	for _, s := range []kernel.Solid{a, b} {
		if bs, err := asSolid(s); err == nil {
			out.faces = append(out.faces, bs.faces...)
		}
	}
	return out
}
