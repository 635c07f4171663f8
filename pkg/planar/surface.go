// Package planar holds the per-element planar model: surfaces made of an
// outer loop and holes, and the engine that assigns opening footprints to
// them.
package planar

import (
	"math"

	"github.com/chazu/planarize/pkg/classify"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/opening"
)

// PlanarSurface is a region of a plane bounded by Outer, minus Holes.
// Holes from structural voids come first; Assign appends one hole per
// opening it attaches.
type PlanarSurface struct {
	Plane    geom.Plane
	Outer    geom.Loop
	Holes    []geom.Loop
	Openings []*opening.Footprint
}

// New returns a surface with the given boundaries.
func New(plane geom.Plane, outer geom.Loop, holes ...geom.Loop) *PlanarSurface {
	return &PlanarSurface{Plane: plane, Outer: outer, Holes: holes}
}

// FromGroups returns one surface per classifier group, in group order.
func FromGroups(plane geom.Plane, groups []classify.Group) []*PlanarSurface {
	out := make([]*PlanarSurface, len(groups))
	for i, g := range groups {
		out[i] = New(plane, g.Outer, append([]geom.Loop(nil), g.Inners...)...)
	}
	return out
}

// AddOpening attaches fp and records its loop as a hole.
func (s *PlanarSurface) AddOpening(fp *opening.Footprint) {
	s.Openings = append(s.Openings, fp)
	s.Holes = append(s.Holes, fp.Loop)
}

// Area returns the outer area minus the hole areas, measured in Plane.
func (s *PlanarSurface) Area() float64 {
	a := math.Abs(s.Outer.SignedArea(s.Plane))
	for _, h := range s.Holes {
		a -= math.Abs(h.SignedArea(s.Plane))
	}
	return a
}

// BoundingBox encloses the outer loop.
func (s *PlanarSurface) BoundingBox() geom.BoundingBox {
	return s.Outer.BoundingBox()
}
