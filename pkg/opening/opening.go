// Package opening resolves the footprint a hosted insert leaves on its
// host's plane.
package opening

import (
	"errors"
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/diag"
	"github.com/chazu/planarize/pkg/document"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel"
	"github.com/chazu/planarize/pkg/stitch"
)

// ErrFootprintNotFound is returned when no path yields a loop.
var ErrFootprintNotFound = errors.New("opening: footprint not found")

// Footprint is an insert's outline on the host plane. Approximate marks
// loops that stand in for the real outline: projected bounding-box
// rectangles and force-closed chains.
type Footprint struct {
	ElementID   document.ElementID `json:"element_id"`
	Name        string             `json:"name,omitempty"`
	Loop        geom.Loop          `json:"-"`
	Approximate bool               `json:"approximate,omitempty"`
}

// Request describes one insert to resolve.
type Request struct {
	Opening   document.ElementID
	Name      string
	Category  document.Category
	Box       geom.BoundingBox // insert's bounding box
	HostPlane geom.Plane       // plane the footprint ends up in
	HostSolid kernel.Solid     // host body with insert voids cut
	Face      kernel.Face      // optional host face for the projection path
}

// Resolver turns requests into footprints.
type Resolver struct {
	Kernel           kernel.Kernel
	Tolerance        float64
	AngularTolerance float64
}

func (r Resolver) tol() float64 {
	if r.Tolerance <= 0 {
		return geom.DefaultTolerance
	}
	return r.Tolerance
}

func (r Resolver) angTol() float64 {
	if r.AngularTolerance <= 0 {
		return geom.AngularTolerance
	}
	return r.AngularTolerance
}

// Resolve returns the footprint of req.Opening. Windows and doors with a
// face use the projection path; everything else, and projections that
// collapse, use the solid-cut path.
func (r Resolver) Resolve(req Request) (*Footprint, error) {
	if req.Box.IsEmpty() {
		return nil, fmt.Errorf("%w: %s has no bounding box", ErrFootprintNotFound, req.Opening.Short())
	}
	var (
		loop   geom.Loop
		approx bool
		ok     bool
	)
	if req.Face != nil && (req.Category == document.CategoryWindow || req.Category == document.CategoryDoor) {
		loop, ok = r.project(req)
		approx = ok
	}
	if !ok {
		loop, approx, ok = r.cut(req)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrFootprintNotFound, req.Category, req.Name)
	}
	return &Footprint{
		ElementID:   req.Opening,
		Name:        req.Name,
		Loop:        loop.ProjectOnto(req.HostPlane),
		Approximate: approx,
	}, nil
}

// ResolveAll resolves every request. Requests that fail are dropped and
// reported as footprint-not-found diagnostics.
func (r Resolver) ResolveAll(reqs []Request) ([]*Footprint, diag.List) {
	var (
		out   []*Footprint
		diags diag.List
	)
	for _, req := range reqs {
		fp, err := r.Resolve(req)
		if err != nil {
			diags = append(diags, diag.Errorf(diag.CodeFootprintNotFound, req.Opening.String(), "%v", err))
			continue
		}
		out = append(out, fp)
	}
	return out, diags
}

// project maps the box corners through the face's own projection and
// returns the rectangle they span in face coordinates.
func (r Resolver) project(req Request) (geom.Loop, bool) {
	plane := req.Face.Plane()
	lo := v2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := v2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, c := range req.Box.Corners() {
		q := plane.To2D(req.Face.Project(c))
		lo = v2.Vec{X: math.Min(lo.X, q.X), Y: math.Min(lo.Y, q.Y)}
		hi = v2.Vec{X: math.Max(hi.X, q.X), Y: math.Max(hi.Y, q.Y)}
	}
	pts := geom.DedupePoints([]v3.Vec{
		plane.From2D(lo),
		plane.From2D(v2.Vec{X: hi.X, Y: lo.Y}),
		plane.From2D(hi),
		plane.From2D(v2.Vec{X: lo.X, Y: hi.Y}),
	}, r.tol())
	if len(pts) < 3 {
		return geom.Loop{}, false
	}
	return geom.PolygonLoop(pts...), true
}

// cut tries each candidate plane in turn: it removes the material on the
// plane's positive side, gathers the edges of the faces looking along the
// plane normal that lie inside the insert's box and joins them.
func (r Resolver) cut(req Request) (loop geom.Loop, approx, ok bool) {
	if r.Kernel == nil || req.HostSolid == nil || req.HostSolid.IsEmpty() {
		return geom.Loop{}, false, false
	}
	tol := r.tol()
	box := req.Box.Expand(tol)
	for _, plane := range r.candidatePlanes(req) {
		cut, err := r.Kernel.CutWithHalfSpace(req.HostSolid, plane)
		if err != nil || cut.IsEmpty() {
			continue
		}
		var edges []geom.Curve
		for _, f := range cut.Faces() {
			if !f.IsPlanar() || !geom.SameDirection(f.Normal(), plane.Normal, r.angTol()) {
				continue
			}
			for _, l := range f.Loops() {
				for _, c := range l.Curves {
					if box.Contains(c.Start(), 0) && box.Contains(c.End(), 0) {
						edges = append(edges, c)
					}
				}
			}
		}
		if len(edges) == 0 {
			continue
		}
		l, closed := stitch.JoinOne(edges, tol)
		if closed {
			return l, false, true
		}
		if l, forced := l.ForceClose(tol); forced {
			return l, true, true
		}
	}
	return geom.Loop{}, false, false
}

// candidatePlanes returns the host plane followed by copies of it moved
// onto each parallel planar face of the host.
func (r Resolver) candidatePlanes(req Request) []geom.Plane {
	tol, ang := r.tol(), r.angTol()
	planes := []geom.Plane{req.HostPlane}
	for _, f := range req.HostSolid.Faces() {
		if !f.IsPlanar() || !f.Plane().IsParallel(req.HostPlane, ang) {
			continue
		}
		p := geom.Plane{Origin: f.Plane().Origin, Normal: req.HostPlane.Normal}
		dup := false
		for _, q := range planes {
			if q.IsCoplanar(p, tol, ang) {
				dup = true
				break
			}
		}
		if !dup {
			planes = append(planes, p)
		}
	}
	return planes
}
