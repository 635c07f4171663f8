package brep

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel"
	"github.com/chazu/planarize/pkg/stitch"
)

// CutWithHalfSpace removes the material on the positive side of plane.
// Faces entirely on the kept side survive unchanged, faces entirely on the
// removed side are dropped and straddling faces are clipped. The section
// through the solid becomes a cap face whose normal is plane's normal. A
// face lying in the plane survives only if it faces the removed side.
func (k *Kernel) CutWithHalfSpace(s kernel.Solid, plane geom.Plane) (kernel.Solid, error) {
	bs, err := asSolid(s)
	if err != nil {
		return nil, err
	}
	plane, err = geom.NewPlane(plane.Origin, plane.Normal)
	if err != nil {
		return nil, fmt.Errorf("brep: cut: %w", err)
	}
	tol := k.tol()

	out := &Solid{tol: tol}
	var segs []geom.Curve
	for _, f := range bs.faces {
		lo, hi := extent(f, plane)
		switch {
		case hi <= tol && lo >= -tol:
			if geom.SameDirection(f.Normal(), plane.Normal, geom.AngularTolerance) {
				out.faces = append(out.faces, f)
			}
			continue
		case hi <= tol:
			out.faces = append(out.faces, f)
			continue
		case lo >= -tol:
			continue
		}
		if c := clip(f, plane, tol); c != nil {
			out.faces = append(out.faces, c)
		}
		segs = append(segs, crossings(f, plane, tol)...)
	}
	if loops := joinSegments(segs, tol); len(loops) > 0 {
		capFace := &Face{plane: geom.Plane{Origin: plane.Project(loops[0].Start()), Normal: plane.Normal}}
		for _, l := range loops {
			capFace.rings = append(capFace.rings, l.ControlPoints())
		}
		out.faces = append(out.faces, capFace)
	}
	return out, nil
}

// Section returns the loops where plane passes through the solid. Faces
// that only touch the plane contribute nothing.
func (k *Kernel) Section(s kernel.Solid, plane geom.Plane) ([]geom.Loop, error) {
	bs, err := asSolid(s)
	if err != nil {
		return nil, err
	}
	plane, err = geom.NewPlane(plane.Origin, plane.Normal)
	if err != nil {
		return nil, fmt.Errorf("brep: section: %w", err)
	}
	tol := k.tol()
	var segs []geom.Curve
	for _, f := range bs.faces {
		if lo, hi := extent(f, plane); hi > tol && lo < -tol {
			segs = append(segs, crossings(f, plane, tol)...)
		}
	}
	return joinSegments(segs, tol), nil
}

// extent returns the minimum and maximum signed distance of f's vertices.
func extent(f *Face, plane geom.Plane) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range f.points() {
		d := plane.SignedDistance(p)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// intersect returns the point where segment a→b meets the plane, clamped to
// the segment.
func intersect(a, b v3.Vec, da, db float64) v3.Vec {
	if da == db {
		return a
	}
	t := math.Max(0, math.Min(1, da/(da-db)))
	return geom.Lerp(a, b, t)
}

// clip keeps the part of each ring on the non-positive side of plane.
func clip(f *Face, plane geom.Plane, tol float64) *Face {
	out := &Face{plane: f.plane, curved: f.curved}
	for _, r := range f.rings {
		var kept []v3.Vec
		for i := range r {
			prev, cur := r[(i+len(r)-1)%len(r)], r[i]
			dp, dc := plane.SignedDistance(prev), plane.SignedDistance(cur)
			inPrev, inCur := dp <= tol, dc <= tol
			if inCur != inPrev {
				kept = append(kept, intersect(prev, cur, dp, dc))
			}
			if inCur {
				kept = append(kept, cur)
			}
		}
		kept = geom.DedupePoints(kept, pointTol)
		if len(kept) >= 3 {
			out.rings = append(out.rings, kept)
		}
	}
	if len(out.rings) == 0 {
		return nil
	}
	return out
}

// crossings returns the segments where plane passes through f. Crossing
// points are ordered along the intersection line and paired even-odd, so
// holes in the face split the segment.
func crossings(f *Face, plane geom.Plane, tol float64) []geom.Curve {
	dir, ok := geom.Unit(f.Normal().Cross(plane.Normal))
	if !ok {
		return nil
	}
	var pts []v3.Vec
	for _, r := range f.rings {
		for i := range r {
			a, b := r[i], r[(i+1)%len(r)]
			da, db := plane.SignedDistance(a), plane.SignedDistance(b)
			if (da <= tol) != (db <= tol) {
				pts = append(pts, plane.Project(intersect(a, b, da, db)))
			}
		}
	}
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Dot(dir) < pts[j].Dot(dir)
	})
	var segs []geom.Curve
	for i := 0; i+1 < len(pts); i += 2 {
		if geom.Distance(pts[i], pts[i+1]) > pointTol {
			segs = append(segs, geom.NewLine(pts[i], pts[i+1]))
		}
	}
	return segs
}

// joinSegments chains section segments into loops, force-closing chains
// that end short of their start.
func joinSegments(segs []geom.Curve, tol float64) []geom.Loop {
	if len(segs) == 0 {
		return nil
	}
	res := stitch.Join(segs, tol)
	loops := append([]geom.Loop{}, res.Closed...)
	for _, l := range res.Open {
		if closed, ok := l.ForceClose(tol); ok {
			loops = append(loops, closed)
		}
	}
	return loops
}
