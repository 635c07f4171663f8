package planar

import (
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/peterstace/simplefeatures/rtree"

	"github.com/chazu/planarize/pkg/classify"
	"github.com/chazu/planarize/pkg/diag"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/opening"
)

// Assignment is the result of Assign: the surfaces in their original
// order and the footprints attached to each.
type Assignment struct {
	Surfaces []*PlanarSurface
	Openings map[*PlanarSurface][]*opening.Footprint
}

// Assigner attaches opening footprints to surfaces.
//
// A footprint goes to the first surface, in iteration order, whose outer
// region contains at least one of the footprint's control points. With the
// default bounding-box strategy this is an approximation: a footprint near
// the edge of a non-convex surface can land on the wrong one.
type Assigner struct {
	Strategy  classify.Strategy // nil means classify.BoundingBoxStrategy
	Tolerance float64
}

func (a Assigner) tol() float64 {
	if a.Tolerance <= 0 {
		return geom.DefaultTolerance
	}
	return a.Tolerance
}

// Assign attaches each footprint to exactly one surface, appending its
// loop to that surface's holes. Footprints that match no surface are
// dropped and reported.
func (a Assigner) Assign(surfaces []*PlanarSurface, footprints []*opening.Footprint) (Assignment, diag.List) {
	res := Assignment{
		Surfaces: surfaces,
		Openings: make(map[*PlanarSurface][]*opening.Footprint, len(surfaces)),
	}
	if len(footprints) == 0 {
		return res, nil
	}
	var diags diag.List
	if len(surfaces) == 0 {
		for _, fp := range footprints {
			diags = append(diags, unassigned(fp))
		}
		return res, diags
	}

	tol := a.tol()
	strategy := a.Strategy
	if strategy == nil {
		strategy = classify.BoundingBoxStrategy{Tolerance: tol}
	}
	plane := surfaces[0].Plane

	regions := make([]classify.Region, len(surfaces))
	items := make([]rtree.BulkItem, 0, len(surfaces))
	for i, s := range surfaces {
		r, err := strategy.Prepare(s.Outer)
		if err != nil {
			diags = append(diags, diag.Warning(diag.CodeClassificationAmbiguous, "",
				"surface %d cannot host openings: %v", i, err))
			continue
		}
		regions[i] = r
		items = append(items, rtree.BulkItem{Box: classify.Box2D(s.Outer.Points2D(plane), tol), RecordID: i})
	}
	tree := rtree.BulkLoad(items)

	for _, fp := range footprints {
		pts := fp.Loop.ControlPoints()
		if len(pts) == 0 {
			diags = append(diags, unassigned(fp))
			continue
		}
		var candidates []int
		_ = tree.RangeSearch(classify.Box2D(fp.Loop.Points2D(plane), tol), func(i int) error {
			candidates = append(candidates, i)
			return nil
		})
		sort.Ints(candidates)

		target := -1
		for _, i := range candidates {
			if containsAny(regions[i], pts) {
				target = i
				break
			}
		}
		if target < 0 {
			diags = append(diags, unassigned(fp))
			continue
		}
		s := surfaces[target]
		s.AddOpening(fp)
		res.Openings[s] = append(res.Openings[s], fp)
	}
	return res, diags
}

func containsAny(r classify.Region, pts []v3.Vec) bool {
	for _, p := range pts {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

func unassigned(fp *opening.Footprint) diag.Diagnostic {
	return diag.Errorf(diag.CodeOpeningUnassigned, fp.ElementID.String(),
		"opening %q lies on no surface of its host", fp.Name)
}
