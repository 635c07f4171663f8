// Package classify partitions a flat set of closed loops into outer
// boundaries and the holes nested inside them.
package classify

import (
	"fmt"
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/peterstace/simplefeatures/rtree"

	"github.com/chazu/planarize/pkg/diag"
	"github.com/chazu/planarize/pkg/geom"
)

// Group is one outer loop and the inner loops directly nested in it.
type Group struct {
	Outer  geom.Loop
	Inners []geom.Loop
}

// Classifier assigns each loop the role of outer boundary or hole.
//
// A loop is a hole of B when every one of its control points is contained
// by B's prepared region. Loops are visited by decreasing plan area, so a
// loop's candidate parents have always been classified before it; the
// immediate parent is the smallest containing candidate. Loops of equal
// area never contain each other.
//
// Only outer loops are candidate parents unless the strategy is exact. With
// an exact strategy a loop whose immediate parent is a hole is an island
// and becomes an outer loop again; an approximate region cannot tell an
// island from a neighbouring void, so it never gets that far.
type Classifier struct {
	Strategy  Strategy
	Tolerance float64
}

// New returns a classifier using bounding-box containment.
func New(tol float64) Classifier {
	return Classifier{Strategy: BoundingBoxStrategy{Tolerance: tol}, Tolerance: tol}
}

type role int

const (
	roleUnvisited role = iota
	roleOuter
	roleInner
)

type entry struct {
	loop   geom.Loop
	box    rtree.Box
	area   float64
	role   role
	parent int

	region   Region
	prepErr  error
	prepared bool
}

// Classify groups loops. Groups follow the input order of their outer
// loops, and inners keep their input order. Loops that cannot be tested
// are kept as outer loops and reported with a diagnostic, never dropped.
func (c Classifier) Classify(loops []geom.Loop) ([]Group, []diag.Diagnostic) {
	if len(loops) == 0 {
		return nil, nil
	}
	strategy := c.Strategy
	if strategy == nil {
		strategy = BoundingBoxStrategy{Tolerance: c.Tolerance}
	}

	var diags []diag.Diagnostic
	plane, ok := commonPlane(loops)
	entries := make([]*entry, len(loops))
	var items []rtree.BulkItem
	for i, l := range loops {
		e := &entry{loop: l, parent: -1}
		entries[i] = e
		if !ok {
			e.role = roleOuter
			continue
		}
		pts := l.Points2D(plane)
		if len(pts) < 3 {
			e.role = roleOuter
			diags = append(diags, diag.Warning(diag.CodeClassificationAmbiguous, "",
				"loop %d is degenerate (%d points); kept as outer", i, len(pts)))
			continue
		}
		e.area = math.Abs(geom.SignedArea(pts))
		e.box = Box2D(pts, c.Tolerance)
		items = append(items, rtree.BulkItem{Box: e.box, RecordID: i})
	}
	if !ok {
		diags = append(diags, diag.Warning(diag.CodeClassificationAmbiguous, "",
			"no loop defines a plane; all %d loops kept as outer", len(loops)))
		return groups(entries), diags
	}

	order := make([]int, 0, len(items))
	for _, it := range items {
		order = append(order, it.RecordID)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return entries[order[a]].area > entries[order[b]].area
	})

	exact := isExact(strategy)
	tree := rtree.BulkLoad(items)
	for _, i := range order {
		e := entries[i]
		var candidates []int
		_ = tree.RangeSearch(e.box, func(j int) error {
			cand := entries[j]
			if j == i || cand.area <= e.area {
				return nil
			}
			if cand.role == roleOuter || (exact && cand.role == roleInner) {
				candidates = append(candidates, j)
			}
			return nil
		})
		sort.Slice(candidates, func(a, b int) bool {
			ea, eb := entries[candidates[a]], entries[candidates[b]]
			if ea.area != eb.area {
				return ea.area < eb.area
			}
			return candidates[a] < candidates[b]
		})

		e.role = roleOuter
		for _, j := range candidates {
			inside, err := c.containedBy(strategy, e, entries[j])
			if err != nil {
				diags = append(diags, diag.Warning(diag.CodeClassificationAmbiguous, "",
					"containment of loop %d in loop %d failed: %v; kept as outer", i, j, err))
				e.parent = -1
				break
			}
			if !inside {
				continue
			}
			e.parent = j
			if entries[j].role == roleOuter {
				e.role = roleInner
			}
			break
		}
	}
	return groups(entries), diags
}

// containedBy reports whether every control point of e lies in parent's
// region. Strategy panics are recovered and returned as errors.
func (c Classifier) containedBy(s Strategy, e, parent *entry) (inside bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("containment panic: %v", r)
		}
	}()
	if !parent.prepared {
		parent.region, parent.prepErr = s.Prepare(parent.loop)
		parent.prepared = true
	}
	if parent.prepErr != nil {
		return false, parent.prepErr
	}
	for _, p := range e.loop.ControlPoints() {
		if !parent.region.Contains(p) {
			return false, nil
		}
	}
	return true, nil
}

func groups(entries []*entry) []Group {
	index := make(map[int]int)
	var out []Group
	for i, e := range entries {
		if e.role != roleInner {
			index[i] = len(out)
			out = append(out, Group{Outer: e.loop})
		}
	}
	for _, e := range entries {
		if e.role == roleInner {
			g := index[e.parent]
			out[g].Inners = append(out[g].Inners, e.loop)
		}
	}
	return out
}

// commonPlane returns the plane of the first loop that has one.
func commonPlane(loops []geom.Loop) (geom.Plane, bool) {
	for _, l := range loops {
		if p, err := l.Plane(); err == nil {
			return p, true
		}
	}
	return geom.Plane{}, false
}

// Box2D returns the R-tree box of pts grown by tol.
func Box2D(pts []v2.Vec, tol float64) rtree.Box {
	b := rtree.Box{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range pts {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	b.MinX -= tol
	b.MinY -= tol
	b.MaxX += tol
	b.MaxY += tol
	return b
}
