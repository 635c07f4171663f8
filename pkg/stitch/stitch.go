// Package stitch joins an unordered set of boundary curves into ordered
// loops.
//
// Chaining is greedy and deterministic. A chain is seeded with the
// lowest-index unused curve, grown at its end and then at its start. When
// several unused curves touch a chain endpoint within tolerance the one with
// the lowest input index is taken; a candidate that touches with its far
// endpoint is reversed before it is appended.
package stitch

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
)

// Result holds the loops produced by Join.
type Result struct {
	// Closed are chains whose end returns to their start within tolerance.
	Closed []geom.Loop
	// Open are chains that could not be closed. Callers decide whether to
	// force-close or reject them.
	Open []geom.Loop
	// Duplicates counts curves dropped because an earlier curve had the
	// same endpoints and length.
	Duplicates int
	// Degenerate counts curves dropped for being shorter than tolerance.
	Degenerate int
}

// Loops returns the closed loops followed by the open ones.
func (r Result) Loops() []geom.Loop {
	out := make([]geom.Loop, 0, len(r.Closed)+len(r.Open))
	out = append(out, r.Closed...)
	return append(out, r.Open...)
}

// Join chains curves into maximal loops. Every curve that survives duplicate
// and degenerate filtering appears in exactly one output loop, in the
// direction the chain traverses it.
func Join(curves []geom.Curve, tol float64) Result {
	var res Result
	pool := make([]geom.Curve, 0, len(curves))
	for _, c := range curves {
		if c == nil {
			continue
		}
		if c.Length() < tol {
			res.Degenerate++
			continue
		}
		if containsSegment(pool, c, tol) {
			res.Duplicates++
			continue
		}
		pool = append(pool, c)
	}

	used := make([]bool, len(pool))
	for seed := range pool {
		if used[seed] {
			continue
		}
		used[seed] = true
		chain := []geom.Curve{pool[seed]}

		// Grow forward from the chain end.
		for !closes(chain, tol) {
			i, c := nextAt(pool, used, chain[len(chain)-1].End(), tol, false)
			if i < 0 {
				break
			}
			used[i] = true
			chain = append(chain, c)
		}

		// Grow backward from the chain start.
		for !closes(chain, tol) {
			i, c := nextAt(pool, used, chain[0].Start(), tol, true)
			if i < 0 {
				break
			}
			used[i] = true
			chain = append([]geom.Curve{c}, chain...)
		}

		loop := geom.Loop{Curves: chain}
		if closes(chain, tol) {
			res.Closed = append(res.Closed, loop)
		} else {
			res.Open = append(res.Open, loop)
		}
	}
	return res
}

// JoinOne joins curves and returns the longest closed loop. When nothing
// closes, the longest open chain is returned with false.
func JoinOne(curves []geom.Curve, tol float64) (geom.Loop, bool) {
	res := Join(curves, tol)
	if l, ok := longest(res.Closed); ok {
		return l, true
	}
	l, _ := longest(res.Open)
	return l, false
}

func longest(loops []geom.Loop) (geom.Loop, bool) {
	best := -1
	for i, l := range loops {
		if best < 0 || l.Length() > loops[best].Length() {
			best = i
		}
	}
	if best < 0 {
		return geom.Loop{}, false
	}
	return loops[best], true
}

// nextAt finds the lowest-index unused curve touching p. Going forward the
// returned curve starts at p; going backward it ends at p.
func nextAt(pool []geom.Curve, used []bool, p v3.Vec, tol float64, backward bool) (int, geom.Curve) {
	for i, c := range pool {
		if used[i] {
			continue
		}
		near, far := c.Start(), c.End()
		if backward {
			near, far = far, near
		}
		switch {
		case geom.Near(near, p, tol):
			return i, c
		case geom.Near(far, p, tol):
			return i, c.Reverse()
		}
	}
	return -1, nil
}

// closes reports whether the chain returns to its start. A single curve
// only closes on itself when it is not a straight line.
func closes(chain []geom.Curve, tol float64) bool {
	if len(chain) == 1 && chain[0].Kind() == geom.CurveLine {
		return false
	}
	l := geom.Loop{Curves: chain}
	return l.IsClosed(tol)
}

func containsSegment(pool []geom.Curve, c geom.Curve, tol float64) bool {
	for _, p := range pool {
		if geom.SameSegment(p, c, tol) {
			return true
		}
	}
	return false
}
