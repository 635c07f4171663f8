package profile

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/document"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel"
)

// parallelTol is the angular tolerance for matching section edges to a
// wall's direction of travel.
const parallelTol = 1e-4

// sectionFunc derives a profile from a host solid.
type sectionFunc func(k kernel.Kernel, s kernel.Solid, tol float64) ([]geom.Loop, error)

// host is the kind-independent view Extract works from once the payload
// has been matched.
type host struct {
	plane     geom.Plane
	thickness float64
	sketch    document.SketchMode
	loops     []geom.Loop
	section   sectionFunc
}

func wallHost(w document.WallData, stackOwner bool) (host, error) {
	switch {
	case w.IsCurved():
		return host{}, fmt.Errorf("%w: curved wall", ErrUnsupported)
	case w.StackedOwner != "":
		return host{}, fmt.Errorf("%w: member of stacked wall %q", ErrUnsupported, w.StackedOwner)
	case stackOwner:
		return host{}, fmt.Errorf("%w: stacked wall", ErrUnsupported)
	}
	plane, dir := w.Plane(), w.Direction()
	base, top, t := w.Base(), w.Base()+w.Height, w.Thickness
	return host{
		plane:     plane,
		thickness: t,
		sketch:    w.Sketch,
		loops:     w.SketchLoops(),
		section: func(k kernel.Kernel, s kernel.Solid, tol float64) ([]geom.Loop, error) {
			return wallSection(k, s, plane, dir, base, top, t, tol)
		},
	}, nil
}

func slabHost(s document.SlabData) (host, error) {
	if s.Curved {
		return host{}, fmt.Errorf("%w: non-planar slab", ErrUnsupported)
	}
	elev, t := s.Elevation, s.Thickness
	return host{
		plane:     s.Plane(),
		thickness: t,
		sketch:    s.Sketch,
		loops:     s.SketchLoops(),
		section: func(k kernel.Kernel, solid kernel.Solid, tol float64) ([]geom.Loop, error) {
			return slabSection(k, solid, elev, t, tol)
		},
	}, nil
}

// inset keeps section planes clear of the faces they run parallel to.
func inset(size, tol float64) float64 {
	return math.Min(10*tol, size/4)
}

// slabSection cuts just below the top face, or just above the bottom face
// when that yields nothing, and flattens the loops onto the top elevation.
func slabSection(k kernel.Kernel, s kernel.Solid, elevation, thickness, tol float64) ([]geom.Loop, error) {
	d := inset(thickness, tol)
	loops, err := k.Section(s, geom.HorizontalPlane(elevation-d))
	if err != nil {
		return nil, err
	}
	if len(loops) == 0 {
		if loops, err = k.Section(s, geom.HorizontalPlane(elevation-thickness+d)); err != nil {
			return nil, err
		}
	}
	if len(loops) == 0 {
		return nil, fmt.Errorf("%w: slab section is empty", ErrNoProfile)
	}
	flat := make([]geom.Loop, len(loops))
	for i, l := range loops {
		flat[i] = l.Map(func(p v3.Vec) v3.Vec {
			p.Z = elevation
			return p
		})
	}
	if err := checkClosed(flat, tol); err != nil {
		return nil, err
	}
	return flat, nil
}

// wallSection cuts the wall just above its base and just below its top,
// takes from each cut the edge on the face the wall normal points out of,
// drops both onto the centreline plane at the exact elevations and joins
// them into one loop.
func wallSection(k kernel.Kernel, s kernel.Solid, plane geom.Plane, dir v3.Vec, base, top, thickness, tol float64) ([]geom.Loop, error) {
	d := inset(top-base, tol)
	b0, b1, err := faceEdge(k, s, geom.HorizontalPlane(base+d), plane, dir, thickness, tol)
	if err != nil {
		return nil, fmt.Errorf("base section: %w", err)
	}
	t0, t1, err := faceEdge(k, s, geom.HorizontalPlane(top-d), plane, dir, thickness, tol)
	if err != nil {
		return nil, fmt.Errorf("top section: %w", err)
	}
	at := func(along, z float64) v3.Vec {
		p := plane.Origin.Add(dir.MulScalar(along))
		p.Z = z
		return p
	}
	if b1-b0 <= tol || t1-t0 <= tol {
		return nil, fmt.Errorf("%w: wall section collapsed", ErrNoProfile)
	}
	bs, be, te, ts := at(b0, base), at(b1, base), at(t1, top), at(t0, top)
	loop := geom.NewLoop(
		geom.NewLine(bs, be),
		geom.NewLine(be, te),
		geom.NewLine(te, ts),
		geom.NewLine(ts, bs),
	)
	return []geom.Loop{loop}, nil
}

// faceEdge sections s with cut and returns the extent along dir of the
// section edges lying on the wall face at +thickness/2 from plane.
func faceEdge(k kernel.Kernel, s kernel.Solid, cut, plane geom.Plane, dir v3.Vec, thickness, tol float64) (lo, hi float64, err error) {
	loops, err := k.Section(s, cut)
	if err != nil {
		return 0, 0, err
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, l := range loops {
		for _, c := range l.Curves {
			a, b := c.Start(), c.End()
			seg, ok := geom.Unit(b.Sub(a))
			if !ok || !geom.Parallel(seg, dir, parallelTol) {
				continue
			}
			mid := geom.Lerp(a, b, 0.5)
			if math.Abs(plane.SignedDistance(mid)-thickness/2) > tol {
				continue
			}
			for _, p := range []v3.Vec{a, b} {
				along := p.Sub(plane.Origin).Dot(dir)
				lo = math.Min(lo, along)
				hi = math.Max(hi, along)
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, fmt.Errorf("%w: no edge on the wall face", ErrNoProfile)
	}
	return lo, hi, nil
}
