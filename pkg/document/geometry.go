package document

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/classify"
	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel"
)

// ErrNoGeometry is returned for elements that have no solid.
var ErrNoGeometry = errors.New("document: element has no geometry")

// Detail selects how much of an element's geometry Geometry builds.
type Detail int

const (
	DetailCoarse Detail = iota // host body without insert voids
	DetailFine                 // insert voids cut through the host
)

// GeometryOptions controls Geometry.
type GeometryOptions struct {
	Detail           Detail
	IncludeInvisible bool
}

// Geometry returns the solid of element id built with the document's
// kernel.
func (d *Document) Geometry(id ElementID, opts GeometryOptions) (kernel.Solid, error) {
	e := d.elements[id]
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}
	if e.Hidden && !opts.IncludeInvisible {
		return nil, fmt.Errorf("%w: %s is hidden", ErrNoGeometry, id.Short())
	}
	var voids []geom.Loop
	if opts.Detail == DetailFine {
		for _, ins := range d.Inserts(id) {
			if v, ok := d.voidOf(e, d.elements[ins]); ok {
				voids = append(voids, v)
			}
		}
	}

	switch data := e.Data.(type) {
	case WallData:
		return d.wallSolid(data, voids)
	case FloorData, RoofData, CeilingData:
		s, _ := slabOf(data)
		return d.extrude(append(s.SketchLoops(), voids...), geom.Up.MulScalar(-s.Thickness), v3.Vec{})
	case OpeningData:
		box, err := d.BoundingBox(id)
		if err != nil {
			return nil, err
		}
		return d.Kernel.Box(box.Min, box.Max), nil
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrNoGeometry, e.Category, id.Short())
	}
}

func (d *Document) wallSolid(w WallData, voids []geom.Loop) (kernel.Solid, error) {
	if w.Location == nil {
		return nil, fmt.Errorf("%w: wall without location", ErrNoGeometry)
	}
	if arc, ok := w.Location.(geom.Arc); ok {
		return d.arcWallSolid(w, arc)
	}
	if w.IsCurved() {
		return nil, fmt.Errorf("%w: wall location is a %s", ErrNoGeometry, w.Location.Kind())
	}
	n := w.Normal()
	loops := append(append([]geom.Loop(nil), w.SketchLoops()...), voids...)
	return d.extrude(loops, n.MulScalar(w.Thickness), n.MulScalar(-w.Thickness/2))
}

// arcWallSolid sweeps the plan footprint between the two offset arcs up
// the wall's height.
func (d *Document) arcWallSolid(w WallData, arc geom.Arc) (kernel.Solid, error) {
	half := w.Thickness / 2
	if arc.Radius <= half {
		return nil, fmt.Errorf("%w: arc radius %g within wall thickness", ErrNoGeometry, arc.Radius)
	}
	outer, inner := arc, arc
	outer.Radius += half
	inner.Radius -= half
	plan := geom.NewLoop(
		outer,
		geom.NewLine(outer.End(), inner.End()),
		inner.Reverse(),
		geom.NewLine(inner.Start(), outer.Start()),
	)
	return d.extrude([]geom.Loop{plan}, geom.Up.MulScalar(w.Height), v3.Vec{})
}

// extrude groups loops into outers with their holes, sweeps each group
// along dir after moving it by offset, and unions the results.
func (d *Document) extrude(loops []geom.Loop, dir, offset v3.Vec) (kernel.Solid, error) {
	if len(loops) == 0 {
		return nil, fmt.Errorf("%w: no boundary", ErrNoGeometry)
	}
	groups, _ := classify.New(d.tolerance()).Classify(loops)
	var out kernel.Solid
	for _, g := range groups {
		profile := append([]geom.Loop{g.Outer}, g.Inners...)
		for i := range profile {
			profile[i] = profile[i].Translate(offset)
		}
		s, err := d.Kernel.Extrude(profile, dir)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = s
		} else {
			out = d.Kernel.Union(out, s)
		}
	}
	return out, nil
}

func (d *Document) tolerance() float64 {
	if d.Tolerance <= 0 {
		return geom.DefaultTolerance
	}
	return d.Tolerance
}

// voidOf returns the loop an insert cuts through host, in the plane the
// host's sketch lives in.
func (d *Document) voidOf(host, ins *Element) (geom.Loop, bool) {
	if ins == nil || !ins.Category.IsInsert() {
		return geom.Loop{}, false
	}
	o, ok := ins.Data.(OpeningData)
	if !ok || o.Width <= 0 || o.Height <= 0 {
		return geom.Loop{}, false
	}
	hw, hh := o.Width/2, o.Height/2
	switch data := host.Data.(type) {
	case WallData:
		if data.IsCurved() {
			return geom.Loop{}, false
		}
		p := data.Plane()
		u, v := p.Basis()
		c := p.Origin.Add(u.MulScalar(o.U)).Add(v.MulScalar(o.V))
		return geom.PolygonLoop(
			c.Add(u.MulScalar(-hw)).Add(v.MulScalar(-hh)),
			c.Add(u.MulScalar(hw)).Add(v.MulScalar(-hh)),
			c.Add(u.MulScalar(hw)).Add(v.MulScalar(hh)),
			c.Add(u.MulScalar(-hw)).Add(v.MulScalar(hh)),
		), true
	}
	if s, ok := slabOf(host.Data); ok {
		z := s.Elevation
		return geom.PolygonLoop(
			v3.Vec{X: o.U - hw, Y: o.V - hh, Z: z},
			v3.Vec{X: o.U + hw, Y: o.V - hh, Z: z},
			v3.Vec{X: o.U + hw, Y: o.V + hh, Z: z},
			v3.Vec{X: o.U - hw, Y: o.V + hh, Z: z},
		), true
	}
	return geom.Loop{}, false
}

// BoundingBox returns the axis-aligned box of element id. Inserts span
// their host's full thickness.
func (d *Document) BoundingBox(id ElementID) (geom.BoundingBox, error) {
	e := d.elements[id]
	if e == nil {
		return geom.BoundingBox{}, fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}
	if _, ok := e.Data.(OpeningData); ok {
		return d.insertBox(e)
	}
	s, err := d.Geometry(id, GeometryOptions{IncludeInvisible: true})
	if err != nil {
		return geom.BoundingBox{}, err
	}
	return s.BoundingBox(), nil
}

func (d *Document) insertBox(ins *Element) (geom.BoundingBox, error) {
	host := d.elements[ins.Host]
	if host == nil {
		return geom.BoundingBox{}, fmt.Errorf("%w: host of %s", ErrNotFound, ins.ID.Short())
	}
	void, ok := d.voidOf(host, ins)
	if !ok {
		return geom.BoundingBox{}, fmt.Errorf("%w: %s cannot be placed on %s", ErrNoGeometry, ins.Category, host.Category)
	}
	var across v3.Vec
	switch data := host.Data.(type) {
	case WallData:
		across = data.Normal().MulScalar(data.Thickness / 2)
		return void.Translate(across.Neg()).BoundingBox().Union(void.Translate(across).BoundingBox()), nil
	default:
		s, _ := slabOf(host.Data)
		across = geom.Up.MulScalar(-s.Thickness)
		return void.BoundingBox().Union(void.Translate(across).BoundingBox()), nil
	}
}
