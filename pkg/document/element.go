package document

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
)

// Category enumerates the kinds of elements a document holds.
type Category int

const (
	CategoryWall    Category = iota // vertical host
	CategoryFloor                   // horizontal host, top face up
	CategoryRoof                    // horizontal host
	CategoryCeiling                 // horizontal host
	CategoryWindow                  // insert
	CategoryDoor                    // insert
	CategoryOpening                 // generic hosted void
	CategorySketch                  // 2-D sketch driving a host
)

func (c Category) String() string {
	switch c {
	case CategoryWall:
		return "wall"
	case CategoryFloor:
		return "floor"
	case CategoryRoof:
		return "roof"
	case CategoryCeiling:
		return "ceiling"
	case CategoryWindow:
		return "window"
	case CategoryDoor:
		return "door"
	case CategoryOpening:
		return "opening"
	case CategorySketch:
		return "sketch"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// MarshalText renders the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IsHost reports whether elements of this category can carry inserts.
func (c Category) IsHost() bool {
	switch c {
	case CategoryWall, CategoryFloor, CategoryRoof, CategoryCeiling:
		return true
	}
	return false
}

// IsInsert reports whether elements of this category are hosted.
func (c Category) IsInsert() bool {
	switch c {
	case CategoryWindow, CategoryDoor, CategoryOpening:
		return true
	}
	return false
}

// Element is a single object in the document.
type Element struct {
	ID       ElementID   `json:"id"`
	Category Category    `json:"category"`
	Name     string      `json:"name,omitempty"`
	Host     ElementID   `json:"host,omitempty"` // zero unless Category.IsInsert()
	Hidden   bool        `json:"hidden,omitempty"`
	Data     ElementData `json:"data"`
}

// ElementData is the interface for category-specific payloads.
type ElementData interface {
	elementData() // marker method restricting implementations to this package
}

// SketchMode says how a host's 2-D sketch can be reached.
type SketchMode int

const (
	SketchNone     SketchMode = iota // no sketch, geometry only
	SketchAuthored                   // sketch loops are readable from the payload
	SketchHidden                     // sketch appears as its own element once the host is deleted
)

func (m SketchMode) String() string {
	switch m {
	case SketchNone:
		return "none"
	case SketchAuthored:
		return "authored"
	case SketchHidden:
		return "hidden"
	default:
		return fmt.Sprintf("SketchMode(%d)", int(m))
	}
}

// ---------------------------------------------------------------------------
// Walls
// ---------------------------------------------------------------------------

// WallData is a wall standing on its location curve. The location's start
// point sets the base elevation. Profile holds the wall's elevation sketch
// in its centreline plane; an empty Profile means the plain rectangle.
type WallData struct {
	Location     geom.Curve  `json:"location"`
	Height       float64     `json:"height"`
	Thickness    float64     `json:"thickness"`
	Sketch       SketchMode  `json:"sketch"`
	Profile      []geom.Loop `json:"profile,omitempty"`
	StackedOwner string      `json:"stacked_owner,omitempty"` // name of the stacked wall this one belongs to
}

func (WallData) elementData() {}

// IsCurved reports whether the location is anything but a straight line.
func (w WallData) IsCurved() bool {
	return w.Location == nil || w.Location.Kind() != geom.CurveLine
}

// Base returns the elevation of the wall's bottom.
func (w WallData) Base() float64 { return w.Location.Start().Z }

// Direction returns the unit horizontal direction of travel.
func (w WallData) Direction() v3.Vec {
	d := w.Location.End().Sub(w.Location.Start())
	d.Z = 0
	u, _ := geom.Unit(d)
	return u
}

// Normal returns the horizontal normal to the right of the direction of
// travel.
func (w WallData) Normal() v3.Vec {
	d := w.Direction()
	return v3.Vec{X: d.Y, Y: -d.X}
}

// Plane returns the centreline plane. Its u axis runs along the wall from
// the location start and its v axis points up.
func (w WallData) Plane() geom.Plane {
	return geom.Plane{Origin: w.Location.Start(), Normal: w.Normal()}
}

// Outline returns the wall's rectangle in the centreline plane.
func (w WallData) Outline() geom.Loop {
	a, b := w.Location.Start(), w.Location.End()
	b.Z = a.Z
	up := geom.Up.MulScalar(w.Height)
	return geom.PolygonLoop(a, b, b.Add(up), a.Add(up))
}

// SketchLoops returns Profile, or the outline when no profile was given.
func (w WallData) SketchLoops() []geom.Loop {
	if len(w.Profile) > 0 {
		return w.Profile
	}
	return []geom.Loop{w.Outline()}
}

// ArcLocation returns the horizontal arc from start to end that turns
// sweep radians counter-clockwise seen from above.
func ArcLocation(start, end v3.Vec, sweep float64) (geom.Arc, error) {
	chord := end.Sub(start)
	chord.Z = 0
	d, ok := geom.Unit(chord)
	if !ok || sweep == 0 || math.Abs(sweep) >= 2*math.Pi {
		return geom.Arc{}, fmt.Errorf("%w: arc location", geom.ErrDegenerate)
	}
	half := chord.Length() / 2
	left := v3.Vec{X: -d.Y, Y: d.X}
	mid := geom.Lerp(start, v3.Vec{X: end.X, Y: end.Y, Z: start.Z}, 0.5)
	center := mid.Add(left.MulScalar(half / math.Tan(sweep/2)))
	return geom.ArcFrom(center, start, geom.Up, sweep)
}

// ---------------------------------------------------------------------------
// Slabs
// ---------------------------------------------------------------------------

// SlabData describes a horizontal host. Boundary holds outer loops and
// structural voids in any order; Elevation is the top face.
type SlabData struct {
	Boundary  []geom.Loop `json:"boundary"`
	Elevation float64     `json:"elevation"`
	Thickness float64     `json:"thickness"`
	Sketch    SketchMode  `json:"sketch"`
	Curved    bool        `json:"curved,omitempty"` // shape-edited or curved, faces are not planar
}

// FloorData is a floor slab.
type FloorData struct{ SlabData }

// RoofData is a flat roof.
type RoofData struct{ SlabData }

// CeilingData is a ceiling.
type CeilingData struct{ SlabData }

func (FloorData) elementData()   {}
func (RoofData) elementData()    {}
func (CeilingData) elementData() {}

// Plane returns the plane of the top face.
func (s SlabData) Plane() geom.Plane { return geom.HorizontalPlane(s.Elevation) }

// SketchLoops returns the boundary flattened onto the top face.
func (s SlabData) SketchLoops() []geom.Loop {
	out := make([]geom.Loop, len(s.Boundary))
	for i, l := range s.Boundary {
		out[i] = l.Map(func(p v3.Vec) v3.Vec {
			p.Z = s.Elevation
			return p
		})
	}
	return out
}

func slabOf(data ElementData) (SlabData, bool) {
	switch d := data.(type) {
	case FloorData:
		return d.SlabData, true
	case RoofData:
		return d.SlabData, true
	case CeilingData:
		return d.SlabData, true
	}
	return SlabData{}, false
}

// ---------------------------------------------------------------------------
// Inserts and sketches
// ---------------------------------------------------------------------------

// OpeningData places an insert on its host. On walls U runs along the
// location line from its start and V up from the wall base; on slabs U and
// V are plan X and Y. (U, V) is the insert's centre.
type OpeningData struct {
	U      float64 `json:"u"`
	V      float64 `json:"v"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (OpeningData) elementData() {}

// SketchData holds the loops of a host's sketch.
type SketchData struct {
	Owner ElementID   `json:"owner"`
	Loops []geom.Loop `json:"loops"`
}

func (SketchData) elementData() {}
