// Package kernel defines the abstract solid-geometry interface used to
// build host elements and to cut and section them. Implementations (brep,
// sdfx) provide the operations behind these interfaces, so the rest of the
// system never depends on a particular representation.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
)

// Face is one boundary face of a solid.
type Face interface {
	// Plane returns the face's supporting plane with an outward normal.
	Plane() geom.Plane
	Normal() v3.Vec
	// IsPlanar is false for faces that approximate a curved surface.
	IsPlanar() bool
	// Loops returns the face's boundary rings. No ring is designated outer.
	Loops() []geom.Loop
	// Project maps a world point onto the face's surface.
	Project(p v3.Vec) v3.Vec
}

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() geom.BoundingBox
	Faces() []Face
	// Edges returns every boundary edge once.
	Edges() []geom.Curve
	IsEmpty() bool
}

// Kernel is the abstract solid-modeling interface.
type Kernel interface {
	// Box returns the axis-aligned box spanning min and max.
	Box(min, max v3.Vec) Solid
	// Extrude sweeps a planar profile along direction. The first loop is the
	// outer boundary and the rest are holes.
	Extrude(profile []geom.Loop, direction v3.Vec) (Solid, error)
	// Union combines two solids that do not overlap.
	Union(a, b Solid) Solid
	// CutWithHalfSpace removes all material on the side of plane its normal
	// points to. The new boundary face has the plane's normal.
	CutWithHalfSpace(s Solid, plane geom.Plane) (Solid, error)
	// Section returns the closed loops where plane crosses the solid.
	Section(s Solid, plane geom.Plane) ([]geom.Loop, error)
}

// Mesher renders a finished planar region as a preview mesh.
type Mesher interface {
	// Panel extrudes the region bounded by outer minus holes by thickness
	// along the plane normal and tessellates it.
	Panel(plane geom.Plane, outer geom.Loop, holes []geom.Loop, thickness float64) (*Mesh, error)
}
