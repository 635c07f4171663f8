// Package sdfx implements the kernel.Mesher interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Panels are built as 2-D
// signed distance fields in the surface's plane, extruded to thickness and
// tessellated with marching cubes.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/planarize/pkg/geom"
	"github.com/chazu/planarize/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Mesher = (*Mesher)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// ErrEmptyPanel is returned for panels without area or thickness.
var ErrEmptyPanel = errors.New("sdfx: empty panel")

// Mesher tessellates planar panels. Cells is the marching cubes resolution
// along the panel's longest side.
type Mesher struct {
	Cells int
}

// New returns a Mesher with the given resolution; non-positive values use
// DefaultMeshCells.
func New(cells int) *Mesher {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &Mesher{Cells: cells}
}

// Profile returns the 2-D field of outer minus holes in plane's frame.
func Profile(plane geom.Plane, outer geom.Loop, holes []geom.Loop) (sdf.SDF2, error) {
	shape, err := polygon(plane, outer)
	if err != nil {
		return nil, fmt.Errorf("outer loop: %w", err)
	}
	var voids []sdf.SDF2
	for i, h := range holes {
		v, err := polygon(plane, h)
		if err != nil {
			return nil, fmt.Errorf("hole %d: %w", i, err)
		}
		voids = append(voids, v)
	}
	if len(voids) == 0 {
		return shape, nil
	}
	return sdf.Difference2D(shape, sdf.Union2D(voids...)), nil
}

func polygon(plane geom.Plane, l geom.Loop) (sdf.SDF2, error) {
	pts := l.Points2D(plane)
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrEmptyPanel, len(pts))
	}
	if geom.SignedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return sdf.Polygon2D(pts)
}

// Panel extrudes the region outer minus holes by thickness along the
// plane's normal, starting on the plane, and returns its triangle mesh in
// world coordinates.
func (m *Mesher) Panel(plane geom.Plane, outer geom.Loop, holes []geom.Loop, thickness float64) (*kernel.Mesh, error) {
	if thickness <= 0 {
		return nil, fmt.Errorf("%w: thickness %g", ErrEmptyPanel, thickness)
	}
	profile, err := Profile(plane, outer, holes)
	if err != nil {
		return nil, err
	}
	solid := sdf.Extrude3D(profile, thickness)

	cells := m.Cells
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(solid, renderer)

	// Extrude3D centres the solid on z = 0; shift it onto the plane and map
	// the local frame to world space.
	u, v := plane.Basis()
	n := plane.Normal
	half := thickness / 2
	toWorld := func(p v3.Vec) v3.Vec {
		return plane.From2D(v2.Vec{X: p.X, Y: p.Y}).Add(n.MulScalar(p.Z + half))
	}
	rotate := func(d v3.Vec) v3.Vec {
		return u.MulScalar(d.X).Add(v.MulScalar(d.Y)).Add(n.MulScalar(d.Z))
	}

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		fn := rotate(tri.Normal())
		nx := float32(fn.X)
		ny := float32(fn.Y)
		nz := float32(fn.Z)

		for j := 0; j < 3; j++ {
			w := toWorld(tri[j])
			vertices = append(vertices, float32(w.X), float32(w.Y), float32(w.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
