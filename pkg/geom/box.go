package geom

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BoundingBox is an axis-aligned box. The zero value is empty and absorbs
// the first point or box it is combined with.
type BoundingBox struct {
	sdf.Box3
	valid bool
}

// NewBoundingBox returns the box spanning min and max.
func NewBoundingBox(min, max v3.Vec) BoundingBox {
	return BoxOf(min, max)
}

// BoxOf returns the smallest box containing pts.
func BoxOf(pts ...v3.Vec) BoundingBox {
	var b BoundingBox
	for _, p := range pts {
		b = b.Include(p)
	}
	return b
}

// IsEmpty reports whether the box holds no points.
func (b BoundingBox) IsEmpty() bool {
	return !b.valid
}

// Include grows the box to contain p.
func (b BoundingBox) Include(p v3.Vec) BoundingBox {
	if !b.valid {
		return BoundingBox{Box3: sdf.Box3{Min: p, Max: p}, valid: true}
	}
	return BoundingBox{Box3: b.Box3.Include(p), valid: true}
}

// Union returns the box enclosing both boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	switch {
	case !o.valid:
		return b
	case !b.valid:
		return o
	}
	return BoundingBox{Box3: b.Box3.Extend(o.Box3), valid: true}
}

// Expand grows the box by margin on every side.
func (b BoundingBox) Expand(margin float64) BoundingBox {
	if !b.valid {
		return b
	}
	m := v3.Vec{X: margin, Y: margin, Z: margin}
	return BoundingBox{Box3: sdf.Box3{Min: b.Min.Sub(m), Max: b.Max.Add(m)}, valid: true}
}

// Contains reports whether p lies inside the box grown by tol.
func (b BoundingBox) Contains(p v3.Vec, tol float64) bool {
	if !b.valid {
		return false
	}
	return b.Expand(tol).Box3.Contains(p)
}

// ContainsAll reports whether every point lies inside the box grown by tol.
func (b BoundingBox) ContainsAll(pts []v3.Vec, tol float64) bool {
	if len(pts) == 0 {
		return false
	}
	for _, p := range pts {
		if !b.Contains(p, tol) {
			return false
		}
	}
	return true
}

// Corners returns the eight corners of the box.
func (b BoundingBox) Corners() []v3.Vec {
	if !b.valid {
		return nil
	}
	lo, hi := b.Min, b.Max
	return []v3.Vec{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
	}
}
