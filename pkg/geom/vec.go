package geom

import (
	"errors"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// DefaultTolerance is the linear tolerance (1 mm) below which two points
	// or two boundary curves are treated as identical.
	DefaultTolerance = 1e-3

	// AngularTolerance bounds 1-|cos θ| when two directions are compared.
	AngularTolerance = 1e-6

	// pointEpsilon merges tessellation points that are numerically equal.
	pointEpsilon = 1e-9
)

// ErrDegenerate is returned when geometry has no usable extent, such as a
// loop whose points are collinear.
var ErrDegenerate = errors.New("geom: degenerate geometry")

// Up is the world vertical.
var Up = v3.Vec{X: 0, Y: 0, Z: 1}

// Distance returns the euclidean distance between a and b.
func Distance(a, b v3.Vec) float64 {
	return a.Sub(b).Length()
}

// Near reports whether a and b are within tol of each other.
func Near(a, b v3.Vec, tol float64) bool {
	return Distance(a, b) <= tol
}

// Lerp interpolates between a and b.
func Lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Unit returns v scaled to length one, or false when v is (numerically) zero.
func Unit(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < pointEpsilon {
		return v3.Vec{}, false
	}
	return v.MulScalar(1 / l), true
}

// Parallel reports whether unit vectors a and b point along the same line,
// in either direction.
func Parallel(a, b v3.Vec, angTol float64) bool {
	return 1-math.Abs(a.Dot(b)) <= angTol
}

// SameDirection reports whether unit vectors a and b point the same way.
func SameDirection(a, b v3.Vec, angTol float64) bool {
	return 1-a.Dot(b) <= angTol
}

// dedupe removes consecutive points closer than tol, including a trailing
// point equal to the first.
func dedupe(pts []v3.Vec, tol float64) []v3.Vec {
	out := make([]v3.Vec, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && Near(out[len(out)-1], p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && Near(out[0], out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	return out
}

// DedupePoints removes consecutive duplicates (within tol) and a closing
// point that repeats the first one.
func DedupePoints(pts []v3.Vec, tol float64) []v3.Vec {
	return dedupe(pts, tol)
}
