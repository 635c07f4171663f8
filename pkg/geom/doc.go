// Package geom defines the curve, loop, plane and bounding-box primitives
// shared by the extraction pipeline. Points are sdfx v3 vectors and all
// lengths are in metres. Every comparison takes an explicit tolerance so
// callers can feed configured values through.
package geom
