// Package geom holds the planar primitives shared by the road model and the
// vehicle tracks: a value-type 2-D vector, a 2x2 matrix and the oriented
// rectangle used as a vehicle's collision shape.
//
// Everything here is exactly two-dimensional. Values are passed by copy and
// never allocate, so they are safe to share between goroutines.
package geom
