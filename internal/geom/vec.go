package geom

import "math"

// Vec2 is a 2-D vector in a metric frame (world or Frenet).
type Vec2 struct {
	X, Y float64
}

// V2 is shorthand for Vec2{X: x, Y: y}.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the inner product of v and w.
func (v Vec2) Dot(w Vec2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the z component of the 3-D cross product of v and w.
// Positive when w lies counter-clockwise of v.
func (v Vec2) Cross(w Vec2) float64 {
	return v.X*w.Y - v.Y*w.X
}

// Norm returns the Euclidean length of v.
func (v Vec2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// NormSq returns the squared length of v. Use it for distance comparisons.
func (v Vec2) NormSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector along v. The zero vector is returned
// unchanged.
func (v Vec2) Normalize() Vec2 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return Vec2{X: v.X / n, Y: v.Y / n}
}

// Rotate returns v rotated counter-clockwise by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	sin, cos := math.Sincos(theta)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Perp returns v rotated by +90°: (-y, x).
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// PerpCW returns v rotated by -90°: (y, -x).
func (v Vec2) PerpCW() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

// Angle returns atan2(y, x) in [-π, π].
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// DistanceSq returns the squared distance between v and w.
func (v Vec2) DistanceSq(w Vec2) float64 {
	return v.Sub(w).NormSq()
}
