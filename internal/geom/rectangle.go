package geom

import "math"

// overlapEpsilon absorbs rounding when two rectangles only touch along an edge.
// Touching rectangles count as overlapping.
const overlapEpsilon = 1e-9

// Rectangle is an oriented bounding box in the plane, used as a vehicle's
// collision shape.
//
//   - CenterX/Y: centre position (metres, world frame)
//   - Length: extent along the heading direction (metres)
//   - Width: extent perpendicular to the heading (metres)
//   - HeadingRad: rotation of the length axis from +X (radians)
type Rectangle struct {
	CenterX    float64
	CenterY    float64
	Length     float64
	Width      float64
	HeadingRad float64
}

// NewRectangle builds a rectangle in the argument order used by the collision
// checker: size first, then orientation, then centre.
func NewRectangle(length, width, orientation, centerX, centerY float64) Rectangle {
	return Rectangle{
		CenterX:    centerX,
		CenterY:    centerY,
		Length:     length,
		Width:      width,
		HeadingRad: orientation,
	}
}

// Center returns the centre of r.
func (r Rectangle) Center() Vec2 {
	return Vec2{X: r.CenterX, Y: r.CenterY}
}

// Size returns (Length, Width).
func (r Rectangle) Size() Vec2 {
	return Vec2{X: r.Length, Y: r.Width}
}

// Axes returns the unit vectors along the length and width directions.
func (r Rectangle) Axes() (along, across Vec2) {
	sin, cos := math.Sincos(r.HeadingRad)
	along = Vec2{X: cos, Y: sin}
	return along, along.Perp()
}

// Corners returns the four corners counter-clockwise, starting at the
// front-right corner.
func (r Rectangle) Corners() [4]Vec2 {
	along, across := r.Axes()
	c := r.Center()
	hl := along.Scale(r.Length / 2)
	hw := across.Scale(r.Width / 2)
	return [4]Vec2{
		c.Add(hl).Sub(hw),
		c.Add(hl).Add(hw),
		c.Sub(hl).Add(hw),
		c.Sub(hl).Sub(hw),
	}
}

// Contains reports whether p lies inside r or on its boundary.
func (r Rectangle) Contains(p Vec2) bool {
	along, across := r.Axes()
	rel := p.Sub(r.Center())
	return math.Abs(rel.Dot(along)) <= r.Length/2+overlapEpsilon &&
		math.Abs(rel.Dot(across)) <= r.Width/2+overlapEpsilon
}

// Overlaps reports whether r and o intersect, using the separating axis
// theorem over the two edge normals of each rectangle.
func (r Rectangle) Overlaps(o Rectangle) bool {
	ra, rb := r.Axes()
	oa, ob := o.Axes()
	rc := r.Corners()
	oc := o.Corners()
	for _, axis := range [4]Vec2{ra, rb, oa, ob} {
		rMin, rMax := project(rc, axis)
		oMin, oMax := project(oc, axis)
		if rMax < oMin-overlapEpsilon || oMax < rMin-overlapEpsilon {
			return false
		}
	}
	return true
}

func project(corners [4]Vec2, axis Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		p := c.Dot(axis)
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	return lo, hi
}
