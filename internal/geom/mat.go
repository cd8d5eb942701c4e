package geom

import "math"

// singularDetThreshold is the smallest |det| for which Inverse reports success.
const singularDetThreshold = 1e-12

// Mat2 is a row-major 2x2 matrix:
//
//	[A B]
//	[C D]
type Mat2 struct {
	A, B, C, D float64
}

// Identity returns the 2x2 identity matrix.
func Identity() Mat2 {
	return Mat2{A: 1, D: 1}
}

// Rows builds the matrix whose rows are r0 and r1. The road frame
// [tangent; normal] is built this way.
func Rows(r0, r1 Vec2) Mat2 {
	return Mat2{A: r0.X, B: r0.Y, C: r1.X, D: r1.Y}
}

// Rotation returns the counter-clockwise rotation by theta radians.
func Rotation(theta float64) Mat2 {
	sin, cos := math.Sincos(theta)
	return Mat2{A: cos, B: -sin, C: sin, D: cos}
}

// Row returns row i (0 or 1).
func (m Mat2) Row(i int) Vec2 {
	if i == 0 {
		return Vec2{X: m.A, Y: m.B}
	}
	return Vec2{X: m.C, Y: m.D}
}

// MulVec returns m·v.
func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{X: m.A*v.X + m.B*v.Y, Y: m.C*v.X + m.D*v.Y}
}

// Mul returns the product m·n.
func (m Mat2) Mul(n Mat2) Mat2 {
	return Mat2{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
	}
}

func (m Mat2) Det() float64 {
	return m.A*m.D - m.B*m.C
}

func (m Mat2) Transpose() Mat2 {
	return Mat2{A: m.A, B: m.C, C: m.B, D: m.D}
}

// Inverse returns the inverse of m using the closed form for 2x2 matrices.
// ok is false when m is singular (|det| below 1e-12); the returned matrix is
// then the zero matrix.
func (m Mat2) Inverse() (inv Mat2, ok bool) {
	det := m.Det()
	if math.Abs(det) < singularDetThreshold {
		return Mat2{}, false
	}
	return Mat2{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
	}, true
}
