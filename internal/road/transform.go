package road

import (
	"fmt"
	"math"

	"github.com/banshee-data/roadframe/internal/geom"
	"github.com/banshee-data/roadframe/internal/spline"
)

// degenerateTangentSq is the squared spline speed below which the tangent is
// taken from a short chord instead. PCHIP sets both slopes to zero at sharp
// corners of the waypoint polygon.
const degenerateTangentSq = 1e-18

// chordHalfSpan is the arc-length half width of that chord.
const chordHalfSpan = 1e-3

// Wrap maps an arc length onto [0, TrackLength).
func (m *Model) Wrap(s float64) float64 {
	s = math.Mod(s, m.trackLength)
	if s < 0 {
		s += m.trackLength
	}
	if s >= m.trackLength {
		s = 0
	}
	return s
}

// centerline evaluates both splines at s, which must already be wrapped.
func (m *Model) centerline(s float64) (x, y spline.Sample) {
	var hint int
	x = mustEvaluate(m.x, s, &hint)
	y = mustEvaluate(m.y, s, &hint) // x and y share knots
	return x, y
}

func mustEvaluate(c *spline.Cyclic, s float64, hint *int) spline.Sample {
	v, err := c.Evaluate(s, hint)
	if err != nil {
		panic(fmt.Sprintf("road: centerline evaluation failed: %v", err))
	}
	return v
}

// tangent returns the unit direction of travel at the wrapped arc length s.
func (m *Model) tangent(s float64, x, y spline.Sample) geom.Vec2 {
	t := geom.V2(x.Slope, y.Slope)
	if t.NormSq() > degenerateTangentSq {
		return t.Normalize()
	}
	ax, ay := m.centerline(m.Wrap(s - chordHalfSpan))
	bx, by := m.centerline(m.Wrap(s + chordHalfSpan))
	return geom.V2(bx.Value-ax.Value, by.Value-ay.Value).Normalize()
}

// FrameAt returns the matrix whose rows are the unit tangent and the right
// normal of the centerline at s. It maps world vectors into (s, d)
// components.
func (m *Model) FrameAt(s float64) geom.Mat2 {
	s = m.Wrap(s)
	x, y := m.centerline(s)
	t := m.tangent(s, x, y)
	return geom.Rows(t, t.PerpCW())
}

// InverseFrameAt maps (s, d) vector components back into the world frame.
func (m *Model) InverseFrameAt(s float64) geom.Mat2 {
	return mustInverse(m.FrameAt(s))
}

func mustInverse(f geom.Mat2) geom.Mat2 {
	inv, ok := f.Inverse()
	if !ok {
		panic("road: singular frenet frame")
	}
	return inv
}

// XY returns the world position at arc length s and lateral offset d.
func (m *Model) XY(s, d float64) geom.Vec2 {
	s = m.Wrap(s)
	x, y := m.centerline(s)
	n := m.tangent(s, x, y).PerpCW()
	return geom.V2(x.Value, y.Value).Add(n.Scale(d))
}

// Heading returns the direction of travel at s in radians.
func (m *Model) Heading(s float64) float64 {
	s = m.Wrap(s)
	x, y := m.centerline(s)
	return m.tangent(s, x, y).Angle()
}

// Curvature returns the signed curvature of the centerline at s; positive
// values turn left.
func (m *Model) Curvature(s float64) float64 {
	x, y := m.centerline(m.Wrap(s))
	speedSq := x.Slope*x.Slope + y.Slope*y.Slope
	if speedSq <= degenerateTangentSq {
		return 0
	}
	return (x.Slope*y.Curvature - y.Slope*x.Curvature) / math.Pow(speedSq, 1.5)
}

// ToCartesian converts a Frenet state to the world frame. Time passes
// through unchanged.
func (m *Model) ToCartesian(f FrenetState) CartesianState {
	s := m.Wrap(f.S)
	x, y := m.centerline(s)
	t := m.tangent(s, x, y)
	n := t.PerpCW()
	pos := geom.V2(x.Value, y.Value).Add(n.Scale(f.D))

	inv := mustInverse(geom.Rows(t, n))
	vel := inv.MulVec(geom.V2(f.VS, f.VD))
	acc := inv.MulVec(geom.V2(f.AS, f.AD))

	return CartesianState{
		T: f.T,
		X: pos.X, Y: pos.Y,
		VX: vel.X, VY: vel.Y,
		AX: acc.X, AY: acc.Y,
	}
}

// ToFrenet converts a world state to the Frenet frame.
//
// The frame is built from the chord between the next waypoint and its
// predecessor rather than from the curved centerline, so the result is a
// local linear approximation: exact on straight segments, with an error that
// grows with curvature and with distance from the chord's midpoint. The
// returned s is wrapped onto [0, TrackLength).
func (m *Model) ToFrenet(c CartesianState) FrenetState {
	n := len(m.waypoints)
	next := m.NextWaypoint(c.X, c.Y, c.Heading())
	prev := (next - 1 + n) % n
	wp0, wp1 := m.waypoints[prev], m.waypoints[next]

	t := wp1.Position.Sub(wp0.Position).Normalize()
	frame := geom.Rows(t, t.PerpCW())

	pos := frame.MulVec(c.Position().Sub(wp0.Position))
	vel := frame.MulVec(c.Velocity())
	acc := frame.MulVec(c.Acceleration())

	return FrenetState{
		T: c.T,
		S: m.Wrap(pos.X + wp0.S), D: pos.Y,
		VS: vel.X, VD: vel.Y,
		AS: acc.X, AD: acc.Y,
	}
}

// CenterlinePoint is one sample of the road centerline.
type CenterlinePoint struct {
	S         float64
	Position  geom.Vec2
	Heading   float64
	Curvature float64
}

// Centerline samples the loop every step metres starting at s=0. It returns
// nil for a non-positive step.
func (m *Model) Centerline(step float64) []CenterlinePoint {
	if !(step > 0) {
		return nil
	}
	count := int(math.Ceil(m.trackLength / step))
	out := make([]CenterlinePoint, 0, count)
	var hint int
	for i := 0; i < count; i++ {
		s := float64(i) * step
		if s >= m.trackLength {
			break
		}
		x := mustEvaluate(m.x, s, &hint)
		y := mustEvaluate(m.y, s, &hint)
		out = append(out, CenterlinePoint{
			S:         s,
			Position:  geom.V2(x.Value, y.Value),
			Heading:   m.tangent(s, x, y).Angle(),
			Curvature: m.Curvature(s),
		})
	}
	return out
}
