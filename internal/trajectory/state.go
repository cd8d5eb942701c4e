package trajectory

import (
	"math"

	"github.com/banshee-data/roadframe/internal/geom"
)

// State is the two-axis kinematic state of a vehicle. The axes are either
// Cartesian (x, y) or Frenet (s, d); a State never mixes the two.
type State struct {
	X Kinematics
	Y Kinematics
}

// NewState builds a State from per-axis triples.
func NewState(x, y Kinematics) State {
	return State{X: x, Y: y}
}

// StateFromEvaluators samples both evaluators at time t.
func StateFromEvaluators(x, y Evaluator, t float64) State {
	return State{X: x.StateAt(t), Y: y.StateAt(t)}
}

// Trajectory converts the state into a constant-acceleration trajectory pair
// valid until knot. The pair evaluated at 0 reproduces the state exactly.
func (s State) Trajectory(knot float64) Pair {
	return Pair{
		X: FromKinematics(s.X, knot),
		Y: FromKinematics(s.Y, knot),
	}
}

func (s State) Position() geom.Vec2 {
	return geom.V2(s.X.Position, s.Y.Position)
}

func (s State) Velocity() geom.Vec2 {
	return geom.V2(s.X.Velocity, s.Y.Velocity)
}

func (s State) Acceleration() geom.Vec2 {
	return geom.V2(s.X.Acceleration, s.Y.Acceleration)
}

// Speed returns the magnitude of the velocity.
func (s State) Speed() float64 {
	return math.Hypot(s.X.Velocity, s.Y.Velocity)
}

// Pair is a trajectory in the plane: one evaluator per axis sharing a time
// origin.
type Pair struct {
	X Evaluator
	Y Evaluator
}

// StateAt samples both axes at time t.
func (p Pair) StateAt(t float64) State {
	return StateFromEvaluators(p.X, p.Y, t)
}

// Location returns the position at time t.
func (p Pair) Location(t float64) geom.Vec2 {
	return geom.V2(p.X.Value(t), p.Y.Value(t))
}

// Knot returns the later of the two axis knots.
func (p Pair) Knot() float64 {
	return math.Max(p.X.Knot(), p.Y.Knot())
}

// Rebase shifts both axes to the time origin t.
func (p Pair) Rebase(t float64) Pair {
	return Pair{X: p.X.Rebase(t), Y: p.Y.Rebase(t)}
}

// Valid reports whether both axes are set.
func (p Pair) Valid() bool {
	return p.X != nil && p.Y != nil
}
