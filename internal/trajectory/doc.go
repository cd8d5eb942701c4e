// Package trajectory defines the one-dimensional time evaluators that
// describe how a vehicle moves along one axis, and the two-axis kinematic
// State built from them.
//
// An Evaluator is valid up to its knot; beyond the knot it continues on a
// terminal segment with zero acceleration. Planners produce evaluators with
// a knot at the end of the planned horizon; states converted to trajectories
// use a short (often zero) knot so that a noisy acceleration estimate is not
// extrapolated.
package trajectory
