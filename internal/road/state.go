package road

import (
	"fmt"

	"github.com/banshee-data/roadframe/internal/geom"
)

// StateLen is the number of elements in the flat state layouts.
const StateLen = 7

// FrenetState is a road-relative kinematic state. Its flat layout is
// [t, s, d, v_s, v_d, a_s, a_d].
type FrenetState struct {
	T      float64
	S, D   float64
	VS, VD float64
	AS, AD float64
}

// CartesianState is a world-frame kinematic state. Its flat layout is
// [t, x, y, v_x, v_y, a_x, a_y].
type CartesianState struct {
	T      float64
	X, Y   float64
	VX, VY float64
	AX, AY float64
}

func (f FrenetState) Array() [StateLen]float64 {
	return [StateLen]float64{f.T, f.S, f.D, f.VS, f.VD, f.AS, f.AD}
}

// FrenetFromArray is the inverse of FrenetState.Array.
func FrenetFromArray(a [StateLen]float64) FrenetState {
	return FrenetState{T: a[0], S: a[1], D: a[2], VS: a[3], VD: a[4], AS: a[5], AD: a[6]}
}

// FrenetFromSlice is FrenetFromArray for slices; it fails unless len(a) == 7.
func FrenetFromSlice(a []float64) (FrenetState, error) {
	if len(a) != StateLen {
		return FrenetState{}, fmt.Errorf("frenet state needs %d values, got %d", StateLen, len(a))
	}
	return FrenetFromArray([StateLen]float64(a)), nil
}

func (c CartesianState) Array() [StateLen]float64 {
	return [StateLen]float64{c.T, c.X, c.Y, c.VX, c.VY, c.AX, c.AY}
}

// CartesianFromArray is the inverse of CartesianState.Array.
func CartesianFromArray(a [StateLen]float64) CartesianState {
	return CartesianState{T: a[0], X: a[1], Y: a[2], VX: a[3], VY: a[4], AX: a[5], AY: a[6]}
}

// CartesianFromSlice is CartesianFromArray for slices; it fails unless len(a) == 7.
func CartesianFromSlice(a []float64) (CartesianState, error) {
	if len(a) != StateLen {
		return CartesianState{}, fmt.Errorf("cartesian state needs %d values, got %d", StateLen, len(a))
	}
	return CartesianFromArray([StateLen]float64(a)), nil
}

func (c CartesianState) Position() geom.Vec2     { return geom.V2(c.X, c.Y) }
func (c CartesianState) Velocity() geom.Vec2     { return geom.V2(c.VX, c.VY) }
func (c CartesianState) Acceleration() geom.Vec2 { return geom.V2(c.AX, c.AY) }

// Heading is the direction of the velocity vector.
func (c CartesianState) Heading() float64 {
	return c.Velocity().Angle()
}
