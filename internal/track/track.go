// Package track maintains the kinematic state of one tracked vehicle: its
// current state, the trajectory that state implies, and the oriented
// bounding box used for collision checks.
//
// A Track keeps state and trajectory consistent: immediately after any
// mutation, State() equals the trajectory evaluated at its time origin.
// Tracks are not safe for concurrent mutation; each has one writer per
// update cycle.
package track

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/banshee-data/roadframe/internal/geom"
	"github.com/banshee-data/roadframe/internal/monitoring"
	"github.com/banshee-data/roadframe/internal/timeutil"
	"github.com/banshee-data/roadframe/internal/trajectory"
)

var logf = monitoring.Component("track")

// Measurement is a raw observation [x, y, vx, vy]. The axes may be Cartesian
// or Frenet; a track never mixes them.
type Measurement struct {
	X, Y   float64
	VX, VY float64
}

// MeasurementFromSlice parses the [x, y, vx, vy] layout.
func MeasurementFromSlice(v []float64) (Measurement, error) {
	if len(v) != 4 {
		return Measurement{}, fmt.Errorf("measurement needs 4 values, got %d", len(v))
	}
	return Measurement{X: v[0], Y: v[1], VX: v[2], VY: v[3]}, nil
}

// Option configures a Track.
type Option func(*Track)

// WithDiagnostics delivers JumpEvents on ch. Sends never block; events that
// do not fit are counted in DroppedEvents.
func WithDiagnostics(ch chan<- JumpEvent) Option {
	return func(t *Track) { t.diag = ch }
}

// WithClock sets the clock used to timestamp events.
func WithClock(c timeutil.Clock) Option {
	return func(t *Track) { t.clock = c }
}

// Track is a single tracked vehicle.
type Track struct {
	id            int
	cfg           Config
	length, width float64

	state      trajectory.State
	traj       trajectory.Pair
	t0         float64 // time origin of state and traj
	lastUpdate float64 // time of the last measurement

	diag    chan<- JumpEvent
	clock   timeutil.Clock
	jumps   int
	dropped int
}

// New creates a track at rest at the origin. The first measurement always
// initialises it.
func New(id int, cfg Config, opts ...Option) *Track {
	t := &Track{
		id:         id,
		cfg:        cfg,
		length:     cfg.Length,
		width:      cfg.Width,
		lastUpdate: math.Inf(-1),
		clock:      timeutil.RealClock{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.SetState(trajectory.State{})
	return t
}

func (t *Track) ID() int                       { return t.id }
func (t *Track) State() trajectory.State       { return t.state }
func (t *Track) Trajectory() trajectory.Pair   { return t.traj }
func (t *Track) T0() float64                   { return t.t0 }
func (t *Track) LastUpdate() float64           { return t.lastUpdate }
func (t *Track) Length() float64               { return t.length }
func (t *Track) Width() float64                { return t.width }
func (t *Track) Size() geom.Vec2               { return geom.V2(t.length, t.width) }
func (t *Track) SetSize(length, width float64) { t.length, t.width = length, width }
func (t *Track) Jumps() int                    { return t.jumps }
func (t *Track) DroppedEvents() int            { return t.dropped }

// SetState replaces the state and derives the trajectory from it.
func (t *Track) SetState(s trajectory.State) {
	t.state = s
	t.traj = s.Trajectory(t.cfg.StateKnotSecs)
}

// SetTrajectory replaces the trajectory and derives the state from it.
func (t *Track) SetTrajectory(x, y trajectory.Evaluator) {
	t.traj = trajectory.Pair{X: x, Y: y}
	t.state = t.traj.StateAt(0)
}

// AdvanceTo moves the time origin to t1 without changing where the track
// is at any time: the trajectory is rebased and the state re-derived.
func (t *Track) AdvanceTo(t1 float64) {
	p := t.traj.Rebase(t1 - t.t0)
	t.SetTrajectory(p.X, p.Y)
	t.t0 = t1
}

// NewMeasurement folds an observation taken at time t1 into the track.
//
// When more than StaleAfterSecs have passed since the last measurement, or
// time did not advance, the track is re-initialised from m with zero
// acceleration. Otherwise acceleration is the finite difference of the
// velocities. A position change above MaxPositionJumpMeters on either axis
// produces a JumpEvent, which is returned and published, but the
// measurement is applied regardless.
func (t *Track) NewMeasurement(m Measurement, t1 float64) *JumpEvent {
	dt := t1 - t.lastUpdate
	prev := t.state

	var ev *JumpEvent
	next := trajectory.NewState(
		trajectory.Kinematics{Position: m.X, Velocity: m.VX},
		trajectory.Kinematics{Position: m.Y, Velocity: m.VY},
	)
	switch {
	case dt > t.cfg.StaleAfterSecs:
		// stale, no dynamics carried over
	case !(dt > 0):
		logf("track %d: measurement at t=%.3f does not advance time (last %.3f), reinitialising", t.id, t1, t.lastUpdate)
	default:
		next.X.Acceleration = (m.VX - prev.X.Velocity) / dt
		next.Y.Acceleration = (m.VY - prev.Y.Velocity) / dt
		if math.Abs(m.X-prev.X.Position) > t.cfg.MaxPositionJumpMeters ||
			math.Abs(m.Y-prev.Y.Position) > t.cfg.MaxPositionJumpMeters {
			ev = t.jumped(prev.Position(), next.Position(), t1)
		}
	}

	t.SetState(next)
	t.t0 = 0
	t.lastUpdate = t1
	return ev
}

func (t *Track) jumped(from, to geom.Vec2, t1 float64) *JumpEvent {
	ev := JumpEvent{
		ID:         uuid.New(),
		TrackID:    t.id,
		Time:       t1,
		ObservedAt: t.clock.Now(),
		From:       from,
		To:         to,
		Distance:   to.Sub(from).Norm(),
	}
	t.jumps++
	logf("track %d jumped %.2fm at t=%.3f (%.2f,%.2f) -> (%.2f,%.2f)",
		t.id, ev.Distance, t1, from.X, from.Y, to.X, to.Y)

	if t.diag != nil {
		select {
		case t.diag <- ev:
		default:
			t.dropped++
		}
	}
	return &ev
}

// StateAt returns the state at absolute time tm.
func (t *Track) StateAt(tm float64) trajectory.State {
	return t.traj.StateAt(tm - t.t0)
}

// TrajectoryAt returns the trajectory rebased to absolute time tm.
func (t *Track) TrajectoryAt(tm float64) trajectory.Pair {
	return t.traj.Rebase(tm - t.t0)
}

// Location returns the position at absolute time tm. Past the trajectory
// knot the motion continues at constant velocity, so with a zero
// StateKnotSecs the estimated acceleration does not move the track.
func (t *Track) Location(tm float64) geom.Vec2 {
	return t.traj.Location(tm - t.t0)
}

// Locations evaluates Location at each time in ts.
func (t *Track) Locations(ts []float64) []geom.Vec2 {
	out := make([]geom.Vec2, len(ts))
	for i, tm := range ts {
		out[i] = t.Location(tm)
	}
	return out
}

// Orientation returns the heading at absolute time tm. Times at or past the
// trajectory knot minus OrientationEpsilonSecs are clamped to that point, so
// the heading of a vehicle that has come to rest is the heading it stopped
// with. With a zero StateKnotSecs the clamp falls before the time origin and
// a fresh state reports the heading of v - OrientationEpsilonSecs*a.
func (t *Track) Orientation(tm float64) float64 {
	rel := tm - t.t0
	if limit := t.traj.Knot() - t.cfg.OrientationEpsilonSecs; rel >= limit {
		rel = limit
	}
	s := t.traj.StateAt(rel)
	return math.Atan2(s.Y.Velocity, s.X.Velocity)
}

// BoundingBox returns the footprint at absolute time tm, grown by margin
// (length, width).
func (t *Track) BoundingBox(tm float64, margin geom.Vec2) geom.Rectangle {
	return t.BoundingBoxAt(tm, t.Location(tm), margin)
}

// BoundingBoxAt is BoundingBox for callers that already evaluated
// Location(tm).
func (t *Track) BoundingBoxAt(tm float64, loc geom.Vec2, margin geom.Vec2) geom.Rectangle {
	return geom.NewRectangle(t.length+margin.X, t.width+margin.Y, t.Orientation(tm), loc.X, loc.Y)
}
