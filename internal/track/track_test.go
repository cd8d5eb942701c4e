package track

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roadframe/internal/config"
	"github.com/banshee-data/roadframe/internal/geom"
	"github.com/banshee-data/roadframe/internal/monitoring"
	"github.com/banshee-data/roadframe/internal/timeutil"
	"github.com/banshee-data/roadframe/internal/trajectory"
)

// assertConsistent checks that the state equals the trajectory at its origin.
func assertConsistent(t *testing.T, tr *Track) {
	t.Helper()
	assert.Equal(t, tr.State(), tr.Trajectory().StateAt(0), "state and trajectory diverged")
}

func TestDefaultConfigMatchesTuningFile(t *testing.T) {
	t.Parallel()
	want := ConfigFromTuning(config.MustLoadDefaultConfig())
	if diff := cmp.Diff(want, DefaultConfig()); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-file +builtin):\n%s", diff)
	}
	assert.Equal(t, 0.5, want.StaleAfterSecs)
	assert.Equal(t, 5.0, want.MaxPositionJumpMeters)
	assert.Equal(t, 0.01, want.OrientationEpsilonSecs)
}

func TestNew(t *testing.T) {
	t.Parallel()
	tr := New(7, DefaultConfig())

	assert.Equal(t, 7, tr.ID())
	assert.Equal(t, geom.V2(4.8, 1.8), tr.Size())
	assert.Equal(t, trajectory.State{}, tr.State())
	assert.True(t, math.IsInf(tr.LastUpdate(), -1))
	assert.Equal(t, 0.0, tr.T0())
	assert.True(t, tr.Trajectory().Valid())
	assertConsistent(t, tr)
}

func TestNewMeasurementFirstInitialises(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())

	// Far from the origin: the first measurement is never a jump.
	ev := tr.NewMeasurement(Measurement{X: 1200, Y: -3, VX: 22, VY: 0.4}, 0.02)
	assert.Nil(t, ev)

	want := trajectory.NewState(
		trajectory.Kinematics{Position: 1200, Velocity: 22},
		trajectory.Kinematics{Position: -3, Velocity: 0.4},
	)
	assert.Equal(t, want, tr.State())
	assert.Equal(t, 0.02, tr.LastUpdate())
	assert.Equal(t, 0, tr.Jumps())
	assertConsistent(t, tr)
}

func TestNewMeasurementFiniteDifference(t *testing.T) {
	t.Parallel()
	// Runtime float64 values, so the expected quotients round the same way
	// as the track's arithmetic.
	t0, t1 := 1.0, 1.02
	vx0, vx1 := 20.0, 20.1
	vy0, vy1 := 0.0, -0.05

	tr := New(1, DefaultConfig())
	tr.NewMeasurement(Measurement{X: 100, Y: 6, VX: vx0, VY: vy0}, t0)
	tr.NewMeasurement(Measurement{X: 100.4, Y: 6.01, VX: vx1, VY: vy1}, t1)

	st := tr.State()
	dt := t1 - t0
	assert.Equal(t, (vx1-vx0)/dt, st.X.Acceleration)
	assert.Equal(t, (vy1-vy0)/dt, st.Y.Acceleration)
	assert.InDelta(t, 5, st.X.Acceleration, 1e-9)
	assert.InDelta(t, -2.5, st.Y.Acceleration, 1e-9)
	assert.Equal(t, 100.4, st.X.Position)
	assert.Equal(t, 20.1, st.X.Velocity)
	assertConsistent(t, tr)
}

func TestNewMeasurementStaleness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		dt        float64
		wantReset bool
	}{
		{"just inside threshold", 0.5, false},
		{"just past threshold", 0.5000001, true},
		{"long gap", 30, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := New(1, DefaultConfig())
			tr.NewMeasurement(Measurement{X: 0, VX: 10}, 1)
			tr.NewMeasurement(Measurement{X: 2.5, VX: 11, VY: 1}, 1.25)
			require.NotZero(t, tr.State().X.Acceleration)

			tr.NewMeasurement(Measurement{X: 4, VX: 12, VY: 2}, 1.25+tt.dt)
			st := tr.State()
			if tt.wantReset {
				assert.Equal(t, 0.0, st.X.Acceleration)
				assert.Equal(t, 0.0, st.Y.Acceleration)
			} else {
				assert.InDelta(t, (12-11)/tt.dt, st.X.Acceleration, 1e-9)
			}
			assert.Equal(t, 12.0, st.X.Velocity)
		})
	}
}

func TestNewMeasurementNonAdvancingTimeReinitialises(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	tr.NewMeasurement(Measurement{X: 0, VX: 10}, 2)
	tr.NewMeasurement(Measurement{X: 0.1, VX: 30}, 2)

	assert.Equal(t, 0.0, tr.State().X.Acceleration)
	assert.False(t, math.IsInf(tr.State().X.Acceleration, 0))

	tr.NewMeasurement(Measurement{X: 0.2, VX: 30}, 1.9)
	assert.Equal(t, 0.0, tr.State().X.Acceleration)
	assert.Equal(t, 1.9, tr.LastUpdate())
}

func TestNewMeasurementJumpIsAdvisory(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(start)
	diag := make(chan JumpEvent, 4)

	var rec monitoring.Recorder
	original := monitoring.Logf
	monitoring.SetLogger(rec.Logf)
	defer func() { monitoring.Logf = original }()

	tr := New(42, DefaultConfig(), WithDiagnostics(diag), WithClock(clock))
	tr.NewMeasurement(Measurement{X: 10, Y: 2, VX: 20}, 0)
	ev := tr.NewMeasurement(Measurement{X: 16, Y: 2, VX: 20}, 0.1)

	require.NotNil(t, ev)
	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, 42, ev.TrackID)
	assert.Equal(t, 0.1, ev.Time)
	assert.Equal(t, start, ev.ObservedAt)
	assert.Equal(t, geom.V2(10, 2), ev.From)
	assert.Equal(t, geom.V2(16, 2), ev.To)
	assert.InDelta(t, 6, ev.Distance, 1e-12)
	assert.Equal(t, geom.V2(6, 0), ev.Delta())

	// The measurement is applied regardless.
	assert.Equal(t, 16.0, tr.State().X.Position)
	assert.Equal(t, 1, tr.Jumps())

	select {
	case got := <-diag:
		assert.Equal(t, *ev, got)
	default:
		t.Fatal("expected a jump event on the diagnostics channel")
	}

	lines := rec.Lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "[track] track 42 jumped 6.00m"), lines[0])
}

func TestJumpThresholdPerAxis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dx, dy   float64
		wantJump bool
	}{
		{"within both axes", 4.9, 4.9, false},
		{"diagonal over 5 but axes within", 4, 4, false},
		{"exactly 5", 5, 0, false},
		{"x over", 5.01, 0, true},
		{"y over backwards", 0, -7, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := New(1, DefaultConfig())
			tr.NewMeasurement(Measurement{X: 100, Y: 100}, 0)
			ev := tr.NewMeasurement(Measurement{X: 100 + tt.dx, Y: 100 + tt.dy}, 0.1)
			assert.Equal(t, tt.wantJump, ev != nil)
			assert.Equal(t, 100+tt.dx, tr.State().X.Position)
		})
	}
}

func TestStaleMeasurementNeverJumps(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	tr.NewMeasurement(Measurement{X: 0}, 0)
	assert.Nil(t, tr.NewMeasurement(Measurement{X: 500}, 10))
	assert.Equal(t, 0, tr.Jumps())
}

func TestDiagnosticsNeverBlock(t *testing.T) {
	t.Parallel()
	diag := make(chan JumpEvent) // nobody reads
	tr := New(1, DefaultConfig(), WithDiagnostics(diag))

	tr.NewMeasurement(Measurement{X: 0}, 0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		tr.NewMeasurement(Measurement{X: 50}, 0.1)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("NewMeasurement blocked on the diagnostics channel")
	}
	assert.Equal(t, 1, tr.Jumps())
	assert.Equal(t, 1, tr.DroppedEvents())
}

func TestSetTrajectoryDerivesState(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	x := trajectory.NewPolynomial([]float64{1, 2, 3, 4}, 2)
	y := trajectory.NewPolynomial([]float64{-5, 0.5}, 3)
	tr.SetTrajectory(x, y)

	want := trajectory.NewState(
		trajectory.Kinematics{Position: 1, Velocity: 2, Acceleration: 6},
		trajectory.Kinematics{Position: -5, Velocity: 0.5},
	)
	assert.Equal(t, want, tr.State())
	assertConsistent(t, tr)
	assert.Equal(t, 3.0, tr.Trajectory().Knot())
}

func TestSetStateDerivesTrajectory(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.StateKnotSecs = 1.5
	tr := New(1, cfg)

	s := trajectory.NewState(
		trajectory.Kinematics{Position: 3, Velocity: 4, Acceleration: -2},
		trajectory.Kinematics{Position: 1, Velocity: 0, Acceleration: 0.5},
	)
	tr.SetState(s)
	assert.Equal(t, s, tr.State())
	assertConsistent(t, tr)
	assert.Equal(t, 1.5, tr.Trajectory().Knot())

	// Constant acceleration until the knot.
	got := tr.StateAt(1)
	assert.InDelta(t, 3+4-1, got.X.Position, 1e-12)
	assert.InDelta(t, 4-2, got.X.Velocity, 1e-12)
}

func TestQueriesHaveNoSideEffects(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	tr.SetTrajectory(
		trajectory.NewPolynomial([]float64{0, 10, 1}, 4),
		trajectory.NewPolynomial([]float64{2, 0.5}, 4),
	)
	before := tr.State()
	beforeTraj := tr.Trajectory()

	_ = tr.StateAt(3)
	_ = tr.TrajectoryAt(2)
	_ = tr.Location(1)
	_ = tr.Orientation(9)
	_ = tr.BoundingBox(2, geom.V2(1, 1))

	assert.Equal(t, before, tr.State())
	assert.Equal(t, beforeTraj, tr.Trajectory())
}

func TestAdvanceToKeepsMotion(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	tr.SetTrajectory(
		trajectory.NewPolynomial([]float64{0, 10, 1}, 4),
		trajectory.NewPolynomial([]float64{2, 0.5, -0.1}, 4),
	)
	want := tr.Locations([]float64{1.5, 2, 3.5, 6})
	wantState := tr.StateAt(1.5)

	tr.AdvanceTo(1.5)
	assert.Equal(t, 1.5, tr.T0())
	assertConsistent(t, tr)

	got := tr.Locations([]float64{1.5, 2, 3.5, 6})
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Locations after AdvanceTo (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantState, tr.State(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("State after AdvanceTo (-want +got):\n%s", diff)
	}

	// TrajectoryAt is relative to the new origin.
	rel := tr.TrajectoryAt(2)
	assert.InDelta(t, tr.Location(2).X, rel.Location(0).X, 1e-9)

	// A measurement resets the origin.
	tr.NewMeasurement(Measurement{X: 20, VX: 11}, 3)
	assert.Equal(t, 0.0, tr.T0())
}

func TestOrientation(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	tr.SetTrajectory(
		trajectory.NewPolynomial([]float64{0, 10}, 5),
		trajectory.NewPolynomial([]float64{0, 0, 1}, 5),
	)

	assert.InDelta(t, math.Atan2(2, 10), tr.Orientation(1), 1e-12)
	// At and past the knot the heading is sampled at T - eps.
	clamped := math.Atan2(2*(5-0.01), 10)
	assert.InDelta(t, clamped, tr.Orientation(5), 1e-12)
	assert.InDelta(t, clamped, tr.Orientation(60), 1e-12)
}

func TestOrientationOfStoppedVehicle(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	// Both axes decelerate to rest exactly at the knot, heading north-east.
	stop := trajectory.NewPolynomial([]float64{0, 10, -1}, 5)
	tr.SetTrajectory(stop, stop)

	assert.InDelta(t, math.Pi/4, tr.Orientation(5), 1e-12)
	assert.InDelta(t, math.Pi/4, tr.Orientation(100), 1e-12)
	assert.Equal(t, 0.0, tr.Trajectory().StateAt(5).X.Velocity)
}

func TestZeroKnotState(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.Equal(t, 0.0, cfg.StateKnotSecs)
	tr := New(1, cfg)

	vx, vy := 10.0, 0.0
	ax, ay := 0.0, 20.0
	tr.SetState(trajectory.NewState(
		trajectory.Kinematics{Position: 0, Velocity: vx, Acceleration: ax},
		trajectory.Kinematics{Position: 0, Velocity: vy, Acceleration: ay},
	))

	eps := cfg.OrientationEpsilonSecs
	want := math.Atan2(vy-eps*ay, vx-eps*ax)
	assert.InDelta(t, want, tr.Orientation(0), 1e-12)
	assert.Less(t, tr.Orientation(0), 0.0, "heading leans against the acceleration")
	assert.InDelta(t, want, tr.Orientation(3), 1e-12)

	// Acceleration is not integrated past the zero knot.
	loc := tr.Location(2)
	assert.InDelta(t, 2*vx, loc.X, 1e-12)
	assert.InDelta(t, 0, loc.Y, 1e-12)
}

func TestBoundingBoxContract(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	tr.SetTrajectory(
		trajectory.NewPolynomial([]float64{5, 20, 0.5}, 3),
		trajectory.NewPolynomial([]float64{-2, 1, -0.2}, 3),
	)

	for _, margin := range []geom.Vec2{{}, geom.V2(1, 0.5)} {
		for tm := 0.0; tm <= 6; tm += 0.25 {
			box := tr.BoundingBox(tm, margin)
			assert.Equal(t, geom.V2(4.8+margin.X, 1.8+margin.Y), box.Size())
			assert.Equal(t, tr.Location(tm), box.Center())
			assert.Equal(t, tr.Orientation(tm), box.HeadingRad)
		}
	}

	loc := geom.V2(1, 1)
	margin := geom.V2(0.2, 0.2)
	box := tr.BoundingBoxAt(2, loc, margin)
	assert.Equal(t, loc, box.Center())
	assert.Equal(t, geom.V2(4.8+margin.X, 1.8+margin.Y), box.Size())
}

func TestLocations(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	tr.SetState(trajectory.NewState(
		trajectory.Kinematics{Position: 1, Velocity: 2},
		trajectory.Kinematics{Position: 3, Velocity: -1},
	))
	ts := []float64{0, 0.5, 1, 2}
	got := tr.Locations(ts)
	require.Len(t, got, len(ts))
	for i, tm := range ts {
		assert.Equal(t, tr.Location(tm), got[i])
	}
	assert.Empty(t, tr.Locations(nil))
}

func TestSetSize(t *testing.T) {
	t.Parallel()
	tr := New(1, DefaultConfig())
	tr.SetSize(12, 2.5)
	assert.Equal(t, 12.0, tr.Length())
	assert.Equal(t, 2.5, tr.Width())
	assert.Equal(t, geom.V2(12, 2.5), tr.BoundingBox(0, geom.Vec2{}).Size())
}

func TestBoundingBoxesCollide(t *testing.T) {
	t.Parallel()
	ego := New(0, DefaultConfig())
	other := New(1, DefaultConfig())

	// Side by side in adjacent lanes, 3 m apart laterally.
	ego.NewMeasurement(Measurement{X: 0, Y: 0, VX: 20}, 0)
	other.NewMeasurement(Measurement{X: 2, Y: 3, VX: 20}, 0)

	assert.False(t, ego.BoundingBox(0, geom.Vec2{}).Overlaps(other.BoundingBox(0, geom.Vec2{})))
	// A safety margin wider than the gap makes them collide.
	margin := geom.V2(1, 1.5)
	assert.True(t, ego.BoundingBox(0, margin).Overlaps(other.BoundingBox(0, margin)))
}

func TestMeasurementFromSlice(t *testing.T) {
	t.Parallel()
	m, err := MeasurementFromSlice([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, Measurement{X: 1, Y: 2, VX: 3, VY: 4}, m)

	_, err = MeasurementFromSlice([]float64{1, 2})
	assert.Error(t, err)
}
