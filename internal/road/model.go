package road

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/roadframe/internal/geom"
	"github.com/banshee-data/roadframe/internal/spline"
)

var (
	// ErrNoWaypoints means the waypoint source was empty. A model cannot be
	// built and no query may be attempted.
	ErrNoWaypoints = errors.New("road: no waypoints")
	// ErrTooFewWaypoints is returned for a single waypoint; a loop needs two.
	ErrTooFewWaypoints = errors.New("road: at least two waypoints are required")
	// ErrInvalidTrackLength is returned when the loop length does not exceed
	// the last waypoint's arc length.
	ErrInvalidTrackLength = errors.New("road: track length must exceed the last waypoint arc length")
	// ErrNotIncreasing is returned when waypoint arc lengths are not strictly
	// increasing from a non-negative start.
	ErrNotIncreasing = errors.New("road: waypoint arc lengths must be strictly increasing")
)

// Model is the road geometry of a closed loop. It is immutable after New.
type Model struct {
	waypoints   []Waypoint
	trackLength float64
	x, y        *spline.Cyclic // x(s), y(s) over the seam-extended samples
}

// New builds a model from waypoints ordered by arc length on a loop of
// length trackLength. The waypoint slice is copied.
func New(waypoints []Waypoint, trackLength float64) (*Model, error) {
	n := len(waypoints)
	switch {
	case n == 0:
		return nil, ErrNoWaypoints
	case n == 1:
		return nil, ErrTooFewWaypoints
	}
	if waypoints[0].S < 0 {
		return nil, fmt.Errorf("%w: first waypoint at s=%g", ErrNotIncreasing, waypoints[0].S)
	}
	for i := 1; i < n; i++ {
		if !(waypoints[i].S > waypoints[i-1].S) {
			return nil, fmt.Errorf("%w: waypoint %d at s=%g follows s=%g",
				ErrNotIncreasing, i, waypoints[i].S, waypoints[i-1].S)
		}
	}
	last := waypoints[n-1]
	if math.IsNaN(trackLength) || math.IsInf(trackLength, 0) || trackLength <= last.S {
		return nil, fmt.Errorf("%w: length %g, last waypoint at s=%g", ErrInvalidTrackLength, trackLength, last.S)
	}

	// One sample before the seam and two after it, so the slopes at s=0 and
	// s=L are computed from the same neighbourhood.
	ss := make([]float64, 0, n+3)
	xs := make([]float64, 0, n+3)
	ys := make([]float64, 0, n+3)
	add := func(s float64, p geom.Vec2) {
		ss = append(ss, s)
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	add(last.S-trackLength, last.Position)
	for _, wp := range waypoints {
		add(wp.S, wp.Position)
	}
	add(trackLength+waypoints[0].S, waypoints[0].Position)
	add(trackLength+waypoints[1].S, waypoints[1].Position)

	sx, err := spline.NewCyclic(ss, xs)
	if err != nil {
		return nil, fmt.Errorf("failed to build x(s): %w", err)
	}
	sy, err := spline.NewCyclic(ss, ys)
	if err != nil {
		return nil, fmt.Errorf("failed to build y(s): %w", err)
	}

	return &Model{
		waypoints:   append([]Waypoint(nil), waypoints...),
		trackLength: trackLength,
		x:           sx,
		y:           sy,
	}, nil
}

// Load reads waypoints from r and builds a model.
func Load(r io.Reader, trackLength float64) (*Model, error) {
	wps, err := ReadWaypoints(r)
	if err != nil {
		return nil, err
	}
	return New(wps, trackLength)
}

// LoadFile reads a waypoint file and builds a model.
func LoadFile(path string, trackLength float64) (*Model, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open waypoint file: %w", err)
	}
	defer f.Close()

	m, err := Load(f, trackLength)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *Model) WaypointCount() int      { return len(m.waypoints) }
func (m *Model) Waypoint(i int) Waypoint { return m.waypoints[i] }
func (m *Model) TrackLength() float64    { return m.trackLength }

// Waypoints returns a copy of the waypoint list.
func (m *Model) Waypoints() []Waypoint {
	return append([]Waypoint(nil), m.waypoints...)
}

// ClosestWaypoint returns the index of the waypoint nearest to (x, y). Ties
// go to the lowest index.
func (m *Model) ClosestWaypoint(x, y float64) int {
	q := geom.V2(x, y)
	best := 0
	bestDist := math.Inf(1)
	for i, wp := range m.waypoints {
		if d := q.DistanceSq(wp.Position); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// NextWaypoint returns the first waypoint not behind (x, y): the closest
// waypoint, or its successor when the point lies ahead of it along the road.
// heading is accepted for call-site compatibility and does not affect the
// result.
func (m *Model) NextWaypoint(x, y, heading float64) int {
	_ = heading
	i := m.ClosestWaypoint(x, y)
	wp := m.waypoints[i]
	if geom.V2(x, y).Sub(wp.Position).Dot(wp.Tangent()) > 0 {
		i = (i + 1) % len(m.waypoints)
	}
	return i
}
