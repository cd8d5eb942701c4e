package road

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stats summarises waypoint spacing and centerline curvature.
type Stats struct {
	Waypoints        int
	TrackLength      float64
	MinSpacing       float64
	MaxSpacing       float64
	MeanSpacing      float64
	MaxAbsCurvature  float64
	MeanAbsCurvature float64
	MinRadius        float64 // +Inf for a curvature-free loop
}

// Stats computes spacing over all waypoint gaps, including the closing gap
// from the last waypoint back to the first, and curvature at every waypoint.
func (m *Model) Stats() Stats {
	n := len(m.waypoints)
	gaps := make([]float64, n)
	curv := make([]float64, n)
	for i, wp := range m.waypoints {
		if i+1 < n {
			gaps[i] = m.waypoints[i+1].S - wp.S
		} else {
			gaps[i] = m.trackLength - wp.S + m.waypoints[0].S
		}
		curv[i] = math.Abs(m.Curvature(wp.S))
	}

	maxK := floats.Max(curv)
	return Stats{
		Waypoints:        n,
		TrackLength:      m.trackLength,
		MinSpacing:       floats.Min(gaps),
		MaxSpacing:       floats.Max(gaps),
		MeanSpacing:      floats.Sum(gaps) / float64(n),
		MaxAbsCurvature:  maxK,
		MeanAbsCurvature: floats.Sum(curv) / float64(n),
		MinRadius:        1 / maxK,
	}
}
