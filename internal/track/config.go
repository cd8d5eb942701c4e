package track

import "github.com/banshee-data/roadframe/internal/config"

// Config holds the tuning of a single track.
type Config struct {
	StaleAfterSecs         float64 // dt above which a measurement re-initialises the track
	MaxPositionJumpMeters  float64 // per-axis displacement that raises a JumpEvent
	OrientationEpsilonSecs float64 // heading is sampled this far before the trajectory knot
	StateKnotSecs          float64 // knot of trajectories derived from a state
	Length                 float64 // vehicle length (m)
	Width                  float64 // vehicle width (m)
}

// DefaultConfig returns the built-in track configuration.
func DefaultConfig() Config {
	return ConfigFromTuning(config.DefaultTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		StaleAfterSecs:         cfg.GetStaleAfterSecs(),
		MaxPositionJumpMeters:  cfg.GetMaxPositionJumpMeters(),
		OrientationEpsilonSecs: cfg.GetOrientationEpsilonSecs(),
		StateKnotSecs:          cfg.GetStateKnotSecs(),
		Length:                 cfg.GetVehicleLength(),
		Width:                  cfg.GetVehicleWidth(),
	}
}
