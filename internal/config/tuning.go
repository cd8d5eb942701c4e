package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// DefaultTrackLength is the loop length of the reference highway map (metres).
const DefaultTrackLength = 6945.554

// TuningConfig represents the root configuration for road and track tuning.
// Every field is optional; Get* accessors fall back to the built-in default
// for fields that are nil, so partial configs are safe.
type TuningConfig struct {
	// Road model
	TrackLength *float64 `json:"track_length,omitempty"` // loop length (m) where s wraps to 0
	LaneWidth   *float64 `json:"lane_width,omitempty"`   // lane width (m), display tools only
	LaneCount   *int     `json:"lane_count,omitempty"`   // lanes right of the centerline, display tools only

	// Measurement ingestion
	StaleAfterSecs        *float64 `json:"stale_after_secs,omitempty"`         // dt above which a track re-initialises
	MaxPositionJumpMeters *float64 `json:"max_position_jump_meters,omitempty"` // per-axis jump that raises a diagnostic

	// Track geometry
	OrientationEpsilonSecs *float64 `json:"orientation_epsilon_secs,omitempty"` // back-off before the knot when sampling heading
	StateKnotSecs          *float64 `json:"state_knot_secs,omitempty"`          // knot of trajectories derived from a state
	VehicleLength          *float64 `json:"vehicle_length,omitempty"`
	VehicleWidth           *float64 `json:"vehicle_width,omitempty"`

	// Diagnostics
	DiagnosticsBuffer *int `json:"diagnostics_buffer,omitempty"` // jump event channel capacity in tools
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the built-in defaults. It does not touch the filesystem.
func DefaultTuningConfig() *TuningConfig {
	empty := EmptyTuningConfig()
	return &TuningConfig{
		TrackLength:            ptrFloat64(empty.GetTrackLength()),
		LaneWidth:              ptrFloat64(empty.GetLaneWidth()),
		LaneCount:              ptrInt(empty.GetLaneCount()),
		StaleAfterSecs:         ptrFloat64(empty.GetStaleAfterSecs()),
		MaxPositionJumpMeters:  ptrFloat64(empty.GetMaxPositionJumpMeters()),
		OrientationEpsilonSecs: ptrFloat64(empty.GetOrientationEpsilonSecs()),
		StateKnotSecs:          ptrFloat64(empty.GetStateKnotSecs()),
		VehicleLength:          ptrFloat64(empty.GetVehicleLength()),
		VehicleWidth:           ptrFloat64(empty.GetVehicleWidth()),
		DiagnosticsBuffer:      ptrInt(empty.GetDiagnosticsBuffer()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,          // from cmd/<tool>/
		"../../" + DefaultConfigPath,       // from internal/<pkg>/
		"../../../" + DefaultConfigPath,    // deeper packages
		"../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	positive := []struct {
		name string
		v    *float64
	}{
		{"track_length", c.TrackLength},
		{"lane_width", c.LaneWidth},
		{"max_position_jump_meters", c.MaxPositionJumpMeters},
		{"vehicle_length", c.VehicleLength},
		{"vehicle_width", c.VehicleWidth},
	}
	for _, f := range positive {
		if f.v != nil && !(*f.v > 0) {
			return fmt.Errorf("%s must be positive, got %f", f.name, *f.v)
		}
	}

	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"stale_after_secs", c.StaleAfterSecs},
		{"orientation_epsilon_secs", c.OrientationEpsilonSecs},
		{"state_knot_secs", c.StateKnotSecs},
	}
	for _, f := range nonNegative {
		if f.v != nil && !(*f.v >= 0) {
			return fmt.Errorf("%s must be non-negative, got %f", f.name, *f.v)
		}
	}

	if c.LaneCount != nil && *c.LaneCount < 0 {
		return fmt.Errorf("lane_count must be non-negative, got %d", *c.LaneCount)
	}
	if c.DiagnosticsBuffer != nil && *c.DiagnosticsBuffer < 0 {
		return fmt.Errorf("diagnostics_buffer must be non-negative, got %d", *c.DiagnosticsBuffer)
	}

	return nil
}

// GetTrackLength returns the track_length value or the default.
func (c *TuningConfig) GetTrackLength() float64 {
	if c.TrackLength == nil {
		return DefaultTrackLength
	}
	return *c.TrackLength
}

// GetLaneWidth returns the lane_width value or the default.
func (c *TuningConfig) GetLaneWidth() float64 {
	if c.LaneWidth == nil {
		return 4.0
	}
	return *c.LaneWidth
}

// GetLaneCount returns the lane_count value or the default.
func (c *TuningConfig) GetLaneCount() int {
	if c.LaneCount == nil {
		return 3
	}
	return *c.LaneCount
}

// GetStaleAfterSecs returns the stale_after_secs value or the default.
func (c *TuningConfig) GetStaleAfterSecs() float64 {
	if c.StaleAfterSecs == nil {
		return 0.5
	}
	return *c.StaleAfterSecs
}

// GetMaxPositionJumpMeters returns the max_position_jump_meters value or the default.
func (c *TuningConfig) GetMaxPositionJumpMeters() float64 {
	if c.MaxPositionJumpMeters == nil {
		return 5.0
	}
	return *c.MaxPositionJumpMeters
}

// GetOrientationEpsilonSecs returns the orientation_epsilon_secs value or the default.
func (c *TuningConfig) GetOrientationEpsilonSecs() float64 {
	if c.OrientationEpsilonSecs == nil {
		return 0.01
	}
	return *c.OrientationEpsilonSecs
}

// GetStateKnotSecs returns the state_knot_secs value or the default.
func (c *TuningConfig) GetStateKnotSecs() float64 {
	if c.StateKnotSecs == nil {
		return 0 // default: acceleration is not extrapolated
	}
	return *c.StateKnotSecs
}

// GetVehicleLength returns the vehicle_length value or the default.
func (c *TuningConfig) GetVehicleLength() float64 {
	if c.VehicleLength == nil {
		return 4.8
	}
	return *c.VehicleLength
}

// GetVehicleWidth returns the vehicle_width value or the default.
func (c *TuningConfig) GetVehicleWidth() float64 {
	if c.VehicleWidth == nil {
		return 1.8
	}
	return *c.VehicleWidth
}

// GetDiagnosticsBuffer returns the diagnostics_buffer value or the default.
func (c *TuningConfig) GetDiagnosticsBuffer() int {
	if c.DiagnosticsBuffer == nil {
		return 64
	}
	return *c.DiagnosticsBuffer
}
