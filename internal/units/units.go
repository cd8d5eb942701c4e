// Package units converts track speeds for display. Internally every speed
// is metres per second.
package units

import (
	"fmt"
	"strings"
)

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

const mpsToMPH = 2.2369362920544

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// Parse normalises a user supplied unit name and rejects unknown units.
func Parse(unit string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if !IsValid(u) {
		return "", fmt.Errorf("invalid speed unit %q, expected one of: %s", unit, strings.Join(ValidUnits, ", "))
	}
	return u, nil
}

// ConvertSpeed converts a speed from metres per second to the target units.
// Unknown units leave the value unchanged.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * mpsToMPH
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// Label returns the display suffix for a unit.
func Label(unit string) string {
	switch unit {
	case MPH:
		return "mph"
	case KMPH, KPH:
		return "km/h"
	default:
		return "m/s"
	}
}
