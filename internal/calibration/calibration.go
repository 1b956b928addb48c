// Package calibration converts raw analog soil readings into normalized
// percentages and classifies values against optimal ranges. Everything here
// is pure; calibration pairs come from an assigned profile or from
// resolution-specific defaults.
package calibration

import (
	"garden-core/internal/models"
)

// Resolution-specific default pairs, used when a device has no profile.
const (
	DefaultDry10Bit = 800
	DefaultWet10Bit = 400
	DefaultDry12Bit = 3200
	DefaultWet12Bit = 600
)

// Pair is one (dry, wet) calibration for a given resolution.
type Pair struct {
	Dry float64
	Wet float64
}

// SelectPair picks the calibration pair for a device's resolution, falling
// back to defaults when no profile is assigned. Profiles keep both
// resolution pairs side by side so one profile serves mixed fleets.
func SelectPair(profile *models.SoilType, resolutionBits int) Pair {
	if resolutionBits == 12 {
		if profile != nil {
			return Pair{Dry: float64(profile.RawDry12Bit), Wet: float64(profile.RawWet12Bit)}
		}
		return Pair{Dry: DefaultDry12Bit, Wet: DefaultWet12Bit}
	}
	if profile != nil {
		return Pair{Dry: float64(profile.RawDry), Wet: float64(profile.RawWet)}
	}
	return Pair{Dry: DefaultDry10Bit, Wet: DefaultWet10Bit}
}

// Normalize converts a raw magnitude to a percentage in [0, 100].
// dry == wet is defined to yield 0 so downstream arithmetic stays total.
func Normalize(raw, dry, wet float64) float64 {
	if dry == wet {
		return 0
	}
	pct := ((dry - raw) / (dry - wet)) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Status is the classification of a value against an optimal range.
type Status string

const (
	StatusCriticalLow  Status = "critical_low"
	StatusLow          Status = "low"
	StatusOK           Status = "ok"
	StatusHigh         Status = "high"
	StatusCriticalHigh Status = "critical_high"
)

// Classify places a value against the four ordered bounds of a range.
// This feeds status badges and chart reference lines only; alerting never
// consults it.
func Classify(value float64, r models.OptimalRange) Status {
	switch {
	case value < r.Min:
		return StatusCriticalLow
	case value < r.OptimalMin:
		return StatusLow
	case value > r.Max:
		return StatusCriticalHigh
	case value > r.OptimalMax:
		return StatusHigh
	default:
		return StatusOK
	}
}
