package coverage

import (
	"fmt"
	"hash/fnv"
)

// Estimator models cellular network coverage along a route. No public
// coverage API is wired yet, so the estimate is a deterministic function of
// the coordinates: the same point always yields the same reading, which
// keeps repeated analyses comparable.
type Estimator struct{}

// NewEstimator creates a coverage estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Reading is a normalized coverage observation at one point.
type Reading struct {
	SignalStrengthDbm int    `json:"signal_strength"`
	Quality           string `json:"coverage_quality"` // excellent / good / fair / poor / dead
	NetworkType       string `json:"network_type"`
	IsDeadZone        bool   `json:"is_dead_zone"`
	IsPoorCoverage    bool   `json:"is_poor_coverage"`
}

// Estimate returns the coverage reading for one coordinate. Signal strength
// is drawn from [-120, -60] dBm via an FNV hash of the coordinates.
func (e *Estimator) Estimate(lat, lng float64) Reading {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.6f,%.6f", lat, lng)
	strength := -120 + int(h.Sum64()%61)

	quality := qualityFor(strength)
	return Reading{
		SignalStrengthDbm: strength,
		Quality:           quality,
		NetworkType:       "4G",
		IsDeadZone:        quality == "dead",
		IsPoorCoverage:    quality == "poor",
	}
}

// qualityFor buckets a dBm reading. Thresholds follow the usual RSRP bands.
func qualityFor(strength int) string {
	switch {
	case strength > -70:
		return "excellent"
	case strength > -85:
		return "good"
	case strength > -100:
		return "fair"
	case strength > -110:
		return "poor"
	default:
		return "dead"
	}
}
