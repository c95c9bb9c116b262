// Package stats derives watch-time statistics from an aggregated duration.
package stats

import (
	"github.com/osa030/playtime/internal/domain/duration"
)

// Statistics holds speed-adjusted watch-time figures in seconds.
type Statistics struct {
	Speed         float64
	AdjustedTotal float64
	Daily         float64
	Weekly        float64
	Monthly       float64
}

// Derive computes the speed-adjusted total and its periodic splits.
// The caller guarantees speed > 0.
func Derive(totalSeconds int64, speed float64) Statistics {
	adjusted := float64(totalSeconds) / speed
	return Statistics{
		Speed:         speed,
		AdjustedTotal: adjusted,
		Daily:         adjusted / 7,
		Weekly:        adjusted / 4,
		Monthly:       adjusted / 12,
	}
}

// Average returns the mean item duration over the whole playlist.
// A playlist without items averages to 0.
func Average(totalSeconds, itemCount int64) float64 {
	if itemCount <= 0 {
		return 0
	}
	return float64(totalSeconds) / float64(itemCount)
}

// Formatted is the display form of Statistics.
type Formatted struct {
	AdjustedTotal string
	Daily         string
	Weekly        string
	Monthly       string
}

// Formatted renders every figure with duration.Format.
func (s Statistics) Formatted() Formatted {
	return Formatted{
		AdjustedTotal: duration.Format(s.AdjustedTotal),
		Daily:         duration.Format(s.Daily),
		Weekly:        duration.Format(s.Weekly),
		Monthly:       duration.Format(s.Monthly),
	}
}
