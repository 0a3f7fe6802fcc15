// Package occupancy estimates how full each study location is from its base
// rate, the time of day and a bounded random fluctuation.
package occupancy

import (
	"cmp"
	"math"
	"slices"
	"time"

	"study-spotter-backend/internal/model"
)

const (
	// MinOccupancy and MaxOccupancy bound every estimate.
	MinOccupancy = 0.05
	MaxOccupancy = 0.95

	availableBelow = 0.4
	busyBelow      = 0.75

	weekendFactor   = 0.6
	morningFactor   = 1.3
	afternoonFactor = 1.5
	eveningFactor   = 1.8
	nightFactor     = 0.3

	randomLow  = 0.8
	randomSpan = 0.4
)

// Multiplier returns the combined day-of-week and hour-of-day factor for t.
// Hour bands are mutually exclusive and checked in order.
func Multiplier(t time.Time) float64 {
	m := 1.0
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		m *= weekendFactor
	}

	switch hour := t.Hour(); {
	case hour >= 9 && hour <= 11:
		m *= morningFactor
	case hour >= 14 && hour <= 17:
		m *= afternoonFactor
	case hour >= 19 && hour <= 22:
		m *= eveningFactor
	case hour >= 23 || hour <= 7:
		m *= nightFactor
	}
	return m
}

// RandomFactor draws a uniform fluctuation in [0.8, 1.2).
func RandomFactor(src RandomSource) float64 {
	return randomLow + src.Float64()*randomSpan
}

// Clamp bounds occupancy to [MinOccupancy, MaxOccupancy].
func Clamp(occupancy float64) float64 {
	return math.Max(MinOccupancy, math.Min(MaxOccupancy, occupancy))
}

// Classify maps an occupancy fraction to its display level.
func Classify(occupancy float64) model.Level {
	switch {
	case occupancy < availableBelow:
		return model.LevelAvailable
	case occupancy < busyBelow:
		return model.LevelBusy
	default:
		return model.LevelFull
	}
}

// Estimate produces the snapshot of loc at now. Capacity must be positive.
func Estimate(loc model.StudyLocation, now time.Time, src RandomSource) model.LocationSnapshot {
	occupancy := Clamp(loc.BaseOccupancy * Multiplier(now) * RandomFactor(src))
	return snapshot(loc, occupancy)
}

func snapshot(loc model.StudyLocation, occupancy float64) model.LocationSnapshot {
	occupied := int(math.Round(float64(loc.Capacity) * occupancy))
	return model.LocationSnapshot{
		StudyLocation: loc,
		Occupancy:     occupancy,
		Occupied:      occupied,
		Available:     loc.Capacity - occupied,
		Level:         Classify(occupancy),
	}
}

// Compute estimates every location in catalog and orders the result by
// available seats, most first. Ties keep catalog order.
func Compute(catalog []model.StudyLocation, now time.Time, src RandomSource) []model.LocationSnapshot {
	snaps := make([]model.LocationSnapshot, 0, len(catalog))
	for _, loc := range catalog {
		snaps = append(snaps, Estimate(loc, now, src))
	}
	SortByAvailable(snaps)
	return snaps
}

// SortByAvailable stable-sorts snapshots by Available, descending.
func SortByAvailable(snaps []model.LocationSnapshot) {
	slices.SortStableFunc(snaps, func(a, b model.LocationSnapshot) int {
		return cmp.Compare(b.Available, a.Available)
	})
}
