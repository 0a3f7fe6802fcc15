package model

import (
	"time"
)

// OccupancySample is one persisted observation of a location, written once
// per refresh cycle.
type OccupancySample struct {
	LocationID int64     `gorm:"not null;index;primaryKey"`
	ObservedAt time.Time `gorm:"not null;index;primaryKey"`
	Occupancy  float64   `gorm:"not null"`
	Occupied   int       `gorm:"not null"`
	Available  int       `gorm:"not null"`
	Level      Level     `gorm:"size:16;not null"`
}

// SampleFromSnapshot converts a snapshot taken at observedAt.
func SampleFromSnapshot(s LocationSnapshot, observedAt time.Time) OccupancySample {
	return OccupancySample{
		LocationID: s.ID,
		ObservedAt: observedAt,
		Occupancy:  s.Occupancy,
		Occupied:   s.Occupied,
		Available:  s.Available,
		Level:      s.Level,
	}
}
