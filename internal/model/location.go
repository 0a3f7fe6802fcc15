package model

import (
	"time"

	"study-spotter-backend/internal/parse"
)

// Level is the occupancy band shown next to a location.
type Level string

const (
	LevelAvailable Level = "Available"
	LevelBusy      Level = "Busy"
	LevelFull      Level = "Full"
)

// TagSet is an ordered set of location labels. It is stored as JSON and
// read from CSV as a "|"-separated column.
type TagSet []string

// MarshalCSV implements gocsv.TypeMarshaller.
func (t TagSet) MarshalCSV() (string, error) {
	return parse.JoinTags(t), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (t *TagSet) UnmarshalCSV(s string) error {
	*t = parse.ParseTags(s)
	return nil
}

// Has reports whether the set contains tag.
func (t TagSet) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// StudyLocation is a static catalog entry for a place to study.
type StudyLocation struct {
	ID            int64     `gorm:"primaryKey" json:"id" csv:"id"`
	Name          string    `gorm:"size:128;not null" json:"name" csv:"name"`
	Type          string    `gorm:"size:64;not null" json:"type" csv:"type"`
	Capacity      int       `gorm:"not null" json:"capacity" csv:"capacity"`
	Tags          TagSet    `gorm:"serializer:json" json:"tags" csv:"tags"`
	BaseOccupancy float64   `gorm:"not null" json:"baseOccupancy" csv:"base_occupancy"`
	CreatedAt     time.Time `json:"-" csv:"-"`
	UpdatedAt     time.Time `json:"-" csv:"-"`
}

// LocationSnapshot is one refresh cycle's estimate for a location.
// Snapshots are replaced wholesale on every cycle, never updated in place.
type LocationSnapshot struct {
	StudyLocation
	Occupancy float64 `json:"occupancy"`
	Occupied  int     `json:"occupied"`
	Available int     `json:"available"`
	Level     Level   `json:"level"`
}
