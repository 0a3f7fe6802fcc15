package model

import "time"

// RoomStatus is the binary booking state of a room.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomBusy      RoomStatus = "busy"
)

// Valid reports whether s is one of the known statuses.
func (s RoomStatus) Valid() bool {
	return s == RoomAvailable || s == RoomBusy
}

// Room is a bookable library room. Status lives in memory only; the table
// keeps the room's identity for reservation records.
type Room struct {
	ID        string     `gorm:"primaryKey;size:32" json:"id" csv:"id"`
	Name      string     `gorm:"size:128;not null" json:"name" csv:"name"`
	Capacity  int        `gorm:"not null" json:"capacity" csv:"capacity"`
	Status    RoomStatus `gorm:"-" json:"status" csv:"status"`
	CreatedAt time.Time  `json:"-" csv:"-"`
	UpdatedAt time.Time  `json:"-" csv:"-"`
}

// Available reports whether the room can be selected.
func (r Room) Available() bool {
	return r.Status == RoomAvailable
}
