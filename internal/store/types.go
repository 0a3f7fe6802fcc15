package store

import "errors"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ReservationFilter narrows ListReservations. Zero fields match everything.
type ReservationFilter struct {
	RoomID    string
	StudentID string
	Limit     int
}

const defaultListLimit = 50
