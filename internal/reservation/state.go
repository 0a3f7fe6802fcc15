// Package reservation holds the room list and the reservation flow as an
// immutable State with pure transitions, plus a Controller that owns the
// current State.
package reservation

import (
	"errors"
	"fmt"
	"time"

	"study-spotter-backend/internal/model"
	"study-spotter-backend/internal/parse"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomBusy        = errors.New("room is not available")
	ErrNoActiveFlow    = errors.New("no reservation in progress")
	ErrRoomNotSelected = errors.New("room is not the selected room")
)

// Flow is the state of the reservation form.
type Flow string

const (
	FlowIdle      Flow = "idle"
	FlowSelecting Flow = "selecting"
)

// State is a value: transitions return a new State and never modify the
// receiver's room slice.
type State struct {
	Rooms    []model.Room
	Flow     Flow
	Selected *model.Room
}

// NewState returns an idle state over a copy of rooms. Room order is kept as
// display order.
func NewState(rooms []model.Room) State {
	return State{Rooms: cloneRooms(rooms), Flow: FlowIdle}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{Rooms: cloneRooms(s.Rooms), Flow: s.Flow}
	if s.Selected != nil {
		sel := *s.Selected
		out.Selected = &sel
	}
	return out
}

// Room looks a room up by ID.
func (s State) Room(id string) (model.Room, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Room{}, false
	}
	return s.Rooms[i], true
}

func (s State) indexOf(id string) int {
	for i, r := range s.Rooms {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// SelectRoom opens the reservation flow for an available room. Selecting
// while a flow is open replaces the selection. A busy or unknown room leaves
// the state unchanged.
func SelectRoom(s State, roomID string) (State, error) {
	room, ok := s.Room(roomID)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if !room.Available() {
		return s, fmt.Errorf("%w: %s", ErrRoomBusy, roomID)
	}

	next := s.Clone()
	next.Flow = FlowSelecting
	next.Selected = &room
	return next, nil
}

// SubmitReservation marks the selected room busy and closes the flow. The
// request is assumed to be validated already; it is not inspected here.
// The returned room carries its new status.
func SubmitReservation(s State, roomID string, req model.ReservationRequest) (State, model.Room, error) {
	if s.Flow != FlowSelecting || s.Selected == nil {
		return s, model.Room{}, ErrNoActiveFlow
	}
	if s.Selected.ID != roomID {
		return s, model.Room{}, fmt.Errorf("%w: %s", ErrRoomNotSelected, roomID)
	}
	i := s.indexOf(roomID)
	if i < 0 {
		return s, model.Room{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}

	next := s.Clone()
	next.Rooms[i].Status = model.RoomBusy
	next.Flow = FlowIdle
	next.Selected = nil
	return next, next.Rooms[i], nil
}

// CancelReservation closes the flow without touching any room.
func CancelReservation(s State) State {
	next := s.Clone()
	next.Flow = FlowIdle
	next.Selected = nil
	return next
}

// Defaults pre-fills a form opened at now: today's date, the current hour
// and the next hour. 23:xx yields an end time of 00:00.
func Defaults(now time.Time) model.ReservationRequest {
	return model.ReservationRequest{
		Date:      now.Format(parse.DateLayout),
		StartTime: parse.FormatHour(now.Hour()),
		EndTime:   parse.FormatHour(now.Hour() + 1),
	}
}

func cloneRooms(rooms []model.Room) []model.Room {
	if rooms == nil {
		return nil
	}
	out := make([]model.Room, len(rooms))
	copy(out, rooms)
	return out
}
