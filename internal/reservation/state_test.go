package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-spotter-backend/internal/model"
)

func testRooms() []model.Room {
	return []model.Room{
		{ID: "A101", Name: "Group Study Room A101", Capacity: 6, Status: model.RoomAvailable},
		{ID: "A102", Name: "Group Study Room A102", Capacity: 8, Status: model.RoomBusy},
		{ID: "B202", Name: "Study Pod B202", Capacity: 2, Status: model.RoomAvailable},
	}
}

func testRequest() model.ReservationRequest {
	return model.ReservationRequest{
		Name:      "Tiger Student",
		Email:     "tiger@example.edu",
		StudentID: "C12345678",
		Date:      "2026-10-20",
		StartTime: "14:00",
		EndTime:   "15:00",
		Purpose:   model.PurposeGroupStudy,
	}
}

func TestSelectRoom_Available(t *testing.T) {
	s := NewState(testRooms())

	next, err := SelectRoom(s, "A101")
	require.NoError(t, err)
	assert.Equal(t, FlowSelecting, next.Flow)
	require.NotNil(t, next.Selected)
	assert.Equal(t, "A101", next.Selected.ID)

	// The input state is untouched.
	assert.Equal(t, FlowIdle, s.Flow)
	assert.Nil(t, s.Selected)
}

func TestSelectRoom_BusyRoomKeepsFlowIdle(t *testing.T) {
	s := NewState(testRooms())

	next, err := SelectRoom(s, "A102")
	assert.ErrorIs(t, err, ErrRoomBusy)
	assert.Equal(t, FlowIdle, next.Flow)
	assert.Nil(t, next.Selected)
}

func TestSelectRoom_Unknown(t *testing.T) {
	_, err := SelectRoom(NewState(testRooms()), "Z999")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSelectRoom_ReplacesSelection(t *testing.T) {
	s, err := SelectRoom(NewState(testRooms()), "A101")
	require.NoError(t, err)

	s, err = SelectRoom(s, "B202")
	require.NoError(t, err)
	assert.Equal(t, "B202", s.Selected.ID)
	assert.Equal(t, FlowSelecting, s.Flow)
}

func TestSubmitReservation(t *testing.T) {
	s, err := SelectRoom(NewState(testRooms()), "A101")
	require.NoError(t, err)

	next, room, err := SubmitReservation(s, "A101", testRequest())
	require.NoError(t, err)

	assert.Equal(t, model.RoomBusy, room.Status)
	assert.Equal(t, FlowIdle, next.Flow)
	assert.Nil(t, next.Selected)

	reserved, ok := next.Room("A101")
	require.True(t, ok)
	assert.Equal(t, model.RoomBusy, reserved.Status)

	// Other rooms and the previous state are unchanged.
	other, _ := next.Room("B202")
	assert.Equal(t, model.RoomAvailable, other.Status)
	before, _ := s.Room("A101")
	assert.Equal(t, model.RoomAvailable, before.Status)

	// A reserved room cannot be selected again.
	after, err := SelectRoom(next, "A101")
	assert.ErrorIs(t, err, ErrRoomBusy)
	assert.Equal(t, FlowIdle, after.Flow)
}

func TestSubmitReservation_Rejected(t *testing.T) {
	idle := NewState(testRooms())

	_, _, err := SubmitReservation(idle, "A101", testRequest())
	assert.ErrorIs(t, err, ErrNoActiveFlow)

	selecting, err := SelectRoom(idle, "A101")
	require.NoError(t, err)
	unchanged, _, err := SubmitReservation(selecting, "B202", testRequest())
	assert.ErrorIs(t, err, ErrRoomNotSelected)
	assert.Equal(t, FlowSelecting, unchanged.Flow)
	room, _ := unchanged.Room("B202")
	assert.Equal(t, model.RoomAvailable, room.Status)
}

func TestCancelReservation(t *testing.T) {
	s, err := SelectRoom(NewState(testRooms()), "A101")
	require.NoError(t, err)

	next := CancelReservation(s)
	assert.Equal(t, FlowIdle, next.Flow)
	assert.Nil(t, next.Selected)
	assert.Equal(t, testRooms(), next.Rooms)

	// Cancel on an idle state is a no-op.
	assert.Equal(t, FlowIdle, CancelReservation(NewState(testRooms())).Flow)
}

func TestNewState_CopiesRooms(t *testing.T) {
	rooms := testRooms()
	s := NewState(rooms)
	rooms[0].Status = model.RoomBusy

	room, _ := s.Room("A101")
	assert.Equal(t, model.RoomAvailable, room.Status)
}

func TestDefaults(t *testing.T) {
	testCases := []struct {
		name  string
		now   time.Time
		date  string
		start string
		end   string
	}{
		{name: "Afternoon", now: time.Date(2026, 10, 20, 14, 37, 0, 0, time.UTC), date: "2026-10-20", start: "14:00", end: "15:00"},
		{name: "Early morning", now: time.Date(2026, 10, 20, 8, 5, 0, 0, time.UTC), date: "2026-10-20", start: "08:00", end: "09:00"},
		{name: "Late night wraps", now: time.Date(2026, 10, 20, 23, 59, 0, 0, time.UTC), date: "2026-10-20", start: "23:00", end: "00:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := Defaults(tc.now)
			assert.Equal(t, tc.date, req.Date)
			assert.Equal(t, tc.start, req.StartTime)
			assert.Equal(t, tc.end, req.EndTime)
			assert.Empty(t, req.Name)
			assert.Equal(t, model.PurposeNone, req.Purpose)
		})
	}
}
