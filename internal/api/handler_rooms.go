package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"study-spotter-backend/internal/model"
	"study-spotter-backend/internal/reservation"
)

type roomsResponse struct {
	Rooms          []model.Room     `json:"rooms"`
	Flow           reservation.Flow `json:"flow"`
	SelectedRoomID string           `json:"selectedRoomId,omitempty"`
}

// GetRooms handles GET /api/rooms: rooms in display order plus the state of
// the reservation form.
func (h *Handler) GetRooms(c *gin.Context) {
	state := h.rooms.State()
	resp := roomsResponse{Rooms: state.Rooms, Flow: state.Flow}
	if resp.Rooms == nil {
		resp.Rooms = []model.Room{}
	}
	if state.Selected != nil {
		resp.SelectedRoomID = state.Selected.ID
	}
	c.JSON(http.StatusOK, resp)
}

type selectRoomResponse struct {
	Room     model.Room               `json:"room"`
	Defaults model.ReservationRequest `json:"defaults"`
}

// SelectRoom handles POST /api/rooms/:room_id/select. Busy rooms are
// rejected with 409 and leave the form closed.
func (h *Handler) SelectRoom(c *gin.Context) {
	roomID := c.Param("room_id")

	defaults, err := h.rooms.Select(roomID)
	if err != nil {
		h.rejectSelection(c, err)
		return
	}
	room, _ := h.rooms.State().Room(roomID)
	h.flushCache()
	c.JSON(http.StatusOK, selectRoomResponse{Room: room, Defaults: defaults})
}

func (h *Handler) rejectSelection(c *gin.Context, err error) {
	reason := "unknown"
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, reservation.ErrRoomNotFound):
		reason, status = "not_found", http.StatusNotFound
	case errors.Is(err, reservation.ErrRoomBusy):
		reason, status = "busy", http.StatusConflict
	}
	if h.metrics != nil {
		h.metrics.SelectionRejected(reason)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
