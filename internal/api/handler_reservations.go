package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"study-spotter-backend/internal/model"
	"study-spotter-backend/internal/notification"
	"study-spotter-backend/internal/parse"
	"study-spotter-backend/internal/reservation"
	"study-spotter-backend/internal/store"
)

type submitReservationRequest struct {
	RoomID    string `json:"roomId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	StudentID string `json:"studentId" binding:"required"`
	Date      string `json:"date" binding:"required,isodate"`
	StartTime string `json:"startTime" binding:"required,hhmm"`
	EndTime   string `json:"endTime" binding:"required,hhmm"`
	Purpose   string `json:"purpose" binding:"omitempty,oneof=group-study individual-study project-work meeting presentation"`
}

// toRequest returns the form with the date and times in canonical form.
func (r submitReservationRequest) toRequest(tz *time.Location) (model.ReservationRequest, error) {
	date, err := parse.ParseDate(r.Date, tz)
	if err != nil {
		return model.ReservationRequest{}, err
	}
	start, err := parse.ParseClock(r.StartTime)
	if err != nil {
		return model.ReservationRequest{}, err
	}
	end, err := parse.ParseClock(r.EndTime)
	if err != nil {
		return model.ReservationRequest{}, err
	}
	return model.ReservationRequest{
		Name:      r.Name,
		Email:     r.Email,
		StudentID: r.StudentID,
		Date:      date.Format(parse.DateLayout),
		StartTime: start.String(),
		EndTime:   end.String(),
		Purpose:   model.Purpose(r.Purpose),
	}, nil
}

type submitReservationResponse struct {
	Reservation model.Reservation `json:"reservation"`
	Message     string            `json:"message"`
}

// SubmitReservation handles POST /api/reservation.
func (h *Handler) SubmitReservation(c *gin.Context) {
	var body submitReservationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := body.toRequest(h.tz)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.rooms.Submit(c.Request.Context(), body.RoomID, req)
	switch {
	case errors.Is(err, reservation.ErrRoomNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, reservation.ErrNoActiveFlow), errors.Is(err, reservation.ErrRoomNotSelected):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, submitReservationResponse{
		Reservation: res,
		Message:     notification.Message(res),
	})
}

// CancelReservation handles DELETE /api/reservation. Closing an already
// closed form succeeds.
func (h *Handler) CancelReservation(c *gin.Context) {
	h.rooms.Cancel()
	h.flushCache()
	c.Status(http.StatusNoContent)
}

// ListReservations handles GET /api/reservations?roomId=&studentId=&limit=.
func (h *Handler) ListReservations(c *gin.Context) {
	if h.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "reservation history is not available"})
		return
	}
	var q struct {
		RoomID    string `form:"roomId"`
		StudentID string `form:"studentId"`
		Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.store.ListReservations(c.Request.Context(), store.ReservationFilter{
		RoomID:    q.RoomID,
		StudentID: q.StudentID,
		Limit:     q.Limit,
	})
	if err != nil {
		h.log.WithError(err).Error("failed to list reservations")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
		return
	}
	if list == nil {
		list = []model.Reservation{}
	}
	c.JSON(http.StatusOK, list)
}

// GetReservation handles GET /api/reservations/:id.
func (h *Handler) GetReservation(c *gin.Context) {
	if h.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "reservation history is not available"})
		return
	}
	res, err := h.store.GetReservation(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
