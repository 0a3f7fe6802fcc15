package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"study-spotter-backend/internal/logging"
	"study-spotter-backend/internal/model"
)

// Callback receives every completed reservation. Callbacks run after the
// state change is committed, on the caller's goroutine.
type Callback func(ctx context.Context, r model.Reservation)

// Controller owns the reservation State and applies transitions one at a
// time.
type Controller struct {
	mu         sync.Mutex
	state      State
	now        func() time.Time
	loc        *time.Location
	newID      func() string
	onReserved []Callback
	log        *logrus.Entry
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for form defaults and
// reservation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLocation sets the zone form defaults are computed in. Without it
// the clock's own zone is used.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.loc = loc }
}

// WithIDGenerator overrides reservation ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// NewController creates a controller over rooms, all flows idle.
func NewController(rooms []model.Room, opts ...Option) *Controller {
	c := &Controller{
		state: NewState(rooms),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
		log:   logging.For("reservation"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) localNow() time.Time {
	now := c.now()
	if c.loc != nil {
		return now.In(c.loc)
	}
	return now
}

// OnReserved registers a callback for completed reservations.
func (c *Controller) OnReserved(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReserved = append(c.onReserved, cb)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Select opens the flow for roomID and returns the form defaults.
func (c *Controller) Select(roomID string) (model.ReservationRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := SelectRoom(c.state, roomID)
	if err != nil {
		c.log.WithError(err).WithField("room_id", roomID).Info("room selection rejected")
		return model.ReservationRequest{}, err
	}
	c.state = next
	c.log.WithField("room_id", roomID).Debug("reservation flow opened")
	return Defaults(c.localNow()), nil
}

// Submit completes the open flow for roomID and notifies callbacks.
func (c *Controller) Submit(ctx context.Context, roomID string, req model.ReservationRequest) (model.Reservation, error) {
	c.mu.Lock()
	next, room, err := SubmitReservation(c.state, roomID, req)
	if err != nil {
		c.mu.Unlock()
		return model.Reservation{}, err
	}
	c.state = next
	callbacks := append([]Callback(nil), c.onReserved...)
	c.mu.Unlock()

	res := model.Reservation{
		ID:        c.newID(),
		RoomID:    room.ID,
		RoomName:  room.Name,
		Name:      req.Name,
		Email:     req.Email,
		StudentID: req.StudentID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		CreatedAt: c.now().UTC(),
	}
	c.log.WithFields(logrus.Fields{"room_id": room.ID, "reservation_id": res.ID}).Info("room reserved")

	for _, cb := range callbacks {
		cb(ctx, res)
	}
	return res, nil
}

// Cancel abandons the open flow, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = CancelReservation(c.state)
}
