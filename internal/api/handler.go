package api

import (
	"context"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"study-spotter-backend/internal/logging"
	"study-spotter-backend/internal/metrics"
	"study-spotter-backend/internal/model"
	"study-spotter-backend/internal/mw"
	"study-spotter-backend/internal/refresher"
	"study-spotter-backend/internal/reservation"
	"study-spotter-backend/internal/store"
)

// Notifier queues completed reservations for push delivery.
type Notifier interface {
	Dispatch(ctx context.Context, res model.Reservation) error
}

// Deps are the collaborators the API is built on. Store, Metrics, Notifier,
// WebPush and Cache may be nil.
type Deps struct {
	Rooms     *reservation.Controller
	Locations *refresher.Service
	Store     store.Store
	Metrics   *metrics.Metrics
	Notifier  Notifier
	WebPush   *webpush.Options
	Cache     *mw.ResponseCache
	// Timezone is used to read reservation dates. Defaults to UTC.
	Timezone *time.Location
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	rooms     *reservation.Controller
	locations *refresher.Service
	store     store.Store
	metrics   *metrics.Metrics
	notifier  Notifier
	webpush   *webpush.Options
	cache     *mw.ResponseCache
	tz        *time.Location
	log       *logrus.Entry
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	tz := d.Timezone
	if tz == nil {
		tz = time.UTC
	}
	return &Handler{
		rooms:     d.Rooms,
		locations: d.Locations,
		store:     d.Store,
		metrics:   d.Metrics,
		notifier:  d.Notifier,
		webpush:   d.WebPush,
		cache:     d.Cache,
		tz:        tz,
		log:       logging.For("api"),
	}
}

// flushCache drops cached GET responses after the data behind them changed.
func (h *Handler) flushCache() {
	if h.cache != nil {
		h.cache.Flush()
	}
}

// onReserved is registered with the reservation controller. The reservation
// is already committed in memory; persistence and notification failures are
// only logged.
func (h *Handler) onReserved(ctx context.Context, res model.Reservation) {
	log := h.log.WithFields(logrus.Fields{"reservation_id": res.ID, "room_id": res.RoomID})

	if h.metrics != nil {
		h.metrics.ReservationCompleted()
	}
	if h.store != nil {
		if err := h.store.SaveReservation(ctx, res); err != nil {
			log.WithError(err).Error("failed to persist reservation")
		}
	}
	if h.notifier != nil {
		if err := h.notifier.Dispatch(ctx, res); err != nil {
			log.WithError(err).Warn("failed to queue reservation notification")
		}
	}
	h.flushCache()
}
