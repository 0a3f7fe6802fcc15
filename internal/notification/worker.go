// Package notification delivers "room reserved" web push messages to the
// browsers a student has registered, and optionally a confirmation mail.
package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"study-spotter-backend/internal/logging"
	"study-spotter-backend/internal/metrics"
	"study-spotter-backend/internal/model"
	"study-spotter-backend/internal/store"
)

// Notification results reported to metrics.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultExpired = "expired"

	ResultMailed     = "mailed"
	ResultMailFailed = "mail_failed"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan model.Reservation
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
	email   *EmailSender
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// PoolOption configures a WorkerPool.
type PoolOption func(*WorkerPool)

// WithEmail also mails a confirmation to the reserving student.
func WithEmail(e *EmailSender) PoolOption {
	return func(wp *WorkerPool) { wp.email = e }
}

// NewWorkerPool creates a new worker pool. Push is skipped when
// webpushOptions is nil; m may be nil.
func NewWorkerPool(size int, st store.Store, webpushOptions *webpush.Options, m *metrics.Metrics, opts ...PoolOption) *WorkerPool {
	wp := &WorkerPool{
		size:    size,
		jobs:    make(chan model.Reservation, size),
		store:   st,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		metrics: m,
		log:     logging.For("notification"),
	}
	for _, opt := range opts {
		opt(wp)
	}
	return wp
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.log.WithField("worker", id)
	log.Debug("Worker started")
	for {
		select {
		case res := <-wp.jobs:
			log.WithField("reservation_id", res.ID).Debug("Processing reservation")
			wp.notifyReservation(ctx, res)
		case <-ctx.Done():
			log.Debug("Worker shutting down")
			return
		}
	}
}

// Dispatch queues a completed reservation. It blocks while the queue is full
// and gives up when ctx is done.
func (wp *WorkerPool) Dispatch(ctx context.Context, res model.Reservation) error {
	select {
	case wp.jobs <- res:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Message is the text pushed for a completed reservation.
func Message(res model.Reservation) string {
	name := res.RoomName
	if name == "" {
		name = res.RoomID
	}
	return fmt.Sprintf("Room %s has been reserved successfully!", name)
}

func (wp *WorkerPool) notifyReservation(ctx context.Context, res model.Reservation) {
	if wp.email != nil && res.Email != "" {
		if err := wp.email.Send(res); err != nil {
			wp.log.WithError(err).WithField("reservation_id", res.ID).Warn("Error sending confirmation mail")
			wp.record(ResultMailFailed)
		} else {
			wp.record(ResultMailed)
		}
	}
	if wp.webpush != nil {
		wp.pushReservation(ctx, res)
	}
}

func (wp *WorkerPool) pushReservation(ctx context.Context, res model.Reservation) {
	if res.StudentID == "" {
		return
	}
	subs, err := wp.store.SubscriptionsForStudent(ctx, res.StudentID)
	if err != nil {
		wp.log.WithError(err).WithField("student_id", res.StudentID).Error("Error fetching subscriptions")
		return
	}
	if len(subs) == 0 {
		return
	}

	wp.log.WithFields(logrus.Fields{"count": len(subs), "reservation_id": res.ID}).Info("Sending notifications")
	payload := []byte(Message(res))
	for _, sub := range subs {
		wp.record(wp.sendNotification(ctx, sub, payload))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) string {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.WithError(err).WithField("endpoint", sub.Endpoint).Warn("Error sending notification")
		return ResultFailed
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone:
		wp.log.WithField("endpoint", sub.Endpoint).Info("Subscription is expired. Deleting.")
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.WithError(err).WithField("endpoint", sub.Endpoint).Error("Failed to delete expired subscription")
		}
		return ResultExpired
	case resp.StatusCode >= http.StatusBadRequest:
		wp.log.WithFields(logrus.Fields{"endpoint": sub.Endpoint, "status": resp.StatusCode}).Warn("Push service rejected notification")
		return ResultFailed
	}
	return ResultSent
}

func (wp *WorkerPool) record(result string) {
	if wp.metrics != nil {
		wp.metrics.NotificationSent(result)
	}
}
