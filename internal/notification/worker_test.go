package notification

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"study-spotter-backend/internal/metrics"
	"study-spotter-backend/internal/model"
	"study-spotter-backend/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func respond(status int) (*http.Response, error) {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}, nil
}

// A helper function to create a store over a mock database connection.
func newTestStore(t *testing.T) (store.Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return store.NewGormStore(gormDB), mock
}

const subscriptionsQuery = `SELECT \* FROM "push_subscriptions" WHERE student_id = \$1`

func subscriptionRows(endpoints ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "student_id", "created_at"})
	for _, ep := range endpoints {
		rows.AddRow(ep, "test_p256dh", "test_auth", "S1234567", time.Now())
	}
	return rows
}

func testReservation() model.Reservation {
	return model.Reservation{
		ID:        "res-1",
		RoomID:    "A101",
		RoomName:  "Group Study Room A101",
		StudentID: "S1234567",
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Room Group Study Room A101 has been reserved successfully!", Message(testReservation()))
	assert.Equal(t, "Room B202 has been reserved successfully!", Message(model.Reservation{RoomID: "B202"}))
}

func TestWorkerPool_Dispatch(t *testing.T) {
	st, _ := newTestStore(t)
	wp := NewWorkerPool(1, st, &webpush.Options{}, nil)

	require.NoError(t, wp.Dispatch(context.Background(), testReservation()))

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "res-1", job.ID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchGivesUpWhenFull(t *testing.T) {
	st, _ := newTestStore(t)
	wp := NewWorkerPool(1, st, &webpush.Options{}, nil)
	require.NoError(t, wp.Dispatch(context.Background(), testReservation()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := wp.Dispatch(ctx, testReservation())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	st, mock := newTestStore(t)
	wp := NewWorkerPool(1, st, &webpush.Options{}, metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			defer wg.Done()
			assert.Equal(t, "https://example.com/push", sub.Endpoint)
			assert.Equal(t, "test_p256dh", sub.Keys.P256dh)
			assert.Equal(t, "Room Group Study Room A101 has been reserved successfully!", string(payload))
			return respond(http.StatusCreated)
		},
	}

	mock.ExpectQuery(subscriptionsQuery).
		WithArgs("S1234567").
		WillReturnRows(subscriptionRows("https://example.com/push"))

	require.NoError(t, wp.Dispatch(ctx, testReservation()))
	wg.Wait()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyReservation(t *testing.T) {
	t.Run("deletes expired subscription", func(t *testing.T) {
		st, mock := newTestStore(t)
		wp := NewWorkerPool(1, st, &webpush.Options{}, nil)
		wp.sender = &mockSender{
			SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
				return respond(http.StatusGone)
			},
		}

		mock.ExpectQuery(subscriptionsQuery).
			WithArgs("S1234567").
			WillReturnRows(subscriptionRows("https://example.com/expired"))
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.notifyReservation(context.Background(), testReservation())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sends to every subscription despite failures", func(t *testing.T) {
		st, mock := newTestStore(t)
		wp := NewWorkerPool(1, st, &webpush.Options{}, metrics.New())
		var sent []string
		wp.sender = &mockSender{
			SendFunc: func(_ []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
				sent = append(sent, sub.Endpoint)
				if sub.Endpoint == "https://example.com/a" {
					return nil, errors.New("connection refused")
				}
				return respond(http.StatusCreated)
			},
		}

		mock.ExpectQuery(subscriptionsQuery).
			WithArgs("S1234567").
			WillReturnRows(subscriptionRows("https://example.com/a", "https://example.com/b"))

		wp.notifyReservation(context.Background(), testReservation())
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no subscriptions sends nothing", func(t *testing.T) {
		st, mock := newTestStore(t)
		wp := NewWorkerPool(1, st, &webpush.Options{}, nil)
		wp.sender = &mockSender{
			SendFunc: func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
				t.Fatal("unexpected send")
				return nil, nil
			},
		}

		mock.ExpectQuery(subscriptionsQuery).
			WithArgs("S1234567").
			WillReturnRows(subscriptionRows())

		wp.notifyReservation(context.Background(), testReservation())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lookup error is tolerated", func(t *testing.T) {
		st, mock := newTestStore(t)
		wp := NewWorkerPool(1, st, &webpush.Options{}, nil)

		mock.ExpectQuery(subscriptionsQuery).
			WithArgs("S1234567").
			WillReturnError(errors.New("connection reset"))

		wp.notifyReservation(context.Background(), testReservation())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reservation without student ID is skipped", func(t *testing.T) {
		st, mock := newTestStore(t)
		wp := NewWorkerPool(1, st, &webpush.Options{}, nil)

		wp.notifyReservation(context.Background(), model.Reservation{ID: "res-2", RoomID: "A103"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
