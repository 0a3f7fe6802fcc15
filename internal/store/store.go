package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"study-spotter-backend/internal/logging"
	"study-spotter-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	UpsertCatalog(ctx context.Context, locations []model.StudyLocation, rooms []model.Room) error
	RecordSnapshots(ctx context.Context, observedAt time.Time, snaps []model.LocationSnapshot) error
	SampleAt(ctx context.Context, locationID int64, at time.Time) (model.OccupancySample, error)
	SaveReservation(ctx context.Context, res model.Reservation) error
	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error)
	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForStudent(ctx context.Context, studentID string) ([]model.PushSubscription, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertCatalog writes the catalog rows, updating entries whose ID exists.
func (s *gormStore) UpsertCatalog(ctx context.Context, locations []model.StudyLocation, rooms []model.Room) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(locations) > 0 {
			logging.For("store").Debugf("Batch upserting %d locations...", len(locations))
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "type", "capacity", "tags", "base_occupancy", "updated_at"}),
			}).Create(&locations).Error; err != nil {
				return fmt.Errorf("batch upsert locations failed: %w", err)
			}
		}
		if len(rooms) > 0 {
			logging.For("store").Debugf("Batch upserting %d rooms...", len(rooms))
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "capacity", "updated_at"}),
			}).Create(&rooms).Error; err != nil {
				return fmt.Errorf("batch upsert rooms failed: %w", err)
			}
		}
		return nil
	})
}

// RecordSnapshots appends one sample per snapshot.
func (s *gormStore) RecordSnapshots(ctx context.Context, observedAt time.Time, snaps []model.LocationSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	samples := make([]model.OccupancySample, 0, len(snaps))
	for _, snap := range snaps {
		samples = append(samples, model.SampleFromSnapshot(snap, observedAt))
	}
	if err := s.db.WithContext(ctx).Create(&samples).Error; err != nil {
		return fmt.Errorf("failed to record %d occupancy samples: %w", len(samples), err)
	}
	return nil
}

// SampleAt returns the last sample of a location observed at or before at.
func (s *gormStore) SampleAt(ctx context.Context, locationID int64, at time.Time) (model.OccupancySample, error) {
	var sample model.OccupancySample
	err := s.db.WithContext(ctx).
		Where("location_id = ? AND observed_at <= ?", locationID, at).
		Order("observed_at DESC").
		First(&sample).Error
	if err != nil {
		return model.OccupancySample{}, notFound(err)
	}
	return sample, nil
}

func (s *gormStore) SaveReservation(ctx context.Context, res model.Reservation) error {
	if err := s.db.WithContext(ctx).Create(&res).Error; err != nil {
		return fmt.Errorf("failed to save reservation %s: %w", res.ID, err)
	}
	return nil
}

func (s *gormStore) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	var res model.Reservation
	if err := s.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return model.Reservation{}, notFound(err)
	}
	return res, nil
}

// ListReservations returns matching reservations, newest first.
func (s *gormStore) ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Model(&model.Reservation{})
	if filter.RoomID != "" {
		q = q.Where("room_id = ?", filter.RoomID)
	}
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var out []model.Reservation
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return out, nil
}

// SaveSubscription creates the subscription or replaces its keys and owner.
func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "student_id"}),
	}).Create(&sub).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return model.PushSubscription{}, notFound(err)
	}
	return sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) SubscriptionsForStudent(ctx context.Context, studentID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("student_id = ?", studentID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
