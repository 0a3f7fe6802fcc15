// Package refresher runs the occupancy simulator on a fixed period and keeps
// the latest view of every study location.
package refresher

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"study-spotter-backend/config"
	"study-spotter-backend/internal/logging"
	"study-spotter-backend/internal/metrics"
	"study-spotter-backend/internal/model"
	"study-spotter-backend/internal/occupancy"
	"study-spotter-backend/internal/store"
)

// Service recomputes location snapshots on a timer and on demand.
type Service struct {
	cfg     *config.SimulatorConfig
	catalog []model.StudyLocation
	store   store.Store
	metrics *metrics.Metrics
	src     occupancy.RandomSource
	now     func() time.Time
	log     *logrus.Entry

	mu          sync.RWMutex
	latest      []model.LocationSnapshot
	lastUpdated time.Time
	hooks       []func()
}

// Option configures a Service.
type Option func(*Service)

// WithStore records every cycle's snapshots as occupancy samples.
func WithStore(st store.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithMetrics publishes refresh metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRandomSource replaces the seeded source from the config.
func WithRandomSource(src occupancy.RandomSource) Option {
	return func(s *Service) { s.src = src }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a refresher over catalog.
func NewService(cfg *config.SimulatorConfig, catalog []model.StudyLocation, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		catalog: catalog,
		now:     time.Now,
		log:     logging.For("refresher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = occupancy.NewSource(cfg.Seed)
	}
	return s
}

// OnRefresh registers fn to run after every refresh cycle.
func (s *Service) OnRefresh(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Start runs the periodic task in the background. The returned stop function
// cancels it and waits for the loop to exit.
func (s *Service) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// Run refreshes once, then every configured interval until ctx is done.
// When the simulator is disabled only the initial refresh happens.
func (s *Service) Run(ctx context.Context) {
	s.RefreshOnce(ctx, metrics.TriggerTimer)

	if !s.cfg.Enabled {
		s.log.Info("Periodic refresh is disabled. Not starting timer.")
		return
	}
	s.log.WithField("interval", s.cfg.Interval.String()).Info("Starting refresh timer...")

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Refresher shutting down.")
			return
		case <-timer.C:
			s.RefreshOnce(ctx, metrics.TriggerTimer)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// RefreshOnce computes a new view, replaces the previous one and returns it
// together with its timestamp. Store failures are logged and do not affect
// the in-memory view.
func (s *Service) RefreshOnce(ctx context.Context, trigger string) ([]model.LocationSnapshot, time.Time) {
	s.mu.Lock()
	now := s.localNow()
	snaps := occupancy.Compute(s.catalog, now, s.src)
	s.latest = snaps
	s.lastUpdated = now
	hooks := append([]func(){}, s.hooks...)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"trigger": trigger, "locations": len(snaps)}).Debug("refresh cycle finished")

	if s.metrics != nil {
		s.metrics.ObserveRefresh(trigger, snaps)
	}
	if s.store != nil {
		if err := s.store.RecordSnapshots(ctx, now.UTC(), snaps); err != nil {
			s.log.WithError(err).Warn("failed to record occupancy samples")
		}
	}
	for _, fn := range hooks {
		fn()
	}
	return cloneSnapshots(snaps), now
}

// Latest returns the current view and when it was computed. Before the first
// refresh the slice is empty and the time is zero.
func (s *Service) Latest() ([]model.LocationSnapshot, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshots(s.latest), s.lastUpdated
}

// Location returns the catalog entry with the given ID.
func (s *Service) Location(id int64) (model.StudyLocation, bool) {
	for _, l := range s.catalog {
		if l.ID == id {
			return l, true
		}
	}
	return model.StudyLocation{}, false
}

func (s *Service) localNow() time.Time {
	now := s.now()
	if s.cfg.Location != nil {
		now = now.In(s.cfg.Location)
	}
	return now
}

func cloneSnapshots(snaps []model.LocationSnapshot) []model.LocationSnapshot {
	out := make([]model.LocationSnapshot, len(snaps))
	copy(out, snaps)
	return out
}
