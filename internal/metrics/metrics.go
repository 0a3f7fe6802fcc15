package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"study-spotter-backend/internal/model"
)

const namespace = "studyspotter"

// Refresh triggers.
const (
	TriggerTimer  = "timer"
	TriggerManual = "manual"
)

// Metrics groups the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	occupancy          *prometheus.GaugeVec
	availableSeats     *prometheus.GaugeVec
	refreshes          *prometheus.CounterVec
	reservations       prometheus.Counter
	rejectedSelections *prometheus.CounterVec
	notifications      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry that also carries the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "location_occupancy_ratio",
			Help:      "Estimated occupancy of a study location, 0-1.",
		}, []string{"location_id", "location"}),
		availableSeats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "location_available_seats",
			Help:      "Estimated free seats at a study location.",
		}, []string{"location_id", "location"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Occupancy refresh cycles by trigger.",
		}, []string{"trigger"}),
		reservations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Completed room reservations.",
		}),
		rejectedSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_selections_total",
			Help:      "Room selections rejected, by reason.",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Push notifications attempted, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.occupancy, m.availableSeats, m.refreshes,
		m.reservations, m.rejectedSelections, m.notifications,
	)
	return m
}

// ObserveRefresh records a refresh cycle and the resulting per-location values.
func (m *Metrics) ObserveRefresh(trigger string, snaps []model.LocationSnapshot) {
	m.refreshes.WithLabelValues(trigger).Inc()
	for _, s := range snaps {
		id := strconv.FormatInt(s.ID, 10)
		m.occupancy.WithLabelValues(id, s.Name).Set(s.Occupancy)
		m.availableSeats.WithLabelValues(id, s.Name).Set(float64(s.Available))
	}
}

// ReservationCompleted counts a successful reservation.
func (m *Metrics) ReservationCompleted() {
	m.reservations.Inc()
}

// SelectionRejected counts a rejected room selection.
func (m *Metrics) SelectionRejected(reason string) {
	m.rejectedSelections.WithLabelValues(reason).Inc()
}

// NotificationSent counts a delivery attempt by result, for example "sent",
// "expired" or "mail_failed".
func (m *Metrics) NotificationSent(result string) {
	m.notifications.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
