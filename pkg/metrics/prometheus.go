package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RidesRequested     prometheus.Counter
	RideOutcomes       *prometheus.CounterVec
	SagaDuration       prometheus.Histogram
	CollaboratorErrors *prometheus.CounterVec
	Compensations      *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RidesRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rides_requested_total",
			Help:      "The total number of ride creation requests",
		}),
		RideOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ride_outcomes_total",
			Help:      "Ride creation results by outcome",
		}, []string{"outcome"}),
		SagaDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "saga_duration_seconds",
			Help:      "Time taken to run the ride creation saga",
			Buckets:   prometheus.DefBuckets,
		}),
		CollaboratorErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "The total number of failed collaborator calls",
		}, []string{"collaborator"}),
		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensations_total",
			Help:      "Driver release attempts after a failed saga",
		}, []string{"result"}),
	}
}

// ObserveSaga records the outcome and duration of one saga run
func (m *Metrics) ObserveSaga(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.RideOutcomes.WithLabelValues(outcome).Inc()
	m.SagaDuration.Observe(time.Since(started).Seconds())
}

// CollaboratorError counts a failed call to a collaborator
func (m *Metrics) CollaboratorError(collaborator string) {
	if m == nil {
		return
	}
	m.CollaboratorErrors.WithLabelValues(collaborator).Inc()
}

// Compensation counts a driver release attempt
func (m *Metrics) Compensation(result string) {
	if m == nil {
		return
	}
	m.Compensations.WithLabelValues(result).Inc()
}

// RideRequested counts an incoming ride creation
func (m *Metrics) RideRequested() {
	if m == nil {
		return
	}
	m.RidesRequested.Inc()
}
