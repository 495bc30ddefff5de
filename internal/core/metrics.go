package core

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"formcore/pkg/domain"
)

// Metrics records governance operation outcomes and latencies.
type Metrics struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewMetrics constructs and registers the governance metric set.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formcore",
			Subsystem: "governance",
			Name:      "operations_total",
			Help:      "Governance operations by operation name and outcome.",
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "formcore",
			Subsystem: "governance",
			Name:      "operation_duration_seconds",
			Help:      "Governance operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.durations)
	}
	return m
}

// Observe records one completed operation.
func (m *Metrics) Observe(operation string, elapsed time.Duration, err error) {
	m.operations.WithLabelValues(operation, outcomeLabel(err)).Inc()
	m.durations.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		validation domain.ValidationError
		authz      domain.AuthorizationError
		notFound   domain.NotFoundError
		conflict   domain.StateConflictError
	)
	switch {
	case errors.As(err, &validation):
		return "validation_error"
	case errors.As(err, &authz):
		return "authorization_error"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &conflict):
		return "state_conflict"
	default:
		return "error"
	}
}
