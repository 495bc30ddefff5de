// Package core implements the governance engine: the option catalog, the
// change request processor, the draft workflow, the template registry, the
// submission state machine, and the access gate. All mutations go through the
// persistent store's transactions and append audit ledger entries in the same
// atomic scope.
package core

import (
	"context"
	"log/slog"
	"time"

	"formcore/pkg/domain"
)

// Service exposes the governance operations over a persistent store.
type Service struct {
	store   domain.PersistentStore
	log     *slog.Logger
	metrics *Metrics
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithLogger sets the structured logger used for operational events.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics recorder for governance operations.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// run wraps a store transaction with operation logging and metrics.
func (s *Service) run(ctx context.Context, operation string, fn func(tx domain.Transaction) error) error {
	start := time.Now()
	_, err := s.store.RunInTransaction(ctx, fn)
	s.observe(ctx, operation, start, err)
	return err
}

func (s *Service) observe(ctx context.Context, operation string, start time.Time, err error) {
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.Observe(operation, elapsed, err)
	}
	if err != nil {
		s.log.WarnContext(ctx, "governance operation failed",
			"operation", operation,
			"duration", elapsed,
			"error", err)
		return
	}
	s.log.InfoContext(ctx, "governance operation applied",
		"operation", operation,
		"duration", elapsed)
}
