package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

// StoreMetrics are the collectors fed by WithMetrics.
type StoreMetrics struct {
	Duration *prometheus.HistogramVec
	Errors   *prometheus.CounterVec
}

// NewStoreMetrics creates the collectors and registers them on reg, if non-nil.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiver_store_operation_seconds",
			Help:    "Duration of session store operations.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiver_store_errors_total",
			Help: "Failed session store operations, not counting missing sessions.",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.Duration, m.Errors)
	}
	return m
}

type metricsStore struct {
	next ports.GraphStore
	m    *StoreMetrics
}

// WithMetrics times every operation and counts failures.
func WithMetrics(m *StoreMetrics) Middleware {
	return func(next ports.GraphStore) ports.GraphStore {
		return &metricsStore{next: next, m: m}
	}
}

func (s *metricsStore) Unwrap() ports.GraphStore { return s.next }

func (s *metricsStore) observe(op string, start time.Time, err error) {
	s.m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.m.Errors.WithLabelValues(op).Inc()
	}
}

func (s *metricsStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	start := time.Now()
	err := s.next.Save(ctx, sessionID, snap)
	s.observe("save", start, err)
	return err
}

func (s *metricsStore) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	start := time.Now()
	snap, err := s.next.Load(ctx, sessionID)
	s.observe("load", start, err)
	return snap, err
}

func (s *metricsStore) Delete(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := s.next.Delete(ctx, sessionID)
	s.observe("delete", start, err)
	return err
}

func (s *metricsStore) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := s.next.List(ctx)
	s.observe("list", start, err)
	return ids, err
}
