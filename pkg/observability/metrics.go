package observability

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/quiver/pkg/domain"
)

// Metrics groups the collectors of an editor host.
type Metrics struct {
	Mutations   *prometheus.CounterVec
	Events      *prometheus.CounterVec
	Flushes     prometheus.Counter
	GraphStates prometheus.Histogram
	Sessions    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration (useful in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiver_mutations_total",
				Help: "Total number of graph mutations by kind",
			},
			[]string{"kind"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiver_events_total",
				Help: "Total number of input events dispatched by type",
			},
			[]string{"type"},
		),
		Flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiver_flushes_total",
			Help: "Total number of document flushes after a mutation",
		}),
		GraphStates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiver_graph_states",
			Help:    "Number of states in the graph at each flush",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiver_sessions_active",
			Help: "Number of live editing sessions",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Mutations, m.Events, m.Flushes, m.GraphStates, m.Sessions)
	}
	return m
}

// ObserveEvent counts a dispatched event.
func (m *Metrics) ObserveEvent(ev domain.Event) {
	if ev == nil {
		return
	}
	m.Events.WithLabelValues(string(ev.Type())).Inc()
}

// Hooks returns mutation hooks recording into m and logging through logger.
// next, if set, is called after recording.
func (m *Metrics) Hooks(logger *slog.Logger, next domain.MutationHooks) domain.MutationHooks {
	return domain.MutationHooks{
		OnMutation: func(ctx context.Context, mut domain.Mutation) {
			m.Mutations.WithLabelValues(string(mut.Kind)).Inc()
			if logger != nil {
				logger.Info("mutation",
					"kind", mut.Kind,
					"state_id", mut.StateID,
					"source", mut.Source,
					"target", mut.Target,
				)
			}
			if next.OnMutation != nil {
				next.OnMutation(ctx, mut)
			}
		},
		OnFlush: func(ctx context.Context, snap *domain.Snapshot) {
			m.Flushes.Inc()
			if snap != nil {
				m.GraphStates.Observe(float64(len(snap.States)))
			}
			if next.OnFlush != nil {
				next.OnFlush(ctx, snap)
			}
		},
	}
}
