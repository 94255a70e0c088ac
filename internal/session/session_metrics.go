package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the session core.
type Metrics struct {
	EventsApplied    *prometheus.CounterVec
	SnapshotReloads  *prometheus.CounterVec
	SnapshotDuration prometheus.Histogram
	ActionSubmits    *prometheus.CounterVec
	ResidentsTracked prometheus.Gauge
	PushConnects     prometheus.Counter
	PushDisconnects  prometheus.Counter
	PushDropped      prometheus.Counter
}

// NewMetrics registers and returns session metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardview_events_applied_total",
			Help: "Push events folded into the projection, by event kind.",
		}, []string{"kind"}),
		SnapshotReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardview_snapshot_reloads_total",
			Help: "Full snapshot loads by outcome.",
		}, []string{"outcome"}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wardview_snapshot_duration_seconds",
			Help:    "Duration of successful snapshot loads.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}),
		ActionSubmits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wardview_action_submits_total",
			Help: "Staff action submissions by action and outcome.",
		}, []string{"action", "outcome"}),
		ResidentsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wardview_residents_tracked",
			Help: "Residents in the current projection.",
		}),
		PushConnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardview_push_connects_total",
			Help: "Successful push channel connections, including reconnects.",
		}),
		PushDisconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardview_push_disconnects_total",
			Help: "Push channel disconnects after exhausting reconnect attempts.",
		}),
		PushDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardview_push_dropped_total",
			Help: "Push messages dropped because they could not be decoded.",
		}),
	}

	reg.MustRegister(
		m.EventsApplied,
		m.SnapshotReloads,
		m.SnapshotDuration,
		m.ActionSubmits,
		m.ResidentsTracked,
		m.PushConnects,
		m.PushDisconnects,
		m.PushDropped,
	)

	return m
}
