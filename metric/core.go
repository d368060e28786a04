package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all semhome platform metrics.
type Metrics struct {
	// Pipeline metrics
	ObservationsTotal *prometheus.CounterVec
	EventsTotal       *prometheus.CounterVec
	RuleFiresTotal    *prometheus.CounterVec
	CorrelationsTotal *prometheus.CounterVec
	HistoryDropped    prometheus.Counter
	SubscriberErrors  *prometheus.CounterVec
	SweepDuration     prometheus.Histogram
	QueueDepth        prometheus.Gauge

	// Composition metrics
	CompositionsTotal prometheus.Counter
	CompositionStatus *prometheus.CounterVec
	ModelCallFailures prometheus.Counter

	// Component status
	ComponentStatus *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all platform metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ObservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "observations",
				Name:      "total",
				Help:      "Total observations built, by sensor and quality",
			},
			[]string{"sensor", "quality"},
		),

		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "events",
				Name:      "total",
				Help:      "Total semantic events emitted, by kind and severity",
			},
			[]string{"kind", "severity"},
		),

		RuleFiresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "tracker",
				Name:      "rule_fires_total",
				Help:      "Total complex events generated, by rule name",
			},
			[]string{"rule"},
		),

		CorrelationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "tracker",
				Name:      "correlations_total",
				Help:      "Total correlation events generated, by correlation type",
			},
			[]string{"type"},
		),

		HistoryDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "tracker",
				Name:      "history_dropped_total",
				Help:      "Events evicted from the bounded history buffer",
			},
		),

		SubscriberErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "tracker",
				Name:      "subscriber_errors_total",
				Help:      "Subscriber notification failures, by subscriber name",
			},
			[]string{"subscriber"},
		),

		SweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "semhome",
				Subsystem: "collector",
				Name:      "sweep_duration_seconds",
				Help:      "Duration of a full sensor sampling sweep",
				Buckets:   prometheus.DefBuckets,
			},
		),

		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "semhome",
				Subsystem: "collector",
				Name:      "queue_depth",
				Help:      "Observations waiting in the drain queue",
			},
		),

		CompositionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "compose",
				Name:      "requests_total",
				Help:      "Total composition requests handled",
			},
		),

		CompositionStatus: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "compose",
				Name:      "status_total",
				Help:      "Composition outcomes, by plan status",
			},
			[]string{"status"},
		),

		ModelCallFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semhome",
				Subsystem: "compose",
				Name:      "model_failures_total",
				Help:      "Model-call failures masked by the canned fallback",
			},
		),

		ComponentStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "semhome",
				Subsystem: "component",
				Name:      "status",
				Help:      "Component status (0=stopped, 1=running)",
			},
			[]string{"component"},
		),
	}
}

// collectors returns every metric for bulk registration.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ObservationsTotal,
		m.EventsTotal,
		m.RuleFiresTotal,
		m.CorrelationsTotal,
		m.HistoryDropped,
		m.SubscriberErrors,
		m.SweepDuration,
		m.QueueDepth,
		m.CompositionsTotal,
		m.CompositionStatus,
		m.ModelCallFailures,
		m.ComponentStatus,
	}
}
