// Package metrics exposes Prometheus collectors for the analysis pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all pipeline collectors. Register once, share everywhere.
type Metrics struct {
	PacketsGenerated prometheus.Counter
	Predictions      *prometheus.CounterVec
	Threats          *prometheus.CounterVec
	RecordsDropped   prometheus.Counter
	TickOverruns     prometheus.Counter
	TicksCompleted   prometheus.Counter
	DegradedMode     prometheus.Gauge
	EventLogSize     prometheus.Gauge
	TickDuration     prometheus.Histogram
}

// New creates the pipeline collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PacketsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netguard",
			Name:      "packets_generated_total",
			Help:      "Total packet records emitted by the source.",
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netguard",
			Name:      "predictions_total",
			Help:      "Total classifier predictions by label.",
		}, []string{"label"}),
		Threats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netguard",
			Name:      "threats_total",
			Help:      "Total threat events by severity.",
		}, []string{"severity"}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netguard",
			Name:      "records_dropped_total",
			Help:      "Total malformed records dropped before classification.",
		}),
		TickOverruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netguard",
			Name:      "tick_overruns_total",
			Help:      "Total analyzer ticks skipped because the previous tick overran.",
		}),
		TicksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netguard",
			Name:      "ticks_completed_total",
			Help:      "Total analyzer ticks completed.",
		}),
		DegradedMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netguard",
			Name:      "classifier_degraded",
			Help:      "1 when the classifier runs rule-based fallback, 0 when the model is loaded.",
		}),
		EventLogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netguard",
			Name:      "eventlog_size",
			Help:      "Current number of entries in the event log.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "netguard",
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one analyzer tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	reg.MustRegister(
		m.PacketsGenerated,
		m.Predictions,
		m.Threats,
		m.RecordsDropped,
		m.TickOverruns,
		m.TicksCompleted,
		m.DegradedMode,
		m.EventLogSize,
		m.TickDuration,
	)
	return m
}

// NewDefault registers against the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
