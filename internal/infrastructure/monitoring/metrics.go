package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics of the risk engine.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	ScoresComputed  *prometheus.CounterVec
	SchedulerCycles *prometheus.CounterVec
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_requests_total",
				Help: "Total number of processed risk requests.",
			},
			[]string{"kind", "result"},
		),
		RequestLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "risk_request_latency_seconds",
				Help:    "Latency of risk request handling.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ScoresComputed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_scores_computed_total",
				Help: "Total number of user risk scores computed, by level.",
			},
			[]string{"risk_level"},
		),
		SchedulerCycles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risk_scheduler_cycles_total",
				Help: "Total number of periodic recalculation cycles.",
			},
			[]string{"result"},
		),
	}
}

// RecordRequest records a handled risk request.
func (m *Metrics) RecordRequest(kind, result string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(kind, result).Inc()
	m.RequestLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordScore records a computed user score by level.
func (m *Metrics) RecordScore(riskLevel string) {
	m.ScoresComputed.WithLabelValues(riskLevel).Inc()
}

// RecordSchedulerCycle records the outcome of one recalculation cycle.
func (m *Metrics) RecordSchedulerCycle(failed bool) {
	result := "ok"
	if failed {
		result = "error"
	}
	m.SchedulerCycles.WithLabelValues(result).Inc()
}
