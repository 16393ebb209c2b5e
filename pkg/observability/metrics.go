// Package observability exposes Prometheus metrics for the dispatcher.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts dispatch outcomes and flow completions. A nil *Metrics is
// valid and records nothing, so wiring stays optional.
type Metrics struct {
	dispatches *prometheus.CounterVec
	finished   *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewMetrics creates and registers the dispatcher metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_dispatches_total",
			Help: "Dispatched events by scope and result.",
		}, []string{"scope", "result"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_flows_finished_total",
			Help: "Completed flow sessions by flow.",
		}, []string{"flow"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbor_dispatch_duration_seconds",
			Help:    "Wall time of one dispatch.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.dispatches, m.finished, m.duration)
	return m
}

// Dispatch records one finished dispatch.
func (m *Metrics) Dispatch(scope, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(scope, result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// FlowFinished records one completed session.
func (m *Metrics) FlowFinished(flowID string) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(flowID).Inc()
}
