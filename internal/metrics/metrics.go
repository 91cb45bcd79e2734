// Package metrics exposes Prometheus metrics for sync runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jonathan/jobtrail/internal/pipeline"
)

// Metrics provides observability for the sync pipeline.
type Metrics struct {
	// Messages seen by outcome
	MessageOutcome *prometheus.CounterVec

	// Sync runs by result
	RunsTotal *prometheus.CounterVec

	// End-to-end sync run latency
	RunDuration prometheus.Histogram
}

// New creates a Metrics instance with all pipeline metrics registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		MessageOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrail_messages_total",
			Help: "Total processed messages by outcome",
		}, []string{"outcome"}), // outcome: "created", "updated", "duplicate", "extraction_failure", "error"

		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrail_sync_runs_total",
			Help: "Total sync runs by result",
		}, []string{"result"}), // result: "ok", "error"

		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobtrail_sync_run_duration_seconds",
			Help:    "Duration of full sync runs including message fetching",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
	}
}

// RecordRun records the counters of one completed sync run.
func (m *Metrics) RecordRun(c pipeline.Counters, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDuration.Observe(c.Duration().Seconds())

	m.MessageOutcome.WithLabelValues("created").Add(float64(c.Created))
	m.MessageOutcome.WithLabelValues("updated").Add(float64(c.Updated))
	m.MessageOutcome.WithLabelValues("duplicate").Add(float64(c.Duplicates))
	m.MessageOutcome.WithLabelValues("extraction_failure").Add(float64(c.ExtractionFailures))
	m.MessageOutcome.WithLabelValues("error").Add(float64(c.Errors))
}
