package iojobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gnames/gntaxdb/pkg/lifecycle"
)

type metrics struct {
	registry  *prometheus.Registry
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	units     *prometheus.CounterVec
	conflicts *prometheus.GaugeVec
}

// newMetrics registers job metrics on a registry of the Runner, so every
// Runner reports only its own runs.
func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gntaxdb_job_runs_total",
			Help: "Total job runs by outcome",
		}, []string{"job", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gntaxdb_job_duration_seconds",
			Help:    "Job duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 16), // 0.5s to ~4.5h
		}, []string{"job"}),
		units: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gntaxdb_job_units_total",
			Help: "Total units handled by jobs, by outcome",
		}, []string{"job", "outcome"}),
		conflicts: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gntaxdb_job_conflicts",
			Help: "Taxa with more than one parent seen by the last run",
		}, []string{"job"}),
	}
}

func (m *metrics) observe(sum lifecycle.Summary, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.runs.WithLabelValues(sum.Job, status).Inc()
	m.duration.WithLabelValues(sum.Job).Observe(sum.Duration.Seconds())

	for outcome, n := range map[string]int{
		"resolved": sum.Resolved,
		"inserted": sum.Inserted,
		"updated":  sum.Updated,
		"deleted":  sum.Deleted,
		"skipped":  sum.Skipped,
		"failed":   sum.Failed,
	} {
		m.units.WithLabelValues(sum.Job, outcome).Add(float64(n))
	}
	m.conflicts.WithLabelValues(sum.Job).Set(float64(sum.Conflicts))
}
