package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsatlas_runs_total",
			Help: "Total number of reconciliation runs",
		},
		[]string{"operation"},
	)

	OutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsatlas_outcomes_total",
			Help: "Per-resource reconciliation outcomes by status",
		},
		[]string{"operation", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsatlas_run_duration_seconds",
			Help:    "Wall-clock duration of reconciliation runs",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)
)
