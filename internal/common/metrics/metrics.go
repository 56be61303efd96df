// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_search_requests_total",
			Help: "Search provider calls by outcome (ok, http_error, parse_error, timeout, transport_error)",
		},
		[]string{"outcome"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_search_duration_seconds",
			Help:    "Latency of search provider calls in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"intent"},
	)

	ResetDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "data_reset_deletions_total",
			Help: "Per-collection delete attempts during a data reset",
		},
		[]string{"collection", "outcome"},
	)

	ResetRowsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "data_reset_rows_deleted_total",
			Help: "Rows removed by data resets",
		},
		[]string{"collection"},
	)

	SampleDataRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_data_runs_total",
			Help: "Sample data generations by outcome (seeded, updated, error)",
		},
		[]string{"outcome"},
	)

	ErrorsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_handled_total",
			Help: "Failures surfaced to users through the error handler",
		},
		[]string{"context"},
	)

	ReportsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "error_reports_total",
			Help: "Error-level log entries shipped to external sinks",
		},
		[]string{"sink", "outcome"},
	)
)
