// Package metrics exposes Prometheus collectors for the awardfeed pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	exportJobsTotal        *prometheus.CounterVec
	pollIterationsTotal    *prometheus.CounterVec
	httpRequestsTotal      *prometheus.CounterVec
	recordsTotal           *prometheus.CounterVec
	jobWaitDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		exportJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awardfeed_export_jobs_total",
				Help: "Total export jobs submitted, labeled by award group and final status.",
			},
			[]string{"group", "status"},
		)

		pollIterationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awardfeed_poll_iterations_total",
				Help: "Total job-status poll iterations, labeled by reported status.",
			},
			[]string{"status"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awardfeed_http_requests_total",
				Help: "Total outbound HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		recordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awardfeed_records_total",
				Help: "Award records seen per group, labeled by pipeline stage.",
			},
			[]string{"group", "stage"},
		)

		jobWaitDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "awardfeed_job_wait_duration_seconds",
				Help:    "Histogram of time spent waiting for export jobs to finish.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"group"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveExportJob increments the export job counter for the given group
// and final status.
func ObserveExportJob(group, status string) {
	Init()
	exportJobsTotal.WithLabelValues(group, status).Inc()
}

// ObservePoll counts one status poll iteration.
func ObservePoll(status string) {
	Init()
	pollIterationsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest increments the outbound request counter.
func ObserveHTTPRequest(method string, code int) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// ObserveRecords adds to the per-group record counter for a stage
// ("fetched" or "kept").
func ObserveRecords(group, stage string, count int) {
	Init()
	if count > 0 {
		recordsTotal.WithLabelValues(group, stage).Add(float64(count))
	}
}

// ObserveJobWait records how long a group's export job took to finish.
func ObserveJobWait(group string, d time.Duration) {
	Init()
	jobWaitDurationSeconds.WithLabelValues(group).Observe(d.Seconds())
}
