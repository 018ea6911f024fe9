package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(jobsCreatedTotal, jobsRetriedTotal, dispatchLatencyMs, staleProcessingJobs)
}

var jobsCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "plan_jobs_created_total",
		Help: "Total number of plan jobs created, labeled by job type.",
	},
	[]string{"type"}, // 'generation', 'modification'
)

var jobsRetriedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "plan_jobs_retried_total",
		Help: "Total number of failed plan jobs re-opened for retry.",
	},
	[]string{"type"},
)

var dispatchLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "planner_dispatch_latency_ms",
		Help:    "Latency of outbound planner dispatch calls in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
	[]string{"type", "success"},
)

var staleProcessingJobs = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "plan_jobs_stale_processing",
		Help: "Number of jobs stuck in processing past the staleness threshold.",
	},
)

func IncJobCreated(jobType string) {
	jobsCreatedTotal.WithLabelValues(norm(jobType)).Inc()
}

func IncJobRetried(jobType string) {
	jobsRetriedTotal.WithLabelValues(norm(jobType)).Inc()
}

func ObserveDispatch(jobType string, d time.Duration, success bool) {
	dispatchLatencyMs.WithLabelValues(norm(jobType), strconv.FormatBool(success)).
		Observe(float64(d / time.Millisecond))
}

func SetStaleJobs(n int) {
	staleProcessingJobs.Set(float64(n))
}
