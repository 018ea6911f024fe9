package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(callbacksTotal) }

var callbacksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "planner_callbacks_total",
		Help: "Planner callbacks ingested, labeled by job type and outcome.",
	},
	// outcome: 'success', 'failed', 'rejected' (payload invalid), 'duplicate'
	[]string{"type", "outcome"},
)

func IncCallback(jobType, outcome string) {
	callbacksTotal.WithLabelValues(norm(jobType), norm(outcome)).Inc()
}
