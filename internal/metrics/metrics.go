// Package metrics defines the Prometheus collectors for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the pipeline collectors. A single instance is shared by
// the completer, the stages, and the flow runner.
type Metrics struct {
	Registry *prometheus.Registry

	CompletionRequests *prometheus.CounterVec
	CompletionSeconds  *prometheus.HistogramVec
	CacheHits          prometheus.Counter
	StageRuns          *prometheus.CounterVec
	FlowsStarted       prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		CompletionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iterate_completion_requests_total",
			Help: "Chat completions issued, by model and outcome.",
		}, []string{"model", "outcome"}),
		CompletionSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iterate_completion_duration_seconds",
			Help:    "Chat completion latency.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"model"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "iterate_completion_cache_hits_total",
			Help: "Completions served from the response cache.",
		}),
		StageRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iterate_stage_runs_total",
			Help: "Stage executions, by stage and outcome.",
		}, []string{"stage", "outcome"}),
		FlowsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "iterate_flows_started_total",
			Help: "Flow runs started.",
		}),
	}
}
