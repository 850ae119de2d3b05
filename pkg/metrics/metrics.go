package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wolfeye", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wolfeye", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wolfeye", Name: "cache_hits_total", Help: "Number of cache hits by operation."},
		[]string{"op"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wolfeye", Name: "cache_misses_total", Help: "Number of cache misses by operation."},
		[]string{"op"},
	)
	SchedulerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wolfeye", Name: "scheduler_runs_total", Help: "Number of scheduler task executions by task and outcome."},
		[]string{"task", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(CacheHits)
	reg.MustRegister(CacheMisses)
	reg.MustRegister(SchedulerRuns)
}
