package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SaveAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "academycms", Name: "content_save_attempts_total", Help: "Number of audited save attempts by section."},
		[]string{"section"},
	)
	SaveConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "academycms", Name: "content_save_conflicts_total", Help: "Number of saves aborted by the conflict check, by section."},
		[]string{"section"},
	)
	SaveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "academycms", Name: "content_save_failures_total", Help: "Number of saves that failed at the store, by section."},
		[]string{"section"},
	)
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "academycms", Name: "content_cache_hits_total", Help: "Section cache hits."},
		[]string{"section"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "academycms", Name: "content_cache_misses_total", Help: "Section cache misses."},
		[]string{"section"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "academycms", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "academycms", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SaveAttempts)
	reg.MustRegister(SaveConflicts)
	reg.MustRegister(SaveFailures)
	reg.MustRegister(CacheHits)
	reg.MustRegister(CacheMisses)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
