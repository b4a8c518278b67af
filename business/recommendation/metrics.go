package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Count of recommendation cache hits by tier.",
		},
		[]string{"tier"},
	)

	cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_cache_misses_total",
		Help: "Count of lookups that missed both cache tiers.",
	})

	cacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_errors_total",
			Help: "Distributed cache failures degraded to miss/no-op, by operation.",
		},
		[]string{"op"},
	)

	computeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_compute_duration_seconds",
		Help:    "Time spent in the recommendation engine per computation.",
		Buckets: prometheus.DefBuckets,
	})

	inflightSharedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_inflight_shared_total",
		Help: "Lookups that attached to an already in-flight computation.",
	})

	poolExhaustedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_pool_exhausted_total",
		Help: "Activity fetches rejected because the access pool stayed full.",
	})

	invalidationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_invalidations_total",
		Help: "Acknowledged cache invalidations across both tiers.",
	})
)

func init() {
	prometheus.MustRegister(
		cacheHitsTotal,
		cacheMissesTotal,
		cacheErrorsTotal,
		computeDuration,
		inflightSharedTotal,
		poolExhaustedTotal,
		invalidationsTotal,
	)
}
