package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the single-user recommend HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_request_latency_seconds",
		Help:    "Latency of the recommend handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of recommend requests served, by status class
	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_requests_total",
		Help: "Total number of recommend requests",
	}, []string{"status"})

	// Batch request sizes as observed at the HTTP boundary
	BatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "batch_recommend_size",
		Help:    "Number of user ids per batch-recommend request",
		Buckets: []float64{1, 5, 10, 20, 50},
	})

	InvalidateRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invalidate_cache_requests_total",
		Help: "Total number of cache invalidation requests",
	})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
		BatchSize,
		InvalidateRequests,
	)
}
