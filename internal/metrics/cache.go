package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, cacheEvictionsTotal) }

var (
	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_cache_requests_total",
			Help: "Image cache hits and misses.",
		},
		[]string{"result"}, // hit, miss
	)

	cacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_cache_evictions_total",
			Help: "Image cache entries removed by the eviction task.",
		},
		[]string{"reason"}, // age, capacity, missing
	)
)

func IncCacheRequest(hit bool) {
	r := "miss"
	if hit {
		r = "hit"
	}
	cacheRequestsTotal.WithLabelValues(r).Inc()
}

func AddCacheEvictions(reason string, n int) {
	if n <= 0 {
		return
	}
	cacheEvictionsTotal.WithLabelValues(norm(reason)).Add(float64(n))
}
