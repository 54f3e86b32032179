package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		lookupsTotal,
		lookupDuration,
		fallbackChainsTotal,
	)
}

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_requests_total",
			Help: "Calls to the external lookup services by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	lookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookup_request_duration_seconds",
			Help:    "Latency of external lookup calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	fallbackChainsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_chain_runs_total",
			Help: "Short-answer fallback chain runs by terminal state and whether the image fallback was used.",
		},
		[]string{"state", "fell_back"},
	)
)

func ObserveLookup(mode, outcome string, took time.Duration) {
	lookupsTotal.WithLabelValues(norm(mode), norm(outcome)).Inc()
	lookupDuration.WithLabelValues(norm(mode)).Observe(took.Seconds())
}

func IncFallbackChain(state string, fellBack bool) {
	fb := "false"
	if fellBack {
		fb = "true"
	}
	fallbackChainsTotal.WithLabelValues(norm(state), fb).Inc()
}
