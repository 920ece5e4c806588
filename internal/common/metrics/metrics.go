package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_source_results_total",
			Help: "Programs returned per source, by serving mode (live, cache, fallback)",
		},
		[]string{"source", "mode"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "discovery_fetch_duration_seconds",
			Help: "Duration of live source fetches in seconds",
		},
		[]string{"source"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Result cache hits by source",
		},
		[]string{"source"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Result cache misses by source (expired, absent, or storage error)",
		},
		[]string{"source"},
	)

	RateLimiterWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rate_limiter_wait_seconds",
			Help: "Time spent waiting on the per-domain rate limiter",
		},
		[]string{"domain"},
	)

	AnalyzeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyze_requests_total",
			Help: "Company analysis requests by outcome",
		},
		[]string{"status"},
	)
)
