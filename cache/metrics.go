package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache-aside read outcomes partitioned by entity type
	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"entity"},
	)

	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"entity"},
	)

	// Store failures swallowed by the fail-open policy
	cacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache store errors recovered as misses",
		},
		[]string{"op"},
	)

	cascadeDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_cascade_deletes_total",
			Help: "Total number of cascade invalidations performed",
		},
		[]string{"entity"},
	)
)
