package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer (memory)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_cache_hits_total",
			Help: "Total number of gateway cache hits",
		},
		[]string{"layer"}, // "memory"
	)

	// CacheMisses tracks cache misses, including expired entries
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapi_cache_misses_total",
			Help: "Total number of gateway cache misses",
		},
	)

	// CacheExpirations tracks entries evicted on read after their TTL elapsed
	CacheExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapi_cache_expirations_total",
			Help: "Total number of cache entries evicted because they expired",
		},
	)

	// CacheEntries tracks the number of stored entries by layer
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swapi_cache_entries",
			Help: "Current number of entries held by the gateway cache",
		},
		[]string{"layer"}, // "memory"
	)
)
