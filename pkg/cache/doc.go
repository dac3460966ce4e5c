// Package cache provides the gateway's in-process TTL cache.
//
// A single Manager is created at process start and injected into the
// resolver and the fetcher. It holds two kinds of entries:
//
//   - reference URL -> display name (written by the resolver)
//   - CacheKey string -> enriched upstream payload (written by the fetcher)
//
// # Basic Usage
//
//	manager := cache.NewManager()
//
//	key := cache.CacheKey{
//		Resource:    "people",
//		QueryParams: url.Values{"search": []string{"sky"}},
//	}
//
//	if v, ok := manager.Get(key.String()); ok {
//		// Cache hit
//	}
//
//	manager.Set(key.String(), payload, time.Hour)
//
// # Expiry
//
// There is no background sweeper. An entry whose TTL has elapsed is treated
// as absent and removed by the Get that discovers it. There is no size bound
// either, so the TTL is the only eviction pressure. Nothing survives a
// restart.
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - swapi_cache_hits_total{layer="memory"} - Cache hits
//   - swapi_cache_misses_total - Cache misses
//   - swapi_cache_expirations_total - Entries evicted on read after expiry
//   - swapi_cache_entries{layer="memory"} - Stored entries
package cache
