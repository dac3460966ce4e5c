// Package metrics exposes the gateway's Prometheus metrics.
// All metrics are defined in their respective packages (cache, client, enrich,
// fetch, correlate, gateway) and registered via promauto on the default
// registry, which keeps the packages free of import cycles.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Gateway Metrics (pkg/gateway):
//   - swapi_gateway_requests_total{resource, status} (Counter): Pipeline invocations by resource and HTTP status
//   - swapi_gateway_request_duration_seconds{resource} (Histogram): Pipeline latency
//   - swapi_sort_skipped_total (Counter): Sorts skipped because values were not comparable
//
// Cache Metrics (pkg/cache):
//   - swapi_cache_hits_total{layer="memory"} (Counter): Cache hits
//   - swapi_cache_misses_total (Counter): Cache misses, including expired entries
//   - swapi_cache_expirations_total (Counter): Entries evicted on read after their TTL
//   - swapi_cache_entries{layer="memory"} (Gauge): Entries currently stored
//
// Fetch and Enrichment Metrics (pkg/fetch, pkg/enrich, pkg/correlate):
//   - swapi_fetches_total{resource, outcome} (Counter): cache_hit, fetched, not_found, external_error
//   - swapi_name_resolutions_total{outcome} (Counter): cache_hit, resolved, fallback
//   - swapi_correlations_total{outcome} (Counter): ok, related_not_found, no_correlation
//   - swapi_correlation_dropped_items_total (Counter): Linked items dropped after a failed fetch
//
// Upstream Metrics (pkg/client):
//   - swapi_upstream_requests_total{resource, status} (Counter): Upstream calls by resource and HTTP status
//   - swapi_upstream_request_duration_seconds{resource} (Histogram): Upstream latency
//   - swapi_upstream_errors_total{class} (Counter): client, server, network, decode, circuit_open
//   - swapi_upstream_retries_total{error_class} (Counter): Retry attempts
//   - swapi_upstream_retry_exhausted_total{error_class} (Counter): Calls that used every attempt
//   - swapi_upstream_circuit_state (Gauge): 0 closed, 1 half-open, 2 open
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(swapi_cache_hits_total[5m])) /
//   (sum(rate(swapi_cache_hits_total[5m])) + sum(rate(swapi_cache_misses_total[5m])))
//
//   # Degraded name resolution
//   rate(swapi_name_resolutions_total{outcome="fallback"}[5m])
//
//   # Upstream error rate by class
//   sum by (class) (rate(swapi_upstream_errors_total[5m]))
//
//   # P95 gateway latency
//   histogram_quantile(0.95, rate(swapi_gateway_request_duration_seconds_bucket[5m]))
