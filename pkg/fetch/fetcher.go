// Package fetch performs cached, enriched fetches of catalog resources.
package fetch

import (
	"context"
	"net/url"
	"time"

	"github.com/Sternrassler/swapi-gateway/pkg/cache"
	"github.com/Sternrassler/swapi-gateway/pkg/client"
	"github.com/Sternrassler/swapi-gateway/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "swapi_fetches_total",
	Help: "Resource fetches by resource and outcome",
}, []string{"resource", "outcome"}) // "cache_hit", "fetched", "not_found", "external_error"

// Upstream is the subset of the catalog client the fetcher needs.
type Upstream interface {
	ResourceURL(resource, id string) string
	GetJSON(ctx context.Context, rawURL string, query url.Values) (any, error)
}

// PageEnricher enriches a decoded entity or collection page.
type PageEnricher interface {
	EnrichPage(ctx context.Context, v any) any
}

// Result is a successful fetch.
type Result struct {
	// Data is the enriched payload. It is shared with the cache and must
	// not be modified.
	Data any

	// FromCache is true when no upstream call was made
	FromCache bool

	// Latency is the upstream round trip including enrichment, 0 on cache hits
	Latency time.Duration
}

// Fetcher fetches one resource or collection, consulting and populating the
// cache and enriching fresh payloads before they are stored.
type Fetcher struct {
	upstream Upstream
	enricher PageEnricher
	cache    *cache.Manager
	ttl      time.Duration
	logger   zerolog.Logger
}

// New creates a fetcher storing enriched payloads in c for ttl.
func New(upstream Upstream, enricher PageEnricher, c *cache.Manager, ttl time.Duration) *Fetcher {
	return &Fetcher{
		upstream: upstream,
		enricher: enricher,
		cache:    c,
		ttl:      ttl,
		logger:   logging.NewLogger("fetcher"),
	}
}

// Fetch returns the enriched resource (id != "") or collection page.
// Failures are returned as *Error with KindNotFound or KindExternal and are
// never cached.
func (f *Fetcher) Fetch(ctx context.Context, resource, id string, params url.Values) (*Result, error) {
	key := cache.CacheKey{
		Resource:    resource,
		ID:          id,
		QueryParams: params,
	}.String()

	if data, ok := f.cache.Get(key); ok {
		fetchesTotal.WithLabelValues(resource, "cache_hit").Inc()
		f.logger.Debug().Str("key", key).Msg("Cache hit")
		return &Result{Data: data, FromCache: true}, nil
	}

	start := time.Now()
	body, err := f.upstream.GetJSON(ctx, f.upstream.ResourceURL(resource, id), params)
	if err != nil {
		if client.IsNotFound(err) {
			fetchesTotal.WithLabelValues(resource, "not_found").Inc()
			return nil, &Error{Kind: KindNotFound, Resource: resource, ID: id, Err: err}
		}

		fetchesTotal.WithLabelValues(resource, "external_error").Inc()
		f.logger.Error().
			Err(err).
			Str("resource", resource).
			Str("id", id).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Upstream fetch failed")
		return nil, &Error{Kind: KindExternal, Resource: resource, ID: id, Err: err}
	}

	enriched := f.enricher.EnrichPage(ctx, body)
	f.cache.Set(key, enriched, f.ttl)
	latency := time.Since(start)

	fetchesTotal.WithLabelValues(resource, "fetched").Inc()
	f.logger.Debug().
		Str("key", key).
		Dur("latency", latency).
		Dur("ttl", f.ttl).
		Msg("Fetched and cached resource")

	return &Result{Data: enriched, Latency: latency}, nil
}
