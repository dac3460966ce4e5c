// Package enrich attaches human-readable names next to the reference fields
// of catalog entities.
package enrich

import (
	"context"
	"net/url"
	"time"

	"github.com/Sternrassler/swapi-gateway/pkg/cache"
	"github.com/Sternrassler/swapi-gateway/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "swapi_name_resolutions_total",
	Help: "Reference name resolutions by outcome",
}, []string{"outcome"}) // "cache_hit", "resolved", "fallback"

// Upstream is the subset of the catalog client the resolver needs. GetOK
// fails on any status other than 200.
type Upstream interface {
	GetOK(ctx context.Context, rawURL string) (any, error)
}

// Resolver turns a reference URL into the display name of its target.
// Failures are never returned: the URL itself is the fallback name.
type Resolver struct {
	upstream Upstream
	cache    *cache.Manager
	ttl      time.Duration
	group    singleflight.Group
	logger   zerolog.Logger
}

// NewResolver creates a resolver that caches names in c for ttl.
func NewResolver(upstream Upstream, c *cache.Manager, ttl time.Duration) *Resolver {
	return &Resolver{
		upstream: upstream,
		cache:    c,
		ttl:      ttl,
		logger:   logging.NewLogger("resolver"),
	}
}

// Resolve returns the name or title of the entity ref points at. Anything
// that is not an absolute http(s) URL is returned unchanged, as is ref itself
// when the lookup fails.
func (r *Resolver) Resolve(ctx context.Context, ref string) string {
	if !IsReference(ref) {
		return ref
	}

	if v, ok := r.cache.Get(ref); ok {
		if name, ok := v.(string); ok && name != "" {
			resolutionsTotal.WithLabelValues("cache_hit").Inc()
			return name
		}
	}

	// Concurrent lookups of the same URL share one upstream call.
	v, _, _ := r.group.Do(ref, func() (any, error) {
		return r.lookup(ctx, ref), nil
	})
	return v.(string)
}

func (r *Resolver) lookup(ctx context.Context, ref string) string {
	body, err := r.upstream.GetOK(ctx, ref)
	if err != nil {
		resolutionsTotal.WithLabelValues("fallback").Inc()
		r.logger.Debug().Err(err).Str("url", ref).Msg("Name resolution failed, keeping url")
		return ref
	}

	entity, ok := body.(map[string]any)
	if !ok {
		resolutionsTotal.WithLabelValues("fallback").Inc()
		r.logger.Debug().Str("url", ref).Msg("Reference target is not an object, keeping url")
		return ref
	}

	name := displayName(entity, ref)
	r.cache.Set(ref, name, r.ttl)
	resolutionsTotal.WithLabelValues("resolved").Inc()

	r.logger.Debug().
		Str("url", ref).
		Str("name", name).
		Dur("ttl", r.ttl).
		Msg("Resolved reference name")

	return name
}

// displayName picks the first non-empty of name and title.
func displayName(entity map[string]any, fallback string) string {
	for _, field := range []string{"name", "title"} {
		if s, ok := entity[field].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// IsReference reports whether s looks like an absolute http(s) URL.
func IsReference(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
