// Package correlate lists the entities of one resource type that are linked
// from a single entity of another type, e.g. the people appearing in films/1.
package correlate

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Sternrassler/swapi-gateway/pkg/catalog"
	"github.com/Sternrassler/swapi-gateway/pkg/fanout"
	"github.com/Sternrassler/swapi-gateway/pkg/fetch"
	"github.com/Sternrassler/swapi-gateway/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// DefaultWorkers bounds the per-request item fan-out.
const DefaultWorkers = 20

var (
	correlationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_correlations_total",
		Help: "Correlation requests by outcome",
	}, []string{"outcome"}) // "ok", "related_not_found", "no_correlation"

	correlationDroppedItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_correlation_dropped_items_total",
		Help: "Linked items dropped from correlation results because their fetch failed",
	})
)

// Fetcher fetches a single resource.
type Fetcher interface {
	Fetch(ctx context.Context, resource, id string, params url.Values) (*fetch.Result, error)
}

// Result is the outcome of a correlation.
type Result struct {
	// Items are the linked entities in the related entity's listed order.
	Items []any

	// Count equals len(Items).
	Count int

	// Dropped is the number of linked references that could not be fetched.
	Dropped int

	// FromCache is true when every underlying fetch was a cache hit.
	FromCache bool
}

// Correlator resolves related_to queries.
type Correlator struct {
	fetcher Fetcher
	workers int
	logger  zerolog.Logger
}

// New creates a correlator fetching linked items with at most workers
// concurrent fetches.
func New(f Fetcher, workers int) *Correlator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Correlator{
		fetcher: f,
		workers: workers,
		logger:  logging.NewLogger("correlator"),
	}
}

type itemResult struct {
	data      any
	fromCache bool
	ok        bool
}

// Correlate returns every entity of type target referenced by the related
// entity rel.
//
// Errors are *fetch.Error: KindRelatedNotFound when rel cannot be fetched,
// KindNoCorrelation when rel carries no references to target. Linked items
// that fail to fetch are dropped and counted in Result.Dropped.
func (c *Correlator) Correlate(ctx context.Context, target string, rel catalog.Ref) (*Result, error) {
	related, err := c.fetcher.Fetch(ctx, rel.Type, rel.ID, nil)
	if err != nil {
		correlationsTotal.WithLabelValues("related_not_found").Inc()
		return nil, &fetch.Error{
			Kind:     fetch.KindRelatedNotFound,
			Resource: rel.Type,
			ID:       rel.ID,
			Message:  "related resource could not be fetched",
			Err:      err,
		}
	}

	refs, ok := linkedRefs(related.Data, target, rel.Type)
	if !ok {
		correlationsTotal.WithLabelValues("no_correlation").Inc()
		return nil, &fetch.Error{
			Kind:    fetch.KindNoCorrelation,
			Message: fmt.Sprintf("no direct relation between %s and %s", target, rel),
		}
	}

	items := fanout.Map(ctx, refs, c.workers, func(ctx context.Context, _ int, ref string) itemResult {
		id := catalog.TrailingID(ref)
		if !catalog.IsNumericID(id) {
			c.logger.Warn().Str("ref", ref).Msg("Linked reference has no numeric id")
			return itemResult{}
		}

		res, err := c.fetcher.Fetch(ctx, target, id, nil)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("resource", target).
				Str("id", id).
				Msg("Dropping linked item")
			return itemResult{}
		}
		return itemResult{data: res.Data, fromCache: res.FromCache, ok: true}
	})

	result := &Result{
		Items:     make([]any, 0, len(items)),
		FromCache: related.FromCache,
	}
	for _, item := range items {
		if !item.ok {
			result.Dropped++
			continue
		}
		result.Items = append(result.Items, item.data)
		result.FromCache = result.FromCache && item.fromCache
	}
	result.Count = len(result.Items)

	if result.Dropped > 0 {
		correlationDroppedItems.Add(float64(result.Dropped))
	}
	correlationsTotal.WithLabelValues("ok").Inc()

	c.logger.Debug().
		Str("target", target).
		Str("related", rel.String()).
		Int("count", result.Count).
		Int("dropped", result.Dropped).
		Msg("Correlation complete")

	return result, nil
}

// linkedRefs extracts the references to target from the related entity.
// A single string is treated as a one-element list and non-string elements
// are skipped. ok is false when the link field is absent or its references
// point at a different resource type.
func linkedRefs(data any, target, relType string) ([]string, bool) {
	entity, isEntity := data.(catalog.Entity)
	if !isEntity {
		return nil, false
	}

	value, present := entity[catalog.LinkField(target, relType)]
	if !present {
		return nil, false
	}

	var refs []string
	switch v := value.(type) {
	case string:
		refs = []string{v}
	case []any:
		refs = make([]string, 0, len(v))
		for _, item := range v {
			if s, isString := item.(string); isString {
				refs = append(refs, s)
			}
		}
	default:
		return nil, false
	}

	for _, ref := range refs {
		if t := catalog.RefType(ref); t != "" && t != target {
			return nil, false
		}
	}
	return refs, true
}
