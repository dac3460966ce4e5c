package enrich

import (
	"context"

	"github.com/Sternrassler/swapi-gateway/pkg/catalog"
	"github.com/Sternrassler/swapi-gateway/pkg/fanout"
)

// DefaultWorkers bounds concurrent resolutions per Enrich call.
const DefaultWorkers = 10

// NameResolver resolves a reference URL to a display name.
type NameResolver interface {
	Resolve(ctx context.Context, ref string) string
}

// Enricher adds <field>_name / <field>_names siblings to reference fields.
// It resolves exactly one level: reference targets become names, never
// nested entities, so cycles in the reference graph do not matter.
type Enricher struct {
	resolver NameResolver
	workers  int
}

// NewEnricher creates an enricher running at most workers concurrent
// resolutions per call.
func NewEnricher(resolver NameResolver, workers int) *Enricher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Enricher{
		resolver: resolver,
		workers:  workers,
	}
}

// Enrich returns an enriched copy of v. Objects get name fields for their
// references, lists are enriched element-wise with order preserved, and any
// other value is returned unchanged. v is not modified.
//
// Every distinct reference in v is resolved once, on a single pool of at
// most workers concurrent resolutions shared by all elements and fields.
func (e *Enricher) Enrich(ctx context.Context, v any) any {
	names := e.resolveAll(ctx, collectRefs(v, newRefSet()))
	return applyNames(v, names)
}

// EnrichPage enriches a collection page: the page object itself and every
// element of its "results" list. Anything else is handled like Enrich.
func (e *Enricher) EnrichPage(ctx context.Context, v any) any {
	page, ok := v.(map[string]any)
	if !ok {
		return e.Enrich(ctx, v)
	}
	results, ok := page["results"].([]any)
	if !ok {
		return e.Enrich(ctx, v)
	}

	refs := collectRefs(results, collectRefs(page, newRefSet()))
	names := e.resolveAll(ctx, refs)

	out := enrichEntity(page, names)
	out["results"] = applyNames(results, names)
	return out
}

// resolveAll resolves every collected reference on one bounded pool.
func (e *Enricher) resolveAll(ctx context.Context, refs *refSet) map[string]string {
	resolved := fanout.Map(ctx, refs.order, e.workers, func(ctx context.Context, _ int, ref string) string {
		return e.resolver.Resolve(ctx, ref)
	})
	names := make(map[string]string, len(refs.order))
	for i, ref := range refs.order {
		names[ref] = resolved[i]
	}
	return names
}

// refSet collects distinct reference URLs in first-seen order.
type refSet struct {
	order []string
	seen  map[string]struct{}
}

func newRefSet() *refSet {
	return &refSet{seen: make(map[string]struct{})}
}

func (s *refSet) add(ref string) {
	if _, dup := s.seen[ref]; !dup {
		s.seen[ref] = struct{}{}
		s.order = append(s.order, ref)
	}
}

// collectRefs walks lists and entities the same way applyNames does and adds
// every reference it will need a name for.
func collectRefs(v any, refs *refSet) *refSet {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			collectRefs(item, refs)
		}
	case map[string]any:
		for field, value := range t {
			switch catalog.Classify(field, value) {
			case catalog.Reference:
				refs.add(value.(string))
			case catalog.ReferenceList:
				for _, item := range value.([]any) {
					if s, ok := item.(string); ok {
						refs.add(s)
					}
				}
			}
		}
	}
	return refs
}

func applyNames(v any, names map[string]string) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = applyNames(item, names)
		}
		return out
	case map[string]any:
		return enrichEntity(t, names)
	default:
		return v
	}
}

func enrichEntity(entity catalog.Entity, names map[string]string) catalog.Entity {
	out := make(catalog.Entity, len(entity)*2)
	for field, value := range entity {
		out[field] = value
	}
	for field, value := range entity {
		kind := catalog.Classify(field, value)
		switch kind {
		case catalog.Reference:
			out[catalog.NameField(field, kind)] = names[value.(string)]
		case catalog.ReferenceList:
			list := value.([]any)
			resolved := make([]any, len(list))
			for i, item := range list {
				if s, ok := item.(string); ok {
					resolved[i] = names[s]
				} else {
					resolved[i] = item
				}
			}
			out[catalog.NameField(field, kind)] = resolved
		}
	}
	return out
}
