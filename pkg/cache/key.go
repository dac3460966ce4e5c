package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey identifies a cached upstream fetch.
type CacheKey struct {
	// Resource is the catalog resource type (e.g., "people")
	Resource string

	// ID is the resource id, empty for collections
	ID string

	// QueryParams are the query parameters forwarded upstream (e.g., {"search": "luke"})
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: swapi:resource:id=1:query1=val1,val2:query2=val
//
// Example:
//
//	swapi:people:page=2:search=sky
func (k CacheKey) String() string {
	parts := []string{"swapi"}

	resource := strings.Trim(k.Resource, "/")
	if resource != "" {
		parts = append(parts, resource)
	}

	if k.ID != "" {
		parts = append(parts, fmt.Sprintf("id=%s", k.ID))
	}

	// Add query params (sorted for determinism)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			values := append([]string(nil), k.QueryParams[key]...)
			sort.Strings(values)
			parts = append(parts, fmt.Sprintf("%s=%s", url.QueryEscape(key), escapeValues(values)))
		}
	}

	return strings.Join(parts, ":")
}

func escapeValues(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = url.QueryEscape(v)
	}
	return strings.Join(escaped, ",")
}
