package gateway

import (
	"time"

	"github.com/Sternrassler/swapi-gateway/pkg/catalog"
)

// Envelope is the outer shape of every response, success or failure.
type Envelope struct {
	Results  any       `json:"results"`
	Audit    Audit     `json:"audit"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Audit identifies the response.
type Audit struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	RequestID string `json:"requestId"`
}

// Metadata describes how a successful response was produced.
type Metadata struct {
	LatencyMs    int64  `json:"latencyMs"`
	Cached       bool   `json:"cached"`
	Complexity   string `json:"complexity"`
	DroppedItems int    `json:"droppedItems,omitempty"`
}

// ErrorBody is carried in Envelope.Results on failure.
type ErrorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// ResultSet is a list result. Count always equals len(Results); Total is
// the upstream's count of matching entities across all pages.
type ResultSet struct {
	Results  []any   `json:"results"`
	Count    int     `json:"count"`
	SortedBy string  `json:"sortedBy,omitempty"`
	Total    *int    `json:"total,omitempty"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous,omitempty"`
}

// Health is the body of the health endpoint.
type Health struct {
	Status   string   `json:"status"`
	Features []string `json:"features"`
}

func newAudit(now time.Time, version, requestID string) Audit {
	return Audit{
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   version,
		RequestID: requestID,
	}
}

// asResultSet converts an upstream collection page into a ResultSet.
// Anything else, including a single entity, is returned unchanged.
func asResultSet(data any) any {
	page, ok := data.(catalog.Entity)
	if !ok {
		return data
	}
	results, ok := page["results"].([]any)
	if !ok {
		return data
	}

	rs := &ResultSet{
		Results:  results,
		Count:    len(results),
		Next:     optionalString(page["next"]),
		Previous: optionalString(page["previous"]),
	}
	if total, ok := page["count"].(float64); ok {
		n := int(total)
		rs.Total = &n
	}
	return rs
}

func optionalString(v any) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}
