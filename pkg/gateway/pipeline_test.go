package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/Sternrassler/swapi-gateway/pkg/catalog"
	"github.com/Sternrassler/swapi-gateway/pkg/correlate"
	"github.com/Sternrassler/swapi-gateway/pkg/fetch"
)

type stubFetcher struct {
	result *fetch.Result
	err    error
	calls  int
	last   url.Values
}

func (s *stubFetcher) Fetch(_ context.Context, _, _ string, params url.Values) (*fetch.Result, error) {
	s.calls++
	s.last = params
	return s.result, s.err
}

type stubCorrelator struct {
	result *correlate.Result
	err    error
	target string
	rel    catalog.Ref
}

func (s *stubCorrelator) Correlate(_ context.Context, target string, rel catalog.Ref) (*correlate.Result, error) {
	s.target = target
	s.rel = rel
	return s.result, s.err
}

var fixedNow = time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

func newTestPipeline(f Fetcher, c Correlator) *Pipeline {
	p := New(f, c, Config{})
	p.now = func() time.Time { return fixedNow }
	return p
}

func heights(items []any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i], _ = item.(map[string]any)["height"].(string)
	}
	return out
}

func page(values ...string) catalog.Entity {
	results := make([]any, len(values))
	for i, v := range values {
		results[i] = map[string]any{"height": v}
	}
	return catalog.Entity{
		"count":    82.0,
		"next":     "https://swapi.dev/api/people/?page=2",
		"previous": nil,
		"results":  results,
	}
}

func TestPipeline_SingleEntity(t *testing.T) {
	luke := catalog.Entity{"name": "Luke Skywalker", "height": "172"}
	f := &stubFetcher{result: &fetch.Result{Data: luke, FromCache: true}}
	p := newTestPipeline(f, nil)

	ctx := WithRequestID(context.Background(), "req-1")
	resp := p.Handle(ctx, Request{Resource: "people", ID: "1", SortBy: "height"})

	if resp.Status != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.Status)
	}
	if !reflect.DeepEqual(resp.Envelope.Results, luke) {
		t.Errorf("Results = %v, want the entity itself", resp.Envelope.Results)
	}

	want := Audit{Timestamp: "2026-05-04T12:30:00Z", Version: DefaultVersion, RequestID: "req-1"}
	if resp.Envelope.Audit != want {
		t.Errorf("Audit = %+v, want %+v", resp.Envelope.Audit, want)
	}

	md := resp.Envelope.Metadata
	if md == nil {
		t.Fatal("Metadata missing on success")
	}
	if !md.Cached || md.Complexity != DefaultComplexity || md.DroppedItems != 0 {
		t.Errorf("Metadata = %+v", md)
	}
}

func TestPipeline_CollectionPage(t *testing.T) {
	data := page("172", "96", "180")
	f := &stubFetcher{result: &fetch.Result{Data: data}}
	p := newTestPipeline(f, nil)

	params := url.Values{"search": {"a"}}
	resp := p.Handle(context.Background(), Request{Resource: "people", Params: params})

	rs, ok := resp.Envelope.Results.(*ResultSet)
	if !ok {
		t.Fatalf("Results = %T, want *ResultSet", resp.Envelope.Results)
	}
	if rs.Count != 3 || len(rs.Results) != 3 {
		t.Errorf("Count = %d, len = %d, want 3", rs.Count, len(rs.Results))
	}
	if rs.Total == nil || *rs.Total != 82 {
		t.Errorf("Total = %v, want 82", rs.Total)
	}
	if rs.Next == nil || *rs.Next != "https://swapi.dev/api/people/?page=2" {
		t.Errorf("Next = %v", rs.Next)
	}
	if rs.Previous != nil {
		t.Errorf("Previous = %v, want nil", *rs.Previous)
	}
	if rs.SortedBy != "" {
		t.Errorf("SortedBy = %q without sort_by", rs.SortedBy)
	}
	if !reflect.DeepEqual(f.last, params) {
		t.Errorf("forwarded params = %v, want %v", f.last, params)
	}
}

func TestPipeline_SortDoesNotTouchCachedData(t *testing.T) {
	data := page("172", "96", "180")
	f := &stubFetcher{result: &fetch.Result{Data: data, FromCache: true}}
	p := newTestPipeline(f, nil)

	resp := p.Handle(context.Background(), Request{Resource: "people", SortBy: "height", Order: "desc"})

	rs := resp.Envelope.Results.(*ResultSet)
	if got := heights(rs.Results); !reflect.DeepEqual(got, []string{"180", "172", "96"}) {
		t.Errorf("sorted heights = %v, want [180 172 96]", got)
	}
	if rs.SortedBy != "height" {
		t.Errorf("SortedBy = %q, want height", rs.SortedBy)
	}
	if got := heights(data["results"].([]any)); !reflect.DeepEqual(got, []string{"172", "96", "180"}) {
		t.Errorf("source results reordered to %v", got)
	}
}

func TestPipeline_SortSkipped(t *testing.T) {
	f := &stubFetcher{result: &fetch.Result{Data: page("172", "unknown", "96")}}
	p := newTestPipeline(f, nil)

	resp := p.Handle(context.Background(), Request{Resource: "people", SortBy: "height"})

	if resp.Status != http.StatusOK {
		t.Fatalf("Status = %d, a failed sort must not fail the request", resp.Status)
	}
	rs := resp.Envelope.Results.(*ResultSet)
	if got := heights(rs.Results); !reflect.DeepEqual(got, []string{"172", "unknown", "96"}) {
		t.Errorf("heights = %v, want original order", got)
	}
	if rs.SortedBy != "" {
		t.Errorf("SortedBy = %q, want empty when the sort is skipped", rs.SortedBy)
	}
}

func TestPipeline_Correlation(t *testing.T) {
	items := []any{
		map[string]any{"height": "172"},
		map[string]any{"height": "96"},
	}
	c := &stubCorrelator{result: &correlate.Result{Items: items, Count: 2, Dropped: 1, FromCache: true}}
	f := &stubFetcher{}
	p := newTestPipeline(f, c)

	resp := p.Handle(context.Background(), Request{Resource: "people", ID: "5", RelatedTo: "/films/1/", SortBy: "height"})

	if resp.Status != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.Status)
	}
	if f.calls != 0 {
		t.Errorf("fetcher called %d times, correlation should not fetch directly", f.calls)
	}
	if c.target != "people" || c.rel != (catalog.Ref{Type: "films", ID: "1"}) {
		t.Errorf("Correlate(%q, %v)", c.target, c.rel)
	}

	rs := resp.Envelope.Results.(*ResultSet)
	if rs.Count != 2 || rs.Total != nil {
		t.Errorf("Count = %d, Total = %v", rs.Count, rs.Total)
	}
	if got := heights(rs.Results); !reflect.DeepEqual(got, []string{"96", "172"}) {
		t.Errorf("heights = %v, want [96 172]", got)
	}
	if md := resp.Envelope.Metadata; !md.Cached || md.DroppedItems != 1 {
		t.Errorf("Metadata = %+v, want cached with 1 dropped item", md)
	}
}

func TestPipeline_Errors(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		fetchErr   error
		correlErr  error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "not found",
			req:        Request{Resource: "people", ID: "99"},
			fetchErr:   &fetch.Error{Kind: fetch.KindNotFound, Resource: "people", ID: "99"},
			wantStatus: http.StatusNotFound,
			wantKind:   "NotFound",
		},
		{
			name:       "external error",
			req:        Request{Resource: "people"},
			fetchErr:   &fetch.Error{Kind: fetch.KindExternal, Resource: "people", Err: errors.New("timeout")},
			wantStatus: http.StatusBadGateway,
			wantKind:   "ExternalError",
		},
		{
			name:       "untyped error",
			req:        Request{Resource: "people"},
			fetchErr:   errors.New("boom"),
			wantStatus: http.StatusBadGateway,
			wantKind:   "ExternalError",
		},
		{
			name:       "related not found",
			req:        Request{Resource: "people", RelatedTo: "films/99"},
			correlErr:  &fetch.Error{Kind: fetch.KindRelatedNotFound, Resource: "films", ID: "99"},
			wantStatus: http.StatusNotFound,
			wantKind:   "RelatedNotFound",
		},
		{
			name:       "no correlation",
			req:        Request{Resource: "planets", RelatedTo: "films/1"},
			correlErr:  &fetch.Error{Kind: fetch.KindNoCorrelation, Message: "no direct relation between planets and films/1"},
			wantStatus: http.StatusBadRequest,
			wantKind:   "NoCorrelation",
		},
		{
			name:       "malformed related_to",
			req:        Request{Resource: "people", RelatedTo: "films"},
			wantStatus: http.StatusBadRequest,
			wantKind:   "InvalidRequest",
		},
		{
			name:       "unknown resource",
			req:        Request{Resource: "species"},
			wantStatus: http.StatusBadRequest,
			wantKind:   "InvalidRequest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{err: tt.fetchErr}
			c := &stubCorrelator{err: tt.correlErr}
			p := newTestPipeline(f, c)

			resp := p.Handle(WithRequestID(context.Background(), "req-err"), tt.req)

			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", resp.Status, tt.wantStatus)
			}
			body, ok := resp.Envelope.Results.(ErrorBody)
			if !ok {
				t.Fatalf("Results = %T, want ErrorBody", resp.Envelope.Results)
			}
			if body.Error != tt.wantKind || body.StatusCode != tt.wantStatus || body.Message == "" {
				t.Errorf("ErrorBody = %+v", body)
			}
			if resp.Envelope.Metadata != nil {
				t.Error("Metadata must be absent on errors")
			}
			if resp.Envelope.Audit.RequestID != "req-err" {
				t.Errorf("Audit.RequestID = %q, errors still carry the audit block", resp.Envelope.Audit.RequestID)
			}
		})
	}
}

func TestPipeline_ErrorMessageHidesCause(t *testing.T) {
	f := &stubFetcher{err: &fetch.Error{
		Kind:     fetch.KindExternal,
		Resource: "people",
		ID:       "1",
		Err:      errors.New("dial tcp 10.0.0.1:443: connection refused"),
	}}
	resp := newTestPipeline(f, nil).Handle(context.Background(), Request{Resource: "people", ID: "1"})

	body := resp.Envelope.Results.(ErrorBody)
	if body.Message != "upstream error (people/1)" {
		t.Errorf("Message = %q", body.Message)
	}
}

func TestPipeline_Health(t *testing.T) {
	p := newTestPipeline(nil, nil)
	resp := p.Health(context.Background())

	if resp.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.Status)
	}
	health, ok := resp.Envelope.Results.(Health)
	if !ok || health.Status != "operational" {
		t.Fatalf("Results = %+v", resp.Envelope.Results)
	}
	if !reflect.DeepEqual(health.Features, []string{"cache", "enrichment", "sorting", "correlation"}) {
		t.Errorf("Features = %v", health.Features)
	}
	if resp.Envelope.Audit.RequestID != LocalRequestID {
		t.Errorf("RequestID = %q, want %q", resp.Envelope.Audit.RequestID, LocalRequestID)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[fetch.Kind]int{
		fetch.KindNotFound:        http.StatusNotFound,
		fetch.KindRelatedNotFound: http.StatusNotFound,
		fetch.KindNoCorrelation:   http.StatusBadRequest,
		fetch.KindInvalidRequest:  http.StatusBadRequest,
		fetch.KindExternal:        http.StatusBadGateway,
	}
	for kind, want := range tests {
		if got := StatusFor(kind); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", kind, got, want)
		}
	}
}
