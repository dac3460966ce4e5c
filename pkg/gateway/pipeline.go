// Package gateway assembles fetching, correlation and sorting into one
// request pipeline and serves it over HTTP.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/swapi-gateway/pkg/catalog"
	"github.com/Sternrassler/swapi-gateway/pkg/correlate"
	"github.com/Sternrassler/swapi-gateway/pkg/fetch"
	"github.com/Sternrassler/swapi-gateway/pkg/logging"
	"github.com/Sternrassler/swapi-gateway/pkg/sorter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_gateway_requests_total",
		Help: "Pipeline invocations by resource and HTTP status",
	}, []string{"resource", "status"})

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapi_gateway_request_duration_seconds",
		Help:    "Pipeline latency by resource",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})

	sortSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_sort_skipped_total",
		Help: "Sorts skipped because the values could not be compared",
	})
)

// Defaults reported in every envelope.
const (
	DefaultVersion    = "2.6.2"
	DefaultComplexity = "Expert (Sorting + Correlation)"
)

// HealthFeatures lists the capabilities reported by the health endpoint.
var HealthFeatures = []string{"cache", "enrichment", "sorting", "correlation"}

// Fetcher fetches a resource or collection.
type Fetcher interface {
	Fetch(ctx context.Context, resource, id string, params url.Values) (*fetch.Result, error)
}

// Correlator resolves related_to queries.
type Correlator interface {
	Correlate(ctx context.Context, target string, rel catalog.Ref) (*correlate.Result, error)
}

// Config holds the values reported in envelopes.
type Config struct {
	Version    string
	Complexity string
}

// DefaultConfig returns the default envelope configuration.
func DefaultConfig() Config {
	return Config{
		Version:    DefaultVersion,
		Complexity: DefaultComplexity,
	}
}

// Response is a status code plus the envelope to encode.
type Response struct {
	Status   int
	Envelope Envelope
}

// Pipeline handles normalized requests.
type Pipeline struct {
	fetcher    Fetcher
	correlator Correlator
	config     Config
	now        func() time.Time
	logger     zerolog.Logger
}

// New creates a pipeline. Empty config fields fall back to the defaults.
func New(f Fetcher, c Correlator, cfg Config) *Pipeline {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Complexity == "" {
		cfg.Complexity = DefaultComplexity
	}
	return &Pipeline{
		fetcher:    f,
		correlator: c,
		config:     cfg,
		now:        time.Now,
		logger:     logging.NewLogger("pipeline"),
	}
}

// Handle runs one request through the pipeline. Failures are returned as
// error envelopes, never as Go errors.
func (p *Pipeline) Handle(ctx context.Context, req Request) Response {
	start := p.now()
	requestID := GetRequestID(ctx)

	resp := p.handle(ctx, req, start, requestID)

	label := req.Resource
	if !catalog.IsResource(label) {
		label = "unknown"
	}
	gatewayRequestsTotal.WithLabelValues(label, strconv.Itoa(resp.Status)).Inc()
	gatewayRequestDuration.WithLabelValues(label).Observe(p.now().Sub(start).Seconds())
	return resp
}

func (p *Pipeline) handle(ctx context.Context, req Request, start time.Time, requestID string) Response {
	if !catalog.IsResource(req.Resource) {
		return p.failure(requestID, &fetch.Error{
			Kind:    fetch.KindInvalidRequest,
			Message: fmt.Sprintf("unknown resource %q", req.Resource),
		})
	}

	var (
		data    any
		cached  bool
		dropped int
	)

	if req.RelatedTo != "" {
		rel, err := catalog.ParseRef(req.RelatedTo)
		if err != nil {
			return p.failure(requestID, &fetch.Error{
				Kind:    fetch.KindInvalidRequest,
				Message: fmt.Sprintf("related_to must be {type}/{id}, got %q", req.RelatedTo),
				Err:     err,
			})
		}

		res, err := p.correlator.Correlate(ctx, req.Resource, rel)
		if err != nil {
			return p.failure(requestID, err)
		}
		data = &ResultSet{Results: res.Items, Count: res.Count}
		cached = res.FromCache
		dropped = res.Dropped
	} else {
		res, err := p.fetcher.Fetch(ctx, req.Resource, req.ID, req.Params)
		if err != nil {
			return p.failure(requestID, err)
		}
		data = asResultSet(res.Data)
		cached = res.FromCache
	}

	if rs, ok := data.(*ResultSet); ok && req.SortBy != "" {
		p.sort(rs, req.SortBy, req.Order, requestID)
	}

	return Response{
		Status: http.StatusOK,
		Envelope: Envelope{
			Results: data,
			Audit:   newAudit(p.now(), p.config.Version, requestID),
			Metadata: &Metadata{
				LatencyMs:    p.now().Sub(start).Milliseconds(),
				Cached:       cached,
				Complexity:   p.config.Complexity,
				DroppedItems: dropped,
			},
		},
	}
}

// sort orders a copy of rs.Results. Results may be shared with the cache
// and are never reordered in place.
func (p *Pipeline) sort(rs *ResultSet, field string, dir sorter.Direction, requestID string) {
	items := append([]any(nil), rs.Results...)
	if err := sorter.Sort(items, field, dir); err != nil {
		sortSkippedTotal.Inc()
		p.logger.Warn().
			Err(err).
			Str("sort_by", field).
			Str("request_id", requestID).
			Msg("Sort skipped")
		return
	}
	rs.Results = items
	rs.SortedBy = field
}

// Health returns the health envelope.
func (p *Pipeline) Health(ctx context.Context) Response {
	return Response{
		Status: http.StatusOK,
		Envelope: Envelope{
			Results: Health{
				Status:   "operational",
				Features: HealthFeatures,
			},
			Audit: newAudit(p.now(), p.config.Version, GetRequestID(ctx)),
		},
	}
}

func (p *Pipeline) failure(requestID string, err error) Response {
	kind := fetch.KindOf(err)
	if kind == "" {
		kind = fetch.KindExternal
	}
	status := StatusFor(kind)

	message := err.Error()
	var fe *fetch.Error
	if errors.As(err, &fe) {
		message = fe.Detail()
	}

	event := p.logger.Debug()
	if status >= http.StatusInternalServerError {
		event = p.logger.Warn()
	}
	event.Err(err).
		Str("kind", string(kind)).
		Int("status", status).
		Str("request_id", requestID).
		Msg("Request failed")

	return Response{
		Status: status,
		Envelope: Envelope{
			Results: ErrorBody{
				Error:      string(kind),
				Message:    message,
				StatusCode: status,
			},
			Audit: newAudit(p.now(), p.config.Version, requestID),
		},
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind fetch.Kind) int {
	switch kind {
	case fetch.KindNotFound, fetch.KindRelatedNotFound:
		return http.StatusNotFound
	case fetch.KindNoCorrelation, fetch.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
