// Package client provides the HTTP client for the upstream Star Wars
// catalog with a fixed timeout, typed errors, optional retry and a circuit
// breaker.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/swapi-gateway/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Prometheus metrics for upstream operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_upstream_requests_total",
		Help: "Total upstream requests by resource and status",
	}, []string{"resource", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapi_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
	}, []string{"resource"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx and other non-2xx answers.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents 2xx answers whose body is not JSON.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassCircuitOpen represents calls rejected by the circuit breaker.
	ErrorClassCircuitOpen ErrorClass = "circuit_open"
)

// Client is the upstream catalog client.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the catalog root, e.g. "https://swapi.dev/api"
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout bounds every upstream call, retries included
	Timeout time.Duration

	// Retry (0 disables retries)
	MaxRetries     int
	InitialBackoff time.Duration

	// Circuit breaker (0 failures disables the breaker)
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:         baseURL,
		UserAgent:       userAgent,
		Timeout:         15 * time.Second,
		MaxRetries:      0,
		InitialBackoff:  250 * time.Millisecond,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url (got %q)", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %v)", cfg.Timeout)
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	logger := logging.NewLogger("upstream")

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: newBreaker(cfg.BreakerFailures, cfg.BreakerTimeout, logger),
		config:  cfg,
		logger:  logger,
	}, nil
}

// ResourceURL returns the upstream URL of a collection (id == "") or of a
// single entity.
func (c *Client) ResourceURL(resource, id string) string {
	u := c.config.BaseURL + "/" + strings.Trim(resource, "/") + "/"
	if id != "" {
		u += id + "/"
	}
	return u
}

// GetJSON performs a GET of rawURL with query merged into its query string
// and decodes the JSON body. Any 2xx status is a success.
//
// The call is detached from ctx cancellation: once issued it runs until it
// completes or the configured timeout elapses. Values carried by ctx are kept.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values) (any, error) {
	return c.get(ctx, rawURL, query, isSuccess)
}

// GetOK is GetJSON without a query that accepts only 200 OK. Any other
// status, including other 2xx codes, is returned as an *UpstreamError.
func (c *Client) GetOK(ctx context.Context, rawURL string) (any, error) {
	return c.get(ctx, rawURL, nil, isOK)
}

func isSuccess(status int) bool { return status >= 200 && status <= 299 }

func isOK(status int) bool { return status == http.StatusOK }

func (c *Client) get(ctx context.Context, rawURL string, query url.Values, accept func(int) bool) (any, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &UpstreamError{URL: rawURL, ErrorClass: ErrorClassClient, Message: "invalid url", Err: err}
	}
	if len(query) > 0 {
		merged := u.Query()
		for key, values := range query {
			for _, v := range values {
				merged.Add(key, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	target := u.String()
	resource := resourceLabel(u)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Timeout)
	defer cancel()

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	var body any
	call := func() (any, error) {
		err := retryWithBackoff(ctx, retryConfigFor(c.config), c.logger, func() error {
			var reqErr error
			body, reqErr = c.do(ctx, target, resource, accept)
			return reqErr
		})
		return body, err
	}

	if c.breaker == nil {
		return call()
	}

	result, err := c.breaker.Execute(call)
	if err != nil && isBreakerRejection(err) {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassCircuitOpen)).Inc()
		upstreamRequestsTotal.WithLabelValues(resource, "circuit_open").Inc()
		c.logger.Warn().Str("url", target).Msg("Upstream call rejected by circuit breaker")
		return nil, &UpstreamError{
			URL:        target,
			ErrorClass: ErrorClassCircuitOpen,
			Message:    err.Error(),
			Err:        ErrCircuitOpen,
		}
	}
	return result, err
}

// do executes a single GET. Statuses rejected by accept become errors.
func (c *Client) do(ctx context.Context, target, resource string, accept func(int) bool) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &UpstreamError{URL: target, ErrorClass: ErrorClassClient, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().Str("url", target).Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		upstreamRequestsTotal.WithLabelValues(resource, "network_error").Inc()
		c.logger.Warn().Err(err).Str("url", target).Msg("Upstream request failed")
		return nil, &UpstreamError{URL: target, ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	upstreamRequestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()

	if !accept(resp.StatusCode) {
		errClass := classifyStatus(resp.StatusCode)
		upstreamErrorsTotal.WithLabelValues(string(errClass)).Inc()

		event := c.logger.Warn()
		if resp.StatusCode == http.StatusNotFound {
			event = c.logger.Debug()
		}
		event.
			Str("url", target).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Upstream request error")

		return nil, &UpstreamError{
			URL:        target,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().Err(err).Str("url", target).Msg("Upstream body could not be decoded")
		return nil, &UpstreamError{
			URL:        target,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode body",
			Err:        err,
		}
	}

	return body, nil
}

// classifyStatus categorizes a non-2xx status for observability and handling.
func classifyStatus(status int) ErrorClass {
	if status >= 400 && status < 500 {
		return ErrorClassClient
	}
	return ErrorClassServer
}

// resourceLabel returns the resource segment of a catalog URL for metric
// labels, e.g. /api/people/1/ -> "people".
func resourceLabel(u *url.URL) string {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err != nil {
			return s
		}
	}
	return "root"
}
