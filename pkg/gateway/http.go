package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Fixed response headers.
const (
	HeaderComplexity = "X-API-Complexity-Level"
	ComplexityLevel  = "Expert"
)

// ResourceHandler serves GET requests for one resource type, both the
// collection and single entities.
func (p *Pipeline) ResourceHandler(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := p.Handle(r.Context(), ParseRequest(resource, r))
		writeEnvelope(w, resp, p.logger)
	}
}

// HealthHandler serves the health envelope.
func (p *Pipeline) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, p.Health(r.Context()), p.logger)
}

func writeEnvelope(w http.ResponseWriter, resp Response, logger zerolog.Logger) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set(HeaderComplexity, ComplexityLevel)
	w.WriteHeader(resp.Status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp.Envelope); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
}

// LoggingMiddleware logs each completed request with its status, duration
// and request id.
func LoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info().
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Msg("Request completed")
		})
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
