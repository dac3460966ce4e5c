package gateway

import (
	"net/http"

	"github.com/Sternrassler/swapi-gateway/pkg/catalog"
	"github.com/Sternrassler/swapi-gateway/pkg/fetch"
	"github.com/Sternrassler/swapi-gateway/pkg/logging"
	"github.com/Sternrassler/swapi-gateway/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter routes every catalog resource, /health and /metrics to p.
func NewRouter(p *Pipeline) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logging.NewLogger("http")))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "swapi-gateway")
	})

	r.Get("/health", p.HealthHandler)
	r.Handle("/metrics", metrics.Handler())

	for _, resource := range catalog.Resources {
		h := p.ResourceHandler(resource)
		r.Get("/"+resource, h)
		r.Get("/"+resource+"/*", h)
	}

	r.NotFound(p.notFound)

	return r
}

func (p *Pipeline) notFound(w http.ResponseWriter, r *http.Request) {
	resp := p.failure(GetRequestID(r.Context()), &fetch.Error{
		Kind:    fetch.KindNotFound,
		Message: "no route for " + r.URL.Path,
	})
	writeEnvelope(w, resp, p.logger)
}
