package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/swapi-gateway/internal/config"
	"github.com/Sternrassler/swapi-gateway/pkg/cache"
	"github.com/Sternrassler/swapi-gateway/pkg/client"
	"github.com/Sternrassler/swapi-gateway/pkg/correlate"
	"github.com/Sternrassler/swapi-gateway/pkg/enrich"
	"github.com/Sternrassler/swapi-gateway/pkg/fetch"
	"github.com/Sternrassler/swapi-gateway/pkg/gateway"
	"github.com/Sternrassler/swapi-gateway/pkg/logging"
	"github.com/Sternrassler/swapi-gateway/pkg/telemetry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LoggingConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Gateway failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.InitTracer("swapi-gateway", os.Stdout)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to shut down tracer")
			}
		}()
	}

	handler, err := newHandler(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("upstream", cfg.Upstream.BaseURL).
			Dur("cache_ttl", cfg.Cache.TTL).
			Str("version", cfg.API.Version).
			Msg("Starting SWAPI gateway")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler wires the cache, upstream client and pipeline into the HTTP
// router.
func newHandler(cfg *config.Config) (http.Handler, error) {
	up, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	c := cache.NewManager()
	resolver := enrich.NewResolver(up, c, cfg.Cache.TTL)
	fetcher := fetch.New(up, enrich.NewEnricher(resolver, cfg.Workers.Enrich), c, cfg.Cache.TTL)
	correlator := correlate.New(fetcher, cfg.Workers.Correlate)

	pipeline := gateway.New(fetcher, correlator, gateway.Config{
		Version:    cfg.API.Version,
		Complexity: gateway.DefaultComplexity,
	})

	return gateway.NewRouter(pipeline), nil
}
