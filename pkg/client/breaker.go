package client

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

var upstreamBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "swapi_upstream_circuit_state",
	Help: "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)",
})

// newBreaker builds the upstream circuit breaker. It returns nil when
// failures is zero, which disables the breaker.
func newBreaker(failures uint32, timeout time.Duration, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	if failures == 0 {
		return nil
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "swapi-upstream",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A 404 or other 4xx is a valid answer from a healthy upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || ClassOf(err) == ErrorClassClient
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			upstreamBreakerState.Set(breakerStateValue(to))
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// isBreakerRejection reports whether err came from the breaker refusing a call.
func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
