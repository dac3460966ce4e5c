// Package logging configures the process-wide zerolog logger and hands out
// component-scoped child loggers.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a configured minimum log level.
type LogLevel string

const (
	// LevelTrace adds fan-out completion events.
	LevelTrace LogLevel = "trace"

	// LevelDebug adds cache hits, resolution fallbacks and upstream 404s.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs startup and completed requests.
	LevelInfo LogLevel = "info"

	// LevelWarn logs degraded behaviour only.
	LevelWarn LogLevel = "warn"

	// LevelError logs failures only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger. Loggers obtained from
// NewLogger before Setup keep the previous output.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names map to
// info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ValidLevel reports whether level names a known level.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// NewLogger returns a child of the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug:
//   - Cache hits and fresh fetches (key, latency, ttl)
//   - Name resolution fallbacks (ref returned unchanged)
//   - Upstream 404s
//
// Info:
//   - Completed requests (method, path, status, duration, request_id)
//   - Server startup/shutdown
//
// Warn:
//   - Sort skipped (incomparable values)
//   - Dropped correlation items
//   - Upstream retries, circuit breaker rejections
//
// Error:
//   - Upstream fetch failures surfaced as ExternalError
//   - Configuration and startup failures
//
// Context Fields:
//   - component: upstream, resolver, fetcher, correlator, pipeline, http
//   - resource, id: catalog resource being fetched
//   - key: cache key
//   - error_class: client, server, network, decode, circuit_open
//   - request_id: X-Request-ID of the inbound request
