// Package config loads the gateway configuration from defaults, an optional
// YAML file and SWGW_ environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/swapi-gateway/pkg/client"
	"github.com/Sternrassler/swapi-gateway/pkg/logging"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every configuration environment variable.
	// SWGW_UPSTREAM_BASEURL sets upstream.baseurl.
	EnvPrefix = "SWGW_"

	// EnvConfigFile names a YAML file to load. When unset, config.yaml in the
	// working directory is loaded if it exists.
	EnvConfigFile = "SWGW_CONFIG_FILE"

	defaultConfigFile = "config.yaml"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Cache    CacheConfig    `koanf:"cache"`
	Workers  WorkersConfig  `koanf:"workers"`
	Log      LogConfig      `koanf:"log"`
	Tracing  TracingConfig  `koanf:"tracing"`
	API      APIConfig      `koanf:"api"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type UpstreamConfig struct {
	BaseURL         string        `koanf:"baseurl"`
	Timeout         time.Duration `koanf:"timeout"`
	UserAgent       string        `koanf:"useragent"`
	MaxRetries      int           `koanf:"maxretries"`
	Backoff         time.Duration `koanf:"backoff"`
	BreakerFailures uint32        `koanf:"breakerfailures"` // 0 disables the breaker
	BreakerTimeout  time.Duration `koanf:"breakertimeout"`
}

type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

type WorkersConfig struct {
	Enrich    int `koanf:"enrich"`
	Correlate int `koanf:"correlate"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

type TracingConfig struct {
	Enabled bool `koanf:"enabled"`
}

type APIConfig struct {
	Version string `koanf:"version"`
}

var defaults = map[string]any{
	"server.port":              8080,
	"upstream.baseurl":         "https://swapi.dev/api",
	"upstream.timeout":         "15s",
	"upstream.useragent":       "swapi-gateway/2.6.2",
	"upstream.maxretries":      0,
	"upstream.backoff":         "250ms",
	"upstream.breakerfailures": 5,
	"upstream.breakertimeout":  "30s",
	"cache.ttl":                "1h",
	"workers.enrich":           10,
	"workers.correlate":        20,
	"log.level":                "info",
	"log.pretty":               false,
	"tracing.enabled":          false,
	"api.version":              "2.6.2",
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	path, explicit := os.LookupEnv(EnvConfigFile)
	if !explicit || path == "" {
		path = defaultConfigFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// A missing default file is fine, a missing explicit one is not
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port))
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, errors.New("upstream.baseurl is required"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("upstream.timeout must be > 0 (got %v)", c.Upstream.Timeout))
	}
	if c.Upstream.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("upstream.maxretries must be >= 0 (got %d)", c.Upstream.MaxRetries))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be > 0 (got %v)", c.Cache.TTL))
	}
	if c.Workers.Enrich <= 0 {
		errs = append(errs, fmt.Errorf("workers.enrich must be > 0 (got %d)", c.Workers.Enrich))
	}
	if c.Workers.Correlate <= 0 {
		errs = append(errs, fmt.Errorf("workers.correlate must be > 0 (got %d)", c.Workers.Correlate))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not a known level", c.Log.Level))
	}

	return errors.Join(errs...)
}

// ClientConfig returns the upstream client configuration.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:         c.Upstream.BaseURL,
		UserAgent:       c.Upstream.UserAgent,
		Timeout:         c.Upstream.Timeout,
		MaxRetries:      c.Upstream.MaxRetries,
		InitialBackoff:  c.Upstream.Backoff,
		BreakerFailures: c.Upstream.BreakerFailures,
		BreakerTimeout:  c.Upstream.BreakerTimeout,
	}
}

// LoggingConfig returns the logger configuration, writing to stderr.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
