package authstate

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the store settings. Build one with [DefaultConfig] or
// [LoadConfigFromEnv] and treat it as immutable after [Builder.Build].
type Config struct {
	// Namespace prefixes every key: <Namespace>:session:<id>:...
	Namespace string `env:"NAMESPACE"`
	// TTL applies to the credential key and to every bucket written. Zero
	// means no expiry. Sub-second remainders are rounded up.
	TTL      time.Duration `env:"TTL"`
	LogLevel string        `env:"LOG_LEVEL"`
	Redis    RedisConfig   `envPrefix:"REDIS_"`
	Metrics  MetricsConfig `envPrefix:"METRICS_"`
}

/*
====================================
REDIS CONFIG
====================================
*/

// RedisConfig configures the connection opened by [Connect]. Retry and
// backoff are enforced by the go-redis client, not by this package.
type RedisConfig struct {
	Addrs           []string      `env:"ADDRS" envSeparator:","`
	Username        string        `env:"USERNAME"`
	Password        string        `env:"PASSWORD"`
	DB              int           `env:"DB"`
	MasterName      string        `env:"MASTER_NAME"`
	MaxRetries      int           `env:"MAX_RETRIES"`
	MinRetryBackoff time.Duration `env:"MIN_RETRY_BACKOFF"`
	MaxRetryBackoff time.Duration `env:"MAX_RETRY_BACKOFF"`
	DialTimeout     time.Duration `env:"DIAL_TIMEOUT"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles the in-process counters read by the exporters.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"ENABLE_LATENCY_HISTOGRAMS"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

const envPrefix = "AUTHSTATE_"

func defaultConfig() Config {
	return Config{
		Namespace: "baileys",
		TTL:       0,
		LogLevel:  "info",
		Redis: RedisConfig{
			Addrs:           []string{"127.0.0.1:6379"},
			MaxRetries:      3,
			MinRetryBackoff: 50 * time.Millisecond,
			MaxRetryBackoff: 2 * time.Second,
			DialTimeout:     5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the settings existing deployments run with.
func DefaultConfig() Config {
	return defaultConfig()
}

// LoadConfigFromEnv overlays AUTHSTATE_* environment variables on
// [DefaultConfig] and validates the result. Unset variables keep their
// defaults; AUTHSTATE_REDIS_ADDRS is comma separated.
func LoadConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Redis.Addrs = append([]string(nil), cfg.Redis.Addrs...)
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// Namespace
	if strings.TrimSpace(c.Namespace) == "" {
		return errors.New("Namespace must not be empty")
	}
	if strings.IndexFunc(c.Namespace, unicode.IsSpace) >= 0 {
		return errors.New("Namespace must not contain whitespace")
	}

	// TTL
	if c.TTL < 0 {
		return errors.New("TTL must be >= 0")
	}

	// Logging
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.New("LogLevel must be a zerolog level")
	}

	// Redis
	if c.Redis.DB < 0 {
		return errors.New("Redis DB must be >= 0")
	}
	if c.Redis.MaxRetries < -1 {
		return errors.New("Redis MaxRetries must be >= -1")
	}
	if c.Redis.MinRetryBackoff < 0 || c.Redis.MaxRetryBackoff < 0 {
		return errors.New("Redis retry backoff must be >= 0")
	}
	if c.Redis.MaxRetryBackoff > 0 && c.Redis.MinRetryBackoff > c.Redis.MaxRetryBackoff {
		return errors.New("Redis MinRetryBackoff must be <= MaxRetryBackoff")
	}
	if c.Redis.DialTimeout < 0 {
		return errors.New("Redis DialTimeout must be >= 0")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
