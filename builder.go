package authstate

import (
	"github.com/MrEthical07/authstate/internal/batch"
	"github.com/MrEthical07/authstate/internal/stores"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder assembles a [Store]. A Builder can build exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	logger zerolog.Logger

	newCredentials CredentialsFactory
	normalize      Normalizer

	built bool
}

// New returns a Builder with [DefaultConfig], a disabled logger and an
// empty-map credentials factory.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client used by every store component.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithConnection uses the client owned by conn.
func (b *Builder) WithConnection(conn *Connection) *Builder {
	if conn != nil {
		b.redis = conn.Client()
	}
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithCredentialsFactory sets the constructor for credentials of sessions
// that have nothing stored yet.
func (b *Builder) WithCredentialsFactory(fn CredentialsFactory) *Builder {
	b.newCredentials = fn
	return b
}

// WithAppStateSyncKeyNormalizer sets the hook applied to decoded
// app-state-sync-key items.
func (b *Builder) WithAppStateSyncKeyNormalizer(fn Normalizer) *Builder {
	b.normalize = fn
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the pipeline latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the store components.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	if b.redis == nil {
		return nil, ErrRedisRequired
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	newCredentials := b.newCredentials
	if newCredentials == nil {
		newCredentials = func() any { return map[string]any{} }
	}

	logger := b.logger.With().Str("namespace", cfg.Namespace).Logger()
	metrics := NewMetrics(cfg.Metrics)
	exec := batch.NewExecutor(b.redis, logger, metrics)

	b.built = true
	return &Store{
		config:         cfg,
		redis:          b.redis,
		logger:         logger,
		metrics:        metrics,
		ids:            stores.NewIDAllocator(b.redis, cfg.Namespace),
		creds:          stores.NewCredentialStore(b.redis, cfg.Namespace, logger),
		keys:           stores.NewKeyMaterialStore(b.redis, exec, cfg.Namespace, b.normalize, logger),
		newCredentials: newCredentials,
	}, nil
}
