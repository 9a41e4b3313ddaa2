package authstate

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Connection owns the Redis client shared by every [Store] in the process.
// Open it with [Connect] (or wrap an existing client with [NewConnection])
// and close it when the host shuts down.
type Connection struct {
	client redis.UniversalClient
	logger zerolog.Logger
	closed atomic.Bool
}

// Connect builds a client from cfg and waits for the first PING.
func Connect(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*Connection, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:           cfg.Addrs,
		Username:        cfg.Username,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MasterName:      cfg.MasterName,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
	})
	conn := NewConnection(client, logger)

	if _, err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	conn.logger.Info().Strs("addrs", cfg.Addrs).Msg("redis client ready")
	return conn, nil
}

// NewConnection wraps an existing client and installs the logging hook.
func NewConnection(client redis.UniversalClient, logger zerolog.Logger) *Connection {
	logger = logger.With().Str("component", "redis").Logger()
	client.AddHook(loggingHook{logger: logger})
	return &Connection{client: client, logger: logger}
}

// Client returns the shared client.
func (c *Connection) Client() redis.UniversalClient {
	return c.client
}

// Ping returns a point-in-time availability check and its latency.
func (c *Connection) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}

// IsReady reports whether the connection is open and answers PING.
func (c *Connection) IsReady(ctx context.Context) bool {
	if c.closed.Load() {
		return false
	}
	_, err := c.Ping(ctx)
	return err == nil
}

// Close closes the client. Calling it again is a no-op.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.client.Close(); err != nil {
		c.logger.Error().Err(err).Msg("redis close failed")
		return err
	}
	c.logger.Info().Msg("disconnected from redis")
	return nil
}

type loggingHook struct {
	logger zerolog.Logger
}

func (h loggingHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Error().Err(err).Str("addr", addr).Msg("redis dial failed")
			return nil, err
		}
		h.logger.Debug().Str("addr", addr).Msg("connected to redis")
		return conn, nil
	}
}

func (h loggingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return next
}

func (h loggingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}
