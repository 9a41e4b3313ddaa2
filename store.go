package authstate

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/authstate/internal/stores"
	"github.com/MrEthical07/authstate/keyspace"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store persists sessions of one namespace. It is safe for concurrent use;
// all state lives in Redis.
type Store struct {
	config  Config
	redis   redis.UniversalClient
	logger  zerolog.Logger
	metrics *Metrics

	ids   *stores.IDAllocator
	creds *stores.CredentialStore
	keys  *stores.KeyMaterialStore

	newCredentials CredentialsFactory
}

// Open returns a handle to a session. Without opts.SessionID a fresh id is
// allocated from the namespace counter. Stored credentials are loaded; when
// there are none, or they cannot be read, the credentials factory provides
// them and [Session.Created] reports true. Only id allocation can fail.
func (s *Store) Open(ctx context.Context, opts OpenOptions) (*Session, error) {
	id := opts.SessionID
	if id == "" {
		next, err := s.ids.Next(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to allocate session id")
			return nil, err
		}
		s.metrics.Inc(MetricSessionIDAllocated)
		id = next
	}

	creds, err := s.creds.Read(ctx, id)
	if err != nil {
		s.metrics.Inc(MetricCredentialsReadFailure)
		s.logger.Warn().Err(err).Str("session_id", id).Msg("using fresh credentials")
	}

	created := creds == nil
	if created {
		creds = s.newCredentials()
		s.metrics.Inc(MetricSessionCreated)
		s.logger.Info().Str("session_id", id).Msg("created session")
	} else {
		s.metrics.Inc(MetricSessionLoaded)
		s.logger.Info().Str("session_id", id).Msg("loaded session")
	}

	return &Session{
		store:   s,
		id:      id,
		ttl:     s.effectiveTTL(opts.TTL),
		created: created,
		creds:   creds,
	}, nil
}

// Delete removes the credentials and every bucket of session id with one
// DEL and returns how many keys existed.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	keys := keyspace.New(s.config.Namespace, id).All()
	n, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to delete session")
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.metrics.Inc(MetricSessionDeleted)
	s.logger.Info().Str("session_id", id).Int64("keys", n).Msg("deleted session")
	return n, nil
}

// Clear removes every bucket of session id. The credentials stay.
func (s *Store) Clear(ctx context.Context, id string) error {
	if err := s.keys.Clear(ctx, id); err != nil {
		return err
	}
	s.metrics.Inc(MetricSessionCleared)
	s.logger.Info().Str("session_id", id).Msg("cleared keys")
	return nil
}

// Namespace returns the key namespace of the store.
func (s *Store) Namespace() string {
	return s.config.Namespace
}

// Metrics returns the live metrics.
func (s *Store) Metrics() *Metrics {
	return s.metrics
}

// MetricsSnapshot returns a point-in-time copy of the metrics.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

func (s *Store) effectiveTTL(override time.Duration) time.Duration {
	switch {
	case override < 0:
		return 0
	case override > 0:
		return override
	default:
		return s.config.TTL
	}
}
