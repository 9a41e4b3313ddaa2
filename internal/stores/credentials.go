package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authstate/codec"
	"github.com/MrEthical07/authstate/keyspace"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CredentialStore reads and writes the single credential blob of a session.
type CredentialStore struct {
	redis     redis.UniversalClient
	namespace string
	logger    zerolog.Logger
}

func NewCredentialStore(client redis.UniversalClient, namespace string, logger zerolog.Logger) *CredentialStore {
	return &CredentialStore{
		redis:     client,
		namespace: namespace,
		logger:    logger.With().Str("component", "credentials").Logger(),
	}
}

// Read returns the decoded credentials of session id, or nil when none are
// stored. Store and codec failures are logged and returned; the value is nil
// in that case too.
func (s *CredentialStore) Read(ctx context.Context, id string) (any, error) {
	key := keyspace.New(s.namespace, id).Creds()

	data, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to read credentials")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	creds, err := codec.Decode(data)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to decode credentials")
		return nil, err
	}
	return creds, nil
}

// Write stores creds under session id. A positive ttl becomes SET ... EX.
func (s *CredentialStore) Write(ctx context.Context, id string, creds any, ttl time.Duration) error {
	encoded, err := codec.Encode(creds)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to encode credentials")
		return err
	}

	key := keyspace.New(s.namespace, id).Creds()
	if err := s.redis.Set(ctx, key, encoded, WholeSeconds(ttl)).Err(); err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to write credentials")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// WholeSeconds rounds a positive ttl up to whole seconds so the wire command
// is always EX/EXPIRE rather than PX/PEXPIRE. Non-positive ttls mean no
// expiry and map to 0.
func WholeSeconds(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if rem := ttl % time.Second; rem != 0 {
		ttl += time.Second - rem
	}
	return ttl
}
