package stores

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/MrEthical07/authstate/codec"
	"github.com/MrEthical07/authstate/internal/batch"
	"github.com/MrEthical07/authstate/keyspace"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Normalizer post-processes decoded app-state-sync-key items into the shape
// the protocol layer expects.
type Normalizer func(v any) (any, error)

// KeyMaterialStore reads and writes per-category key buckets. Each bucket is
// one Redis hash; items are its fields.
type KeyMaterialStore struct {
	redis     redis.UniversalClient
	exec      *batch.Executor
	namespace string
	normalize Normalizer
	logger    zerolog.Logger
}

func NewKeyMaterialStore(
	client redis.UniversalClient,
	exec *batch.Executor,
	namespace string,
	normalize Normalizer,
	logger zerolog.Logger,
) *KeyMaterialStore {
	return &KeyMaterialStore{
		redis:     client,
		exec:      exec,
		namespace: namespace,
		normalize: normalize,
		logger:    logger.With().Str("component", "keymaterial").Logger(),
	}
}

// Get fetches ids from the category bucket of session id with one HMGET.
// Missing items map to nil. On any store, codec or normalizer failure every
// requested id maps to nil and the failure is returned alongside.
func (s *KeyMaterialStore) Get(ctx context.Context, id string, category keyspace.Category, ids []string) (map[string]any, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, category)
	}
	if len(ids) == 0 {
		return map[string]any{}, nil
	}

	out, err := s.get(ctx, id, category, ids)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", id).
			Stringer("category", category).
			Msg("failed to get keys")
		return allNil(ids), err
	}
	return out, nil
}

func (s *KeyMaterialStore) get(ctx context.Context, id string, category keyspace.Category, ids []string) (map[string]any, error) {
	key := keyspace.New(s.namespace, id).Bucket(category)
	values, err := s.redis.HMGet(ctx, key, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	out := make(map[string]any, len(ids))
	for i, itemID := range ids {
		raw, ok := values[i].(string)
		if !ok || raw == "" {
			out[itemID] = nil
			continue
		}

		v, err := codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", itemID, err)
		}
		if category == keyspace.AppStateSyncKey && s.normalize != nil && v != nil {
			v, err = s.normalize(v)
			if err != nil {
				return nil, fmt.Errorf("normalize item %q: %w", itemID, err)
			}
		}
		out[itemID] = v
	}
	return out, nil
}

// Set applies updates to the buckets of session id in one pipeline. Values
// become HSET fields; values that encode as null (nil, nil pointers, nil maps
// and slices) become HDEL fields. With a positive ttl
// each bucket that received an HSET is followed by EXPIRE; buckets that only
// lose fields keep their current expiry. Nothing is sent for empty updates.
//
// Every value is encoded before anything is sent, so an encoding failure
// leaves the store untouched. A *batch.BatchError means some commands were
// applied and some were not.
func (s *KeyMaterialStore) Set(ctx context.Context, id string, updates map[keyspace.Category]map[string]any, ttl time.Duration) error {
	b, err := s.stage(id, updates, WholeSeconds(ttl))
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to stage key updates")
		return err
	}
	if b.Len() == 0 {
		return nil
	}

	if _, err := s.exec.Exec(ctx, b); err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to set keys")
		return err
	}
	return nil
}

type pendingBucket struct {
	key     string
	sets    []batch.Field
	deletes []string
}

func (s *KeyMaterialStore) stage(id string, updates map[keyspace.Category]map[string]any, ttl time.Duration) (*batch.Batch, error) {
	for category := range updates {
		if !category.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, category)
		}
	}
	keys := keyspace.New(s.namespace, id)

	// Category order, then item order, keeps the pipeline deterministic.
	pending := make([]pendingBucket, 0, len(updates))
	for _, category := range keyspace.Categories() {
		items, ok := updates[category]
		if !ok || len(items) == 0 {
			continue
		}

		itemIDs := make([]string, 0, len(items))
		for itemID := range items {
			itemIDs = append(itemIDs, itemID)
		}
		sort.Strings(itemIDs)

		p := pendingBucket{key: keys.Bucket(category)}
		for _, itemID := range itemIDs {
			encoded, err := codec.Encode(items[itemID])
			if err != nil {
				return nil, fmt.Errorf("encode %s item %q: %w", category, itemID, err)
			}
			// Typed nils encode as null too and are deletes, not values.
			if encoded == codec.Null {
				p.deletes = append(p.deletes, itemID)
				continue
			}
			p.sets = append(p.sets, batch.Field{Name: itemID, Value: encoded})
		}
		pending = append(pending, p)
	}
	b := batch.New()
	for _, p := range pending {
		if len(p.sets) == 0 {
			continue
		}
		b.HSet(p.key, p.sets)
		b.Expire(p.key, ttl)
	}
	for _, p := range pending {
		b.HDel(p.key, p.deletes...)
	}
	return b, nil
}

// Clear deletes every bucket of session id. The credential key is kept.
func (s *KeyMaterialStore) Clear(ctx context.Context, id string) error {
	keys := keyspace.New(s.namespace, id).Buckets()
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to clear keys")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func allNil(ids []string) map[string]any {
	out := make(map[string]any, len(ids))
	for _, id := range ids {
		out[id] = nil
	}
	return out
}
