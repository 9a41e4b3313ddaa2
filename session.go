package authstate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Session is a handle to one stored session. Credentials are held in memory
// and persisted with SaveCredentials; key material is read and written
// through to Redis on every call.
//
// After Delete succeeds every method that touches the store returns
// [ErrSessionDeleted].
type Session struct {
	store   *Store
	id      string
	ttl     time.Duration
	created bool

	state atomic.Int32

	mu    sync.RWMutex
	creds any
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Created reports whether the credentials came from the factory rather than
// the store.
func (s *Session) Created() bool {
	return s.created
}

// TTL returns the expiry applied to writes. Zero means no expiry.
func (s *Session) TTL() time.Duration {
	return s.ttl
}

// State returns the handle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Credentials returns the in-memory credentials.
func (s *Session) Credentials() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// SetCredentials replaces the in-memory credentials. Nothing is written
// until SaveCredentials.
func (s *Session) SetCredentials(creds any) {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
}

// SaveCredentials writes the in-memory credentials.
func (s *Session) SaveCredentials(ctx context.Context) error {
	if s.deleted() {
		return ErrSessionDeleted
	}

	creds := s.Credentials()
	if err := s.store.creds.Write(ctx, s.id, creds, s.ttl); err != nil {
		s.store.metrics.Inc(MetricCredentialsWriteFailure)
		return err
	}
	s.store.metrics.Inc(MetricCredentialsWrite)
	s.reopen()
	return nil
}

// Get reads items of one category. Every requested id is present in the
// result; missing items are nil. Store and codec failures are logged and
// read as missing, so the only errors are [ErrInvalidCategory] and
// [ErrSessionDeleted].
func (s *Session) Get(ctx context.Context, category Category, ids ...string) (map[string]any, error) {
	if s.deleted() {
		return nil, ErrSessionDeleted
	}

	out, err := s.store.keys.Get(ctx, s.id, category, ids)
	if errors.Is(err, ErrInvalidCategory) {
		return nil, err
	}
	s.store.metrics.Inc(MetricKeysGet)
	if err != nil {
		s.store.metrics.Inc(MetricKeysGetFailure)
	}
	return out, nil
}

// Set applies updates in one pipeline. Nil values, including typed nils,
// delete items. A partial failure returns a *[BatchError]; the commands it
// does not list were applied.
func (s *Session) Set(ctx context.Context, updates KeyUpdates) error {
	if s.deleted() {
		return ErrSessionDeleted
	}

	err := s.store.keys.Set(ctx, s.id, updates, s.ttl)
	if errors.Is(err, ErrInvalidCategory) {
		return err
	}
	s.store.metrics.Inc(MetricKeysSet)
	if err != nil {
		s.store.metrics.Inc(MetricKeysSetFailure)
		return err
	}
	if len(updates) > 0 {
		s.reopen()
	}
	return nil
}

// Clear removes all key material. The credentials stay.
func (s *Session) Clear(ctx context.Context) error {
	if s.deleted() {
		return ErrSessionDeleted
	}
	if err := s.store.Clear(ctx, s.id); err != nil {
		return err
	}
	s.state.CompareAndSwap(int32(StateOpen), int32(StateCleared))
	return nil
}

// Delete removes the credentials and all key material, returning how many
// keys existed. The handle is unusable afterwards.
func (s *Session) Delete(ctx context.Context) (int64, error) {
	if s.deleted() {
		return 0, ErrSessionDeleted
	}
	n, err := s.store.Delete(ctx, s.id)
	if err != nil {
		return 0, err
	}
	s.state.Store(int32(StateDeleted))
	return n, nil
}

func (s *Session) deleted() bool {
	return s.State() == StateDeleted
}

func (s *Session) reopen() {
	s.state.CompareAndSwap(int32(StateCleared), int32(StateOpen))
}
