package authstate

import (
	"errors"

	"github.com/MrEthical07/authstate/codec"
	"github.com/MrEthical07/authstate/internal/batch"
	"github.com/MrEthical07/authstate/internal/stores"
)

var (
	// ErrStoreUnavailable wraps Redis connectivity and command failures.
	ErrStoreUnavailable = stores.ErrStoreUnavailable
	// ErrCodec wraps malformed stored values.
	ErrCodec = codec.ErrMalformed
	// ErrInvalidCategory is returned for categories outside the closed set.
	ErrInvalidCategory = stores.ErrInvalidCategory
	// ErrSessionDeleted is returned by every method of a deleted [Session].
	ErrSessionDeleted = errors.New("session deleted")
	// ErrRedisRequired is returned by [Builder.Build] without a client.
	ErrRedisRequired = errors.New("redis client required")
	// ErrBuilderUsed is returned when [Builder.Build] is called twice.
	ErrBuilderUsed = errors.New("builder already used")
)

// BatchError aggregates the failed commands of one pipelined write. The
// commands it does not list were applied.
type BatchError = batch.BatchError

// CommandError is one failed command inside a [BatchError].
type CommandError = batch.CommandError
