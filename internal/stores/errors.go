package stores

import "errors"

var (
	// ErrStoreUnavailable wraps connectivity and command failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidCategory is returned for categories outside the closed set.
	ErrInvalidCategory = errors.New("invalid key category")
)
