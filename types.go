package authstate

import (
	"time"

	"github.com/MrEthical07/authstate/internal/stores"
	"github.com/MrEthical07/authstate/keyspace"
)

// Category identifies one kind of key material.
type Category = keyspace.Category

// Key-material categories.
const (
	PreKey              = keyspace.PreKey
	SessionKey          = keyspace.Session
	SenderKey           = keyspace.SenderKey
	SenderKeyMemory     = keyspace.SenderKeyMemory
	AppStateSyncKey     = keyspace.AppStateSyncKey
	AppStateSyncVersion = keyspace.AppStateSyncVersion
	LIDMapping          = keyspace.LIDMapping
	DeviceList          = keyspace.DeviceList
	TCToken             = keyspace.TCToken
)

// KeyUpdates maps category → item id → value. A nil value, typed or not,
// deletes the item.
type KeyUpdates map[Category]map[string]any

// CredentialsFactory returns the credentials of a brand-new session.
type CredentialsFactory func() any

// Normalizer converts a decoded app-state-sync-key item into the shape the
// protocol layer expects. It never runs for other categories.
type Normalizer = stores.Normalizer

// OpenOptions selects the session to open.
type OpenOptions struct {
	// SessionID opens an existing or caller-named session. Empty allocates a
	// new id from the namespace counter.
	SessionID string
	// TTL overrides Config.TTL for this session. Zero keeps the configured
	// default; a negative value disables expiry.
	TTL time.Duration
}

// SessionState is the lifecycle state of a [Session] handle.
type SessionState int32

const (
	StateOpen SessionState = iota
	StateCleared
	StateDeleted
)

func (s SessionState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCleared:
		return "cleared"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}
