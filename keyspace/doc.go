// Package keyspace derives every Redis key used by a persisted auth-state
// session.
//
// # Key layout
//
//	<namespace>:session:INCR_ID          id counter (string, INCR)
//	<namespace>:session:<id>:creds       credential blob (string)
//	<namespace>:session:<id>:<category>  key-material bucket (hash)
//
// The layout is shared with existing deployments and must not change: two
// processes pointed at the same namespace see the same session only because
// they derive byte-identical keys.
//
// # What this package must NOT do
//
//   - Perform I/O.
//   - Hold mutable state.
package keyspace
