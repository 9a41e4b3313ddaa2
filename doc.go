// Package authstate persists the credential and key-material state of a
// long-lived protocol session in Redis, so the session survives restarts and
// can be shared by several processes.
//
// A session is one credential blob plus nine key-material buckets (one Redis
// hash per [Category]). [Store.Open] loads a session or initializes a fresh
// one; the returned [*Session] reads and writes key material, saves
// credentials, and clears or deletes the session.
//
// # Failure policy
//
// Reads fail soft: a credential read failure opens the session with fresh
// credentials, and a key-material read failure resolves every requested item
// to nil. Writes fail hard: credential writes, key-material writes, clear and
// delete return their error. A partially applied key-material write returns a
// [*BatchError].
//
// # Architecture boundaries
//
// authstate is the public surface. Key derivation lives in keyspace, value
// encoding in codec, and the Redis stores and pipeline executor under
// internal/. Connection retry and backoff belong to the go-redis client;
// signal handling belongs to the host process.
//
// # What this package must NOT do
//
//   - Wrap writes in MULTI/EXEC or promise multi-key atomicity.
//   - Serialize concurrent writers to the same session.
//   - Interpret credential or key-material contents.
package authstate
