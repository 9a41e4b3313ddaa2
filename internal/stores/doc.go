// Package stores provides the Redis-backed stores behind a persisted
// auth-state session: the id allocator, the credential blob and the
// per-category key-material buckets.
//
// # Design
//
// Every key comes from [keyspace.Namespacer]; every value goes through
// [codec]. Reads return the decoded value and the failure separately so the
// caller can apply its own fail-soft policy. Multi-field writes go through a
// single pipelined [batch.Batch]; there is no MULTI/EXEC and no
// compensation for partially applied batches.
//
// # Architecture boundaries
//
// This package owns key derivation and command shapes. It does NOT decide
// whether a failure is surfaced to the caller (the session lifecycle does),
// count metrics, or interpret credential contents.
//
// # What this package must NOT do
//
//   - Import authstate (no upward imports).
//   - Change the key layout or the wire commands; both are shared with
//     existing deployments.
package stores
