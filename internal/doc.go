// Package internal holds the Redis-facing building blocks behind the
// authstate root package.
//
// # Sub-packages
//
//   - batch: ordered pipelined mutations with per-command results
//   - stores: id allocation, credential and key-material persistence
//
// # What this package must NOT do
//
//   - Export types that appear in the public authstate API, except the
//     batch error types, which authstate re-exports as aliases so callers
//     can match them with errors.As.
//   - Be imported by any package outside the authstate module.
package internal
