// Package batch stages Redis mutations and submits them as one pipelined
// round trip.
//
// # Semantics
//
// Commands run in submission order but are NOT wrapped in MULTI/EXEC: a
// failing command does not roll back the others. [Executor.Exec] reports one
// [Result] per command and, when any command failed, a single [*BatchError]
// carrying the failed/total counts and every per-command error. Effects of the
// successful commands stay applied.
//
// # What this package must NOT do
//
//   - Retry or compensate failed commands.
//   - Contact Redis for an empty batch.
package batch
