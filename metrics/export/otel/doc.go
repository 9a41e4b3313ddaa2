// Package otel publishes authstate metrics through OpenTelemetry.
//
// [NewOTelExporter] registers one Int64ObservableCounter per counter and a
// gauge per histogram bucket, plus count and sum gauges. A single callback
// reads [authstate.Store.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate store state.
package otel
