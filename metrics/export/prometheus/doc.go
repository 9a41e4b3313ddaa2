// Package prometheus exposes authstate metrics as a Prometheus collector.
//
// [PrometheusExporter] implements the client_golang Collector interface, so
// it can be registered on any registry. [PrometheusExporter.Handler] serves
// it from a private registry. Counter names are authstate_*_total and the
// single histogram is authstate_batch_latency_seconds.
//
// # What this package must NOT do
//
//   - Register on the global Prometheus registry.
//   - Mutate store state.
package prometheus
