// Package prometheus provides Prometheus collectors for goKeyless metrics.
//
// [NewPrometheusExporter] accepts a [goKeyless.Engine] and exposes an [http.Handler]
// that renders all goKeyless counters and histograms in Prometheus text exposition format.
// Counter names are prefixed gokeyless_*_total; the single histogram is
// gokeyless_auth_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
