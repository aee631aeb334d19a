// Package metrics defines the counters the notification service emits and a
// Prometheus-backed implementation. Callers never depend on a metric being
// recorded; use Noop when metrics are disabled.
package metrics
