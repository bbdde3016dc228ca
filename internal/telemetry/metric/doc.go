// Package metric provides Prometheus metrics for portal.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry with control-plane counters and HTTP handler
//   - collector.go: Collector exporting lifecycle state
//
// Metrics include:
//
//   - Outstanding wait-group permits
//   - Live and cancelled lifecycle contexts
//   - Control requests by type and result
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
