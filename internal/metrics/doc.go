// Package metrics defines the Prometheus instrumentation for localfeed.
//
// All metrics are registered with the default registry via promauto at
// package load time and exposed through the /metrics endpoint. Metric names
// share the localfeed_ prefix and cover four concerns: HTTP traffic, index
// snapshot lifecycle, derivative cache effectiveness, and media transport
// outcomes.
package metrics
