// Package metrics exposes Prometheus counters and histograms for HTTP traffic
// and diary lifecycle events, and the /metrics scrape handler.
package metrics
