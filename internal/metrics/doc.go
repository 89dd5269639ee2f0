// Package metrics defines Prometheus metrics for the media pipeline.
//
// Metrics cover image processing (durations, bytes in/out), batch uploads
// (attempts, outcomes, in-flight counts), concurrency limiter occupancy,
// and adaptive profile switches. All metrics are registered via promauto
// at package initialization and exposed on the /metrics endpoint.
package metrics
