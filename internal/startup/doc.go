// Package startup handles application initialization, configuration
// loading, and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - UPLOAD_ENDPOINT: Base URL of the media upload service (required)
//   - CASE_ID: Case identifier attached to every upload (optional)
//   - INPUT_DIR: Directory scanned for media to upload (default: ./media)
//   - PORT: HTTP port for health and metrics endpoints (default: 8080)
//   - METRICS_ENABLED: Enable or disable the /metrics endpoint (default: true)
//   - MAX_CONCURRENT_PROCESSING: Processing concurrency cap (default: from profile)
//   - MAX_CONCURRENT_UPLOADS: Upload concurrency cap (default: 3)
//   - UPLOAD_TIMEOUT: Per-request upload timeout as Go duration (default: 60s)
//   - PROCESSING_ENABLED: Run images through the processor (default: true)
//   - REFRESH_INTERVAL: Capability re-sampling interval as Go duration (default: 30s)
//   - NETWORK_TYPE: Reported effective connection type (default: 4g)
//   - NETWORK_DOWNLINK_MBPS: Reported downlink bandwidth (default: 10)
//   - NETWORK_SAVE_DATA: Reported data-saver preference (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - PIPELINE_WORKERS: Override for derived worker counts
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via
// [GetBuildInfo]: Version, Commit, BuildTime, GoVersion.
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent
// output: [LogProcessorInit], [LogServerStarted],
// [LogShutdownInitiated], [LogShutdownComplete].
package startup
