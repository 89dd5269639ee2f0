package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Processing metrics
var (
	ProcessingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_processing_total",
			Help: "Total number of media processing operations",
		},
		[]string{"kind", "status"}, // kind: "image", "video"; status: "ok", "error", "skipped"
	)

	ProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_processing_duration_seconds",
			Help:    "Media processing duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	ProcessingBytesIn = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_processing_bytes_in_total",
			Help: "Total bytes of raw media fed into the processor",
		},
	)

	ProcessingBytesOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_processing_bytes_out_total",
			Help: "Total bytes of processed media produced by the processor",
		},
	)
)

// Upload metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_uploads_total",
			Help: "Total number of upload attempts",
		},
		[]string{"status"}, // "ok", "error", "cancelled"
	)

	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_upload_duration_seconds",
			Help:    "Upload duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	UploadRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_upload_retries_total",
			Help: "Total number of upload retry attempts",
		},
	)

	UploadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_uploaded_bytes_total",
			Help: "Total bytes successfully uploaded",
		},
	)
)

// Batch metrics
var (
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_batches_total",
			Help: "Total number of batches by final status",
		},
		[]string{"status"}, // "completed", "cancelled", "failed"
	)

	BatchesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_batches_active",
			Help: "Number of batches currently being processed",
		},
	)

	BatchFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_batch_files_total",
			Help: "Total number of files handled by batches",
		},
		[]string{"outcome"}, // "uploaded", "failed", "skipped"
	)
)

// Concurrency limiter metrics
var (
	LimiterRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_pipeline_limiter_running",
			Help: "Number of tasks currently running under a limiter",
		},
		[]string{"limiter"}, // "processing", "upload"
	)

	LimiterQueued = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_pipeline_limiter_queued",
			Help: "Number of tasks waiting for a limiter slot",
		},
		[]string{"limiter"},
	)
)

// Adaptive profile metrics
var (
	ProfileSwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_profile_switches_total",
			Help: "Total number of automatic processing profile switches",
		},
		[]string{"reason"},
	)

	ProfileCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_pipeline_profile_current",
			Help: "Currently selected processing profile (1 = active)",
		},
		[]string{"profile"},
	)
)

// Capture metrics
var (
	CaptureErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_capture_errors_total",
			Help: "Total number of capture errors by classification",
		},
		[]string{"kind"},
	)

	CaptureSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_capture_sessions_active",
			Help: "Number of active capture sessions",
		},
	)
)
