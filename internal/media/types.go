package media

import (
	"errors"
	"time"
)

const (
	// ThumbnailSize is the fixed square thumbnail edge length in pixels.
	ThumbnailSize = 300
	// ThumbnailQuality is the JPEG quality used for thumbnails.
	ThumbnailQuality = 0.85

	// DefaultQuality is used when the caller does not supply one.
	DefaultQuality = 0.8

	// Size tiers that override the caller's quality for large inputs.
	largeFileBytes  = 2 * 1024 * 1024
	mediumFileBytes = 1024 * 1024
	largeFileQuality  = 0.6
	mediumFileQuality = 0.75
)

// ErrUnsupportedFormat is returned for input blobs that are not JPEG,
// PNG, or WebP.
var ErrUnsupportedFormat = errors.New("unsupported media format")

// ErrProcessorDisabled is returned by operations that cannot fall back
// when the processor is disabled.
var ErrProcessorDisabled = errors.New("media processor disabled")

// Options configures a single image processing operation.
type Options struct {
	// MaxWidth and MaxHeight bound the output dimensions. Zero values
	// leave the corresponding dimension unbounded.
	MaxWidth  int
	MaxHeight int

	// Quality is the target encode quality in [0,1]. Zero means
	// DefaultQuality. Inputs above the size tiers override it.
	Quality float64

	// CompressionThresholdBytes is the size above which re-encoding is
	// applied even when no resize is needed. Zero means always compress.
	CompressionThresholdBytes int64
}

// Metadata describes what processing did to one blob.
type Metadata struct {
	OriginalSize    int64   `json:"originalSize"`
	ProcessedSize   int64   `json:"size"`
	MimeType        string  `json:"type"`
	OriginalWidth   int     `json:"originalWidth"`
	OriginalHeight  int     `json:"originalHeight"`
	ProcessedWidth  int     `json:"width"`
	ProcessedHeight int     `json:"height"`
	Quality         float64 `json:"quality"`

	// CompressionRatio is originalSize / processedSize; 1 when
	// processing was skipped.
	CompressionRatio   float64 `json:"compressionRatio"`
	Resized            bool    `json:"resized"`
	CompressionApplied bool    `json:"compressionApplied"`

	Timestamp      time.Time     `json:"timestamp"`
	ProcessingTime time.Duration `json:"-"`
}

// Result is the output of processing one blob. Processed is never empty:
// when processing is skipped it holds the original bytes.
type Result struct {
	Processed []byte
	Thumbnail []byte
	Metadata  Metadata
}
