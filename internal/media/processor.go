package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/metrics"

	_ "image/png" // PNG decode support

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decode support
)

// Processor turns raw blobs into processed artifacts and thumbnails.
type Processor struct {
	enabled bool
	useVips bool
}

// NewProcessor creates a Processor. A disabled processor passes blobs
// through untouched (see ProcessImage).
func NewProcessor(enabled bool) *Processor {
	p := &Processor{enabled: enabled}
	if enabled && IsVipsAvailable() {
		p.useVips = true
		logging.Debug("Processor using libvips accelerated encoding")
	}
	return p
}

// IsEnabled returns whether processing is active.
func (p *Processor) IsEnabled() bool {
	return p.enabled
}

// ProcessImage processes one image blob per the given options: validate
// format, decode, resize to fit the configured bounds (aspect preserved),
// re-encode at a size-dependent quality, and generate a square
// center-cropped thumbnail.
//
// When the processor is disabled the original bytes are returned
// unmodified with CompressionRatio 1 and no thumbnail, so callers can
// continue uploading rather than failing.
//
// Any decode or encode failure is returned as a single wrapped error; no
// partial results are produced.
func (p *Processor) ProcessImage(ctx context.Context, data []byte, opts Options) (*Result, error) {
	start := time.Now()
	originalSize := int64(len(data))

	mime := mediatypes.SniffMime(data)

	if !p.enabled {
		metrics.ProcessingTotal.WithLabelValues("image", "skipped").Inc()
		return passthroughResult(data, mime), nil
	}

	if !mediatypes.IsProcessableImage(mime) {
		metrics.ProcessingTotal.WithLabelValues("image", "error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		metrics.ProcessingTotal.WithLabelValues("image", "error").Inc()
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	origWidth, origHeight := bounds.Dx(), bounds.Dy()

	resize := needsResize(origWidth, origHeight, opts.MaxWidth, opts.MaxHeight)
	compress := opts.CompressionThresholdBytes == 0 || originalSize > opts.CompressionThresholdBytes

	quality := pickQuality(originalSize, opts.Quality)
	outWidth, outHeight := origWidth, origHeight

	var processed []byte
	if !resize && !compress {
		// Small enough on both axes: keep the original bytes.
		processed = data
		quality = 0
		logging.Debug("Image %dx%d (%d bytes) under thresholds, keeping original", origWidth, origHeight, originalSize)
	} else {
		if resize {
			outWidth, outHeight = FitDimensions(origWidth, origHeight, opts.MaxWidth, opts.MaxHeight)
		}

		processed, err = p.render(data, img, outWidth, outHeight, jpegQuality(quality), resize)
		if err != nil {
			metrics.ProcessingTotal.WithLabelValues("image", "error").Inc()
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
	}

	thumbnail, err := p.makeThumbnail(data, img)
	if err != nil {
		metrics.ProcessingTotal.WithLabelValues("image", "error").Inc()
		return nil, fmt.Errorf("failed to generate thumbnail: %w", err)
	}

	processedSize := int64(len(processed))
	elapsed := time.Since(start)

	metrics.ProcessingTotal.WithLabelValues("image", "ok").Inc()
	metrics.ProcessingDuration.WithLabelValues("image").Observe(elapsed.Seconds())
	metrics.ProcessingBytesIn.Add(float64(originalSize))
	metrics.ProcessingBytesOut.Add(float64(processedSize))

	logging.Debug("Processed image %dx%d -> %dx%d, %d -> %d bytes in %v",
		origWidth, origHeight, outWidth, outHeight, originalSize, processedSize, elapsed)

	return &Result{
		Processed: processed,
		Thumbnail: thumbnail,
		Metadata: Metadata{
			OriginalSize:       originalSize,
			ProcessedSize:      processedSize,
			MimeType:           "image/jpeg",
			OriginalWidth:      origWidth,
			OriginalHeight:     origHeight,
			ProcessedWidth:     outWidth,
			ProcessedHeight:    outHeight,
			Quality:            quality,
			CompressionRatio:   ratio(originalSize, processedSize),
			Resized:            resize,
			CompressionApplied: resize || compress,
			Timestamp:          time.Now(),
			ProcessingTime:     elapsed,
		},
	}, nil
}

// render produces the processed artifact. When libvips is available the
// raw bytes go through its decode-time-shrinking path; otherwise the
// already-decoded image is resized and encoded inline. Both paths must
// produce an equivalent artifact.
func (p *Processor) render(data []byte, img image.Image, width, height, quality int, resize bool) ([]byte, error) {
	if p.useVips {
		if out, err := VipsResizeJPEG(data, width, height, quality); err == nil {
			return out, nil
		} else {
			logging.Warn("vips render failed, falling back to inline encoder: %v", err)
		}
	}

	out := img
	if resize {
		out = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// makeThumbnail produces the fixed-size square thumbnail: center-crop to
// min(width,height), then scale to ThumbnailSize.
func (p *Processor) makeThumbnail(data []byte, img image.Image) ([]byte, error) {
	quality := jpegQuality(ThumbnailQuality)

	if p.useVips {
		if out, err := VipsThumbnailJPEG(data, ThumbnailSize, quality); err == nil && len(out) > 0 {
			return out, nil
		} else if err != nil {
			logging.Warn("vips thumbnail failed, falling back to inline encoder: %v", err)
		}
	}

	thumb := imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("thumbnail encode produced no output")
	}
	return buf.Bytes(), nil
}

// passthroughResult wraps the original bytes as an unprocessed Result.
func passthroughResult(data []byte, mime string) *Result {
	return &Result{
		Processed: data,
		Metadata: Metadata{
			OriginalSize:     int64(len(data)),
			ProcessedSize:    int64(len(data)),
			MimeType:         mime,
			CompressionRatio: 1,
			Timestamp:        time.Now(),
		},
	}
}

func ratio(original, processed int64) float64 {
	if processed <= 0 {
		return 0
	}
	return float64(original) / float64(processed)
}
