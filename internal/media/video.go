package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/metrics"

	"github.com/disintegration/imaging"
)

// VideoLimits bounds the videos the pipeline accepts. No transcoding is
// performed; validation and thumbnailing are the only video operations.
type VideoLimits struct {
	MaxSizeBytes int64
	MaxDuration  time.Duration
	MaxWidth     int
	MaxHeight    int
}

// DefaultVideoLimits returns the standard acceptance bounds.
func DefaultVideoLimits() VideoLimits {
	return VideoLimits{
		MaxSizeBytes: 100 * 1024 * 1024,
		MaxDuration:  2 * time.Minute,
		MaxWidth:     3840,
		MaxHeight:    2160,
	}
}

// VideoInfo contains information about a video file.
type VideoInfo struct {
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Codec     string  `json:"codec"`
	SizeBytes int64   `json:"sizeBytes"`
}

// ProbeVideo retrieves codec, duration, and dimension information about a
// video file using ffprobe.
func ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("video not accessible: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	output := stdout.String()
	result := &VideoInfo{SizeBytes: info.Size()}

	if v, ok := extractJSONField(output, `"duration"`); ok {
		result.Duration, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := extractJSONField(output, `"codec_name"`); ok {
		result.Codec = v
	}
	if v, ok := extractJSONField(output, `"width"`); ok {
		result.Width, _ = strconv.Atoi(v)
	}
	if v, ok := extractJSONField(output, `"height"`); ok {
		result.Height, _ = strconv.Atoi(v)
	}

	return result, nil
}

// extractJSONField scrapes the first value for key out of raw ffprobe
// JSON output without a full parse.
func extractJSONField(output, key string) (string, bool) {
	idx := strings.Index(output, key)
	if idx == -1 {
		return "", false
	}
	start := strings.Index(output[idx:], ":")
	if start == -1 {
		return "", false
	}
	start += idx + 1

	end := len(output)
	if comma := strings.Index(output[start:], ","); comma != -1 {
		end = start + comma
	}
	if brace := strings.Index(output[start:], "}"); brace != -1 && start+brace < end {
		end = start + brace
	}

	return strings.Trim(output[start:end], ` "`+"\n\t"), true
}

// ValidateVideo checks a video against the given limits and returns its
// probed info. It rejects unsupported containers, oversized files,
// out-of-bound dimensions, and over-length durations.
func (p *Processor) ValidateVideo(ctx context.Context, filePath string, limits VideoLimits) (*VideoInfo, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if !mediatypes.VideoExtensions[ext] {
		metrics.ProcessingTotal.WithLabelValues("video", "error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	info, err := ProbeVideo(ctx, filePath)
	if err != nil {
		metrics.ProcessingTotal.WithLabelValues("video", "error").Inc()
		return nil, err
	}

	if limits.MaxSizeBytes > 0 && info.SizeBytes > limits.MaxSizeBytes {
		metrics.ProcessingTotal.WithLabelValues("video", "error").Inc()
		return nil, fmt.Errorf("video size %d exceeds limit %d", info.SizeBytes, limits.MaxSizeBytes)
	}
	if limits.MaxDuration > 0 && info.Duration > limits.MaxDuration.Seconds() {
		metrics.ProcessingTotal.WithLabelValues("video", "error").Inc()
		return nil, fmt.Errorf("video duration %.1fs exceeds limit %s", info.Duration, limits.MaxDuration)
	}
	if (limits.MaxWidth > 0 && info.Width > limits.MaxWidth) ||
		(limits.MaxHeight > 0 && info.Height > limits.MaxHeight) {
		metrics.ProcessingTotal.WithLabelValues("video", "error").Inc()
		return nil, fmt.Errorf("video dimensions %dx%d exceed limit %dx%d",
			info.Width, info.Height, limits.MaxWidth, limits.MaxHeight)
	}

	metrics.ProcessingTotal.WithLabelValues("video", "ok").Inc()
	return info, nil
}

// VideoThumbnail extracts a frame at min(2s, 25% of duration) and renders
// it as the standard square center-cropped JPEG thumbnail.
func (p *Processor) VideoThumbnail(ctx context.Context, filePath string) ([]byte, error) {
	start := time.Now()

	info, err := ProbeVideo(ctx, filePath)
	if err != nil {
		return nil, err
	}

	seek := 2.0
	if quarter := info.Duration * 0.25; quarter < seek {
		seek = quarter
	}

	frame, err := extractFrame(ctx, filePath, seek)
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fill(frame, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality(ThumbnailQuality))); err != nil {
		return nil, fmt.Errorf("failed to encode video thumbnail: %w", err)
	}

	metrics.ProcessingDuration.WithLabelValues("video").Observe(time.Since(start).Seconds())
	logging.Debug("Video thumbnail for %s (seek %.2fs) in %v", filepath.Base(filePath), seek, time.Since(start))
	return buf.Bytes(), nil
}

// extractFrame renders one frame at the given offset using ffmpeg. If the
// seek fails (very short or damaged files), it retries from the start.
func extractFrame(ctx context.Context, filePath string, seekSeconds float64) (image.Image, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	run := func(args ...string) (*bytes.Buffer, error) {
		cmd := exec.CommandContext(ctx, "ffmpeg", args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
		}
		return &stdout, nil
	}

	stdout, err := run(
		"-ss", fmt.Sprintf("%.2f", seekSeconds),
		"-i", filePath,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	if err != nil {
		logging.Debug("Frame extraction at %.2fs failed for %s: %v, retrying from start", seekSeconds, filePath, err)
		stdout, err = run(
			"-i", filePath,
			"-vframes", "1",
			"-f", "image2pipe",
			"-vcodec", "png",
			"-",
		)
		if err != nil {
			return nil, err
		}
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", filePath)
	}

	img, _, err := image.Decode(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}
