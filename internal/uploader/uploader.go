package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/media"
	"media-pipeline/internal/metrics"
)

// UploadPath is the endpoint path uploads are posted to.
const UploadPath = "/api/media/upload"

// ErrCancelled marks an upload aborted by context cancellation. It is a
// distinct condition from failure in all reporting paths.
var ErrCancelled = errors.New("upload cancelled")

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upload failed with status %d: %s", e.StatusCode, e.Body)
}

// RetryConfig configures transport-failure retry behavior.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for transient network
// failures.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// Item is one processed artifact ready for upload.
type Item struct {
	FileName  string
	Data      []byte
	Thumbnail []byte
	Metadata  media.Metadata
	CaseID    string
}

// Response is the parsed JSON body of a successful upload.
type Response struct {
	Success bool            `json:"success"`
	ID      string          `json:"id"`
	URL     string          `json:"url"`
	Raw     json.RawMessage `json:"-"`
}

// Client uploads media items to a fixed endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	retry   RetryConfig
}

// New creates a Client for the given base URL (scheme://host[:port],
// without the upload path).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		retry:   DefaultRetryConfig(),
	}
}

// SetRetryConfig overrides the transport retry policy.
func (c *Client) SetRetryConfig(cfg RetryConfig) {
	c.retry = cfg
}

// Upload posts one item. The request is tied to ctx; cancelling it aborts
// the request and yields ErrCancelled. Non-2xx statuses return an
// *HTTPError without retrying.
func (c *Client) Upload(ctx context.Context, item Item) (*Response, error) {
	start := time.Now()

	body, contentType, err := c.buildBody(item)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to build upload body: %w", err)
	}

	var lastErr error
	backoff := c.retry.InitialBackoff

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.UploadRetries.Inc()
			logging.Debug("Upload retry %d/%d for %s in %v", attempt, c.retry.MaxRetries, item.FileName, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.UploadsTotal.WithLabelValues("cancelled").Inc()
				return nil, fmt.Errorf("%w: %s", ErrCancelled, item.FileName)
			}
			backoff *= 2
			if backoff > c.retry.MaxBackoff {
				backoff = c.retry.MaxBackoff
			}
		}

		resp, err := c.post(ctx, body, contentType)
		if err == nil {
			metrics.UploadsTotal.WithLabelValues("ok").Inc()
			metrics.UploadDuration.Observe(time.Since(start).Seconds())
			metrics.UploadedBytes.Add(float64(len(item.Data)))
			return resp, nil
		}

		// Cancellation is terminal and reported as its own condition.
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			metrics.UploadsTotal.WithLabelValues("cancelled").Inc()
			return nil, fmt.Errorf("%w: %s", ErrCancelled, item.FileName)
		}

		lastErr = err

		// HTTP-level failures are the batch layer's to retry.
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			break
		}
	}

	metrics.UploadsTotal.WithLabelValues("error").Inc()
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UploadPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("failed to close upload response body: %v", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	result := &Response{Raw: raw}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			logging.Debug("Upload response is not JSON: %v", err)
		}
	}
	return result, nil
}

// buildBody assembles the multipart form. Field layout matches the
// upload endpoint: file, thumbnail, metadata (JSON string), originalSize,
// processedSize, optional caseId.
func (c *Client) buildBody(item Item) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeFilePart(w, "file", item.FileName, item.Metadata.MimeType, item.Data); err != nil {
		return nil, "", err
	}

	if len(item.Thumbnail) > 0 {
		if err := writeFilePart(w, "thumbnail", "thumb_"+item.FileName, "image/jpeg", item.Thumbnail); err != nil {
			return nil, "", err
		}
	}

	meta, err := json.Marshal(item.Metadata)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := w.WriteField("metadata", string(meta)); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("originalSize", strconv.FormatInt(item.Metadata.OriginalSize, 10)); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("processedSize", strconv.FormatInt(item.Metadata.ProcessedSize, 10)); err != nil {
		return nil, "", err
	}

	if item.CaseID != "" {
		if err := w.WriteField("caseId", item.CaseID); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// writeFilePart writes one file field with an explicit content type.
func writeFilePart(w *multipart.Writer, field, filename, contentType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}
