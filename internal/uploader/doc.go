// Package uploader sends processed media to the case-management upload
// endpoint as multipart/form-data.
//
// Each upload carries the processed artifact, its thumbnail, a JSON
// metadata field, byte counts, and an optional case identifier. Transport
// failures are retried with capped exponential backoff; HTTP error
// statuses are not retried here (the batch layer owns failed-file
// retries). A context cancellation is reported as ErrCancelled so callers
// can distinguish user cancellation from failure.
package uploader
