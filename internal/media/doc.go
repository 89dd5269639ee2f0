// Package media turns raw photo and video blobs into processed artifacts,
// thumbnails, and metadata.
//
// Image processing decodes the blob, applies a two-step aspect-preserving
// resize against the configured maximum dimensions, re-encodes at a
// size-dependent quality, and independently generates a square
// center-cropped thumbnail. Video handling is limited to validation and
// thumbnail frame extraction via FFmpeg; no transcoding is performed.
//
// A disabled processor passes blobs through untouched so the batch layer
// can keep uploading originals when processing is unavailable.
package media
