// Package filesystem discovers media files on disk for batch upload.
//
// Discovery is extension-based; content validation happens later in the
// processor, which sniffs magic bytes before decoding.
package filesystem
