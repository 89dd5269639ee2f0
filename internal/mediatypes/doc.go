// Package mediatypes classifies media content by extension and by magic
// bytes. The processor uses it to validate input formats before decoding,
// and the uploader uses it to pick Content-Type values for multipart
// fields.
package mediatypes
