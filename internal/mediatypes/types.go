package mediatypes

// MediaKind represents the broad category of a media item.
type MediaKind string

const (
	// KindPhoto represents a still image.
	KindPhoto MediaKind = "photo"
	// KindVideo represents a video clip.
	KindVideo MediaKind = "video"
	// KindOther represents an unknown or unsupported media type.
	KindOther MediaKind = "other"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".m4v":  true,
	".3gp":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",

	// Videos
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",
}

// ProcessableImageMimes lists the MIME types the image processor accepts.
var ProcessableImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// GetKind returns the MediaKind for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns KindOther if the extension is not recognized.
func GetKind(ext string) MediaKind {
	if ImageExtensions[ext] {
		return KindPhoto
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	return KindOther
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsProcessableImage returns true if the MIME type can be fed to the
// image processor.
func IsProcessableImage(mime string) bool {
	return ProcessableImageMimes[mime]
}
