package mediatypes

// Sniff inspects the leading bytes of a blob and returns the detected
// content format as a short name ("jpeg", "png", "webp", "mp4-container",
// ...). Returns "unknown" if no signature matches.
func Sniff(data []byte) string {
	header := data
	if len(header) > 32 {
		header = header[:32]
	}

	switch {
	case len(header) >= 3 && header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF:
		return "jpeg"

	case len(header) >= 8 && header[0] == 0x89 && header[1] == 0x50 && header[2] == 0x4E && header[3] == 0x47:
		return "png"

	case len(header) >= 4 && header[0] == 0x47 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x38:
		return "gif"

	case len(header) >= 12 && header[0] == 0x52 && header[1] == 0x49 && header[2] == 0x46 && header[3] == 0x46 &&
		header[8] == 0x57 && header[9] == 0x45 && header[10] == 0x42 && header[11] == 0x50:
		return "webp"

	case len(header) >= 12 && header[4] == 0x66 && header[5] == 0x74 && header[6] == 0x79 && header[7] == 0x70:
		// ISO BMFF container: mp4, mov, heif, ...
		brand := string(header[8:12])
		if brand == "qt  " {
			return "mov"
		}
		if brand == "heic" || brand == "heix" || brand == "mif1" || brand == "msf1" {
			return "heif"
		}
		return "mp4-container"

	case len(header) >= 4 && header[0] == 0x1A && header[1] == 0x45 && header[2] == 0xDF && header[3] == 0xA3:
		// EBML header: webm/matroska
		return "webm"
	}

	return "unknown"
}

// SniffMime maps a detected format to a MIME type. Returns
// "application/octet-stream" for unknown formats.
func SniffMime(data []byte) string {
	switch Sniff(data) {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "mov":
		return "video/quicktime"
	case "mp4-container":
		return "video/mp4"
	case "webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
