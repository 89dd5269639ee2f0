package media

import "math"

// FitDimensions computes output dimensions for an image that must fit
// within maxWidth×maxHeight while preserving aspect ratio.
//
// The fit is applied in two steps: first scale to fit maxWidth, then
// re-scale to fit maxHeight if the height is still over budget. The order
// matters: fitting width first can still leave height over, so a single
// pass is not sufficient for extreme aspect ratios.
//
// Zero max values leave the corresponding dimension unbounded. Returns
// the input dimensions unchanged when they already fit.
func FitDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}

	w, h := float64(width), float64(height)

	if maxWidth > 0 && w > float64(maxWidth) {
		scale := float64(maxWidth) / w
		w = float64(maxWidth)
		h = math.Round(h * scale)
	}

	if maxHeight > 0 && h > float64(maxHeight) {
		scale := float64(maxHeight) / h
		h = float64(maxHeight)
		w = math.Round(w * scale)
	}

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	return int(w), int(h)
}

// needsResize returns true if either dimension exceeds its bound.
func needsResize(width, height, maxWidth, maxHeight int) bool {
	if maxWidth > 0 && width > maxWidth {
		return true
	}
	if maxHeight > 0 && height > maxHeight {
		return true
	}
	return false
}

// pickQuality selects the encode quality for an input of the given size.
// Large inputs get aggressive tiers; smaller inputs use the caller's
// quality, defaulting to DefaultQuality.
func pickQuality(originalSize int64, requested float64) float64 {
	switch {
	case originalSize > largeFileBytes:
		return largeFileQuality
	case originalSize > mediumFileBytes:
		return mediumFileQuality
	case requested > 0:
		return requested
	default:
		return DefaultQuality
	}
}

// jpegQuality converts a [0,1] quality to the 1-100 scale used by JPEG
// encoders.
func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}
