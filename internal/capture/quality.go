package capture

import (
	"image"
	"image/color"
)

// Quality thresholds for transient frame warnings.
const (
	darkBrightness   = 0.15
	brightBrightness = 0.90
	blurVariance     = 60.0
)

// QualityMetrics holds per-frame brightness and blur estimates. They are
// ephemeral: computed for one preview frame, used for a transient
// warning, and discarded.
type QualityMetrics struct {
	// Brightness is the mean luma in [0,1].
	Brightness float64

	// Blur is the variance of a Laplacian over the luma plane. Lower
	// values mean less detail, which usually means a blurrier frame.
	Blur float64
}

// TooDark reports whether the frame is likely underexposed.
func (q QualityMetrics) TooDark() bool {
	return q.Brightness < darkBrightness
}

// TooBright reports whether the frame is likely blown out.
func (q QualityMetrics) TooBright() bool {
	return q.Brightness > brightBrightness
}

// Blurry reports whether the frame lacks enough high-frequency detail.
func (q QualityMetrics) Blurry() bool {
	return q.Blur < blurVariance
}

// AnalyzeFrame computes QualityMetrics for one frame. Frames are sampled
// at a stride so preview-rate analysis stays cheap.
func AnalyzeFrame(img image.Image) QualityMetrics {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return QualityMetrics{}
	}

	stride := 1
	if w*h > 640*480 {
		stride = 2
	}

	luma := func(x, y int) float64 {
		g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
		return float64(g.Y)
	}

	var sum float64
	var count int
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			sum += luma(x, y)
			count++
		}
	}
	mean := sum / float64(count)

	// Variance of the 4-neighbor Laplacian approximates focus.
	var lapSum, lapSqSum float64
	var lapCount int
	for y := stride; y < h-stride; y += stride {
		for x := stride; x < w-stride; x += stride {
			l := 4*luma(x, y) - luma(x-stride, y) - luma(x+stride, y) - luma(x, y-stride) - luma(x, y+stride)
			lapSum += l
			lapSqSum += l * l
			lapCount++
		}
	}

	var variance float64
	if lapCount > 0 {
		lapMean := lapSum / float64(lapCount)
		variance = lapSqSum/float64(lapCount) - lapMean*lapMean
	}

	return QualityMetrics{
		Brightness: mean / 255.0,
		Blur:       variance,
	}
}
