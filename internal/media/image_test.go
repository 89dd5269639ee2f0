package media

import "testing"

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{"Already fits", 800, 600, 1920, 1080, 800, 600},
		{"Exact fit", 1920, 1080, 1920, 1080, 1920, 1080},
		{"Width binds", 3840, 2160, 1920, 1080, 1920, 1080},
		{"Landscape width then height", 5000, 3000, 1280, 720, 1200, 720},
		{"Portrait height binds", 3000, 5000, 1280, 720, 432, 720},
		{"Wide panorama needs both steps", 10000, 2000, 1280, 720, 1280, 256},
		{"Tall panorama", 2000, 10000, 1280, 720, 144, 720},
		{"Zero max width unbounded", 5000, 500, 0, 720, 5000, 500},
		{"Zero max height unbounded", 500, 5000, 720, 0, 500, 5000},
		{"Degenerate input passes through", 0, 100, 1280, 720, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := FitDimensions(tt.w, tt.h, tt.maxW, tt.maxH)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("FitDimensions(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.w, tt.h, tt.maxW, tt.maxH, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitDimensionsPreservesAspect(t *testing.T) {
	cases := [][4]int{
		{5000, 3000, 1280, 720},
		{4032, 3024, 1920, 1080},
		{1079, 1920, 1280, 720},
		{8192, 1024, 1280, 720},
	}

	for _, c := range cases {
		w, h := FitDimensions(c[0], c[1], c[2], c[3])

		if w > c[2] || h > c[3] {
			t.Errorf("FitDimensions(%v) = (%d, %d), exceeds bounds", c, w, h)
		}

		// Aspect ratio preserved within rounding: scaling the output by
		// the original ratio should reproduce the other dimension ±1px.
		origRatio := float64(c[0]) / float64(c[1])
		reconstructed := float64(w) / origRatio
		if diff := reconstructed - float64(h); diff > 1 || diff < -1 {
			t.Errorf("FitDimensions(%v) = (%d, %d): aspect ratio drifted by %.2fpx", c, w, h, diff)
		}
	}
}

func TestPickQuality(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		requested float64
		want      float64
	}{
		{"Over 2MB forces 0.6", 3 * 1024 * 1024, 0.9, 0.6},
		{"Over 1MB forces 0.75", 1536 * 1024, 0.9, 0.75},
		{"Small uses requested", 500 * 1024, 0.9, 0.9},
		{"Small with zero uses default", 500 * 1024, 0, DefaultQuality},
		{"Exactly 1MB uses requested", 1024 * 1024, 0.7, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickQuality(tt.size, tt.requested); got != tt.want {
				t.Errorf("pickQuality(%d, %f) = %f, want %f", tt.size, tt.requested, got, tt.want)
			}
		})
	}
}

func TestJpegQuality(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.8, 80},
		{0.85, 85},
		{0, 1},
		{1, 100},
		{1.5, 100},
		{-0.2, 1},
	}

	for _, tt := range tests {
		if got := jpegQuality(tt.in); got != tt.want {
			t.Errorf("jpegQuality(%f) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
