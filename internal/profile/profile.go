package profile

// ProcessingProfile is an immutable named processing configuration.
// Profiles are selected, never mutated; adjustments are applied to copies.
type ProcessingProfile struct {
	Name                      string
	Quality                   float64
	MaxWidth                  int
	MaxHeight                 int
	CompressionThresholdBytes int64
	UseParallelWorkers        bool
	MaxConcurrentProcessing   int
}

// Canonical profile names.
const (
	HighPerformance    = "high-performance"
	Balanced           = "balanced"
	MobileOptimized    = "mobile-optimized"
	LowBandwidth       = "low-bandwidth"
	StorageConstrained = "storage-constrained"
)

// Profiles holds the five canonical processing profiles keyed by name.
var Profiles = map[string]ProcessingProfile{
	HighPerformance: {
		Name:                      HighPerformance,
		Quality:                   0.9,
		MaxWidth:                  2560,
		MaxHeight:                 1440,
		CompressionThresholdBytes: 2 * 1024 * 1024,
		UseParallelWorkers:        true,
		MaxConcurrentProcessing:   4,
	},
	Balanced: {
		Name:                      Balanced,
		Quality:                   0.8,
		MaxWidth:                  1920,
		MaxHeight:                 1080,
		CompressionThresholdBytes: 1024 * 1024,
		UseParallelWorkers:        true,
		MaxConcurrentProcessing:   2,
	},
	MobileOptimized: {
		Name:                      MobileOptimized,
		Quality:                   0.7,
		MaxWidth:                  1280,
		MaxHeight:                 720,
		CompressionThresholdBytes: 512 * 1024,
		UseParallelWorkers:        false,
		MaxConcurrentProcessing:   1,
	},
	LowBandwidth: {
		Name:                      LowBandwidth,
		Quality:                   0.6,
		MaxWidth:                  1280,
		MaxHeight:                 720,
		CompressionThresholdBytes: 300 * 1024,
		UseParallelWorkers:        false,
		MaxConcurrentProcessing:   1,
	},
	StorageConstrained: {
		Name:                      StorageConstrained,
		Quality:                   0.5,
		MaxWidth:                  1024,
		MaxHeight:                 576,
		CompressionThresholdBytes: 200 * 1024,
		UseParallelWorkers:        false,
		MaxConcurrentProcessing:   1,
	},
}

// Get returns the canonical profile with the given name, falling back to
// the balanced profile for unknown names.
func Get(name string) ProcessingProfile {
	if p, ok := Profiles[name]; ok {
		return p
	}
	return Profiles[Balanced]
}
