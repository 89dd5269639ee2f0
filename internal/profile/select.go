package profile

import "media-pipeline/internal/capability"

// PerformanceScore computes a device performance score in [0,1]:
// 0.4·min(memoryGB/8,1) + 0.3·min(cores/8,1) + 0.15 for mobile devices
// or 0.30 otherwise.
func PerformanceScore(dev capability.DeviceInfo) float64 {
	memScore := dev.MemoryGB / 8
	if memScore > 1 {
		memScore = 1
	}
	coreScore := float64(dev.Cores) / 8
	if coreScore > 1 {
		coreScore = 1
	}

	classScore := 0.30
	if dev.IsMobile() {
		classScore = 0.15
	}

	return 0.4*memScore + 0.3*coreScore + classScore
}

// SelectProfile picks a canonical profile from capability readings.
// Rules are evaluated in strict priority order; the first match wins:
//
//  1. critical storage → storage-constrained
//  2. save-data or slow network → low-bandwidth
//  3. low (non-critical) storage → storage-constrained
//  4. weak device (mobile with score < 0.5, memory < 2GB, or < 2 cores)
//     → mobile-optimized
//  5. score > 0.8 and fast network → high-performance
//  6. default → balanced
func SelectProfile(dev capability.DeviceInfo, net capability.NetworkInfo, st capability.StorageInfo) ProcessingProfile {
	score := PerformanceScore(dev)

	switch {
	case st.IsCritical():
		return Profiles[StorageConstrained]
	case net.SaveData || net.IsSlow():
		return Profiles[LowBandwidth]
	case st.IsLow():
		return Profiles[StorageConstrained]
	case (dev.IsMobile() && score < 0.5) || dev.MemoryGB < 2 || dev.Cores < 2:
		return Profiles[MobileOptimized]
	case score > 0.8 && net.IsFast():
		return Profiles[HighPerformance]
	default:
		return Profiles[Balanced]
	}
}
