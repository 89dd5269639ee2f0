package profile

import (
	"math"
	"testing"

	"media-pipeline/internal/capability"
)

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name string
		dev  capability.DeviceInfo
		want float64
	}{
		{
			name: "High end desktop",
			dev:  capability.DeviceInfo{Class: capability.ClassDesktop, MemoryGB: 16, Cores: 16},
			want: 0.4 + 0.3 + 0.30,
		},
		{
			name: "Mid mobile",
			dev:  capability.DeviceInfo{Class: capability.ClassMobile, MemoryGB: 4, Cores: 4},
			want: 0.4*0.5 + 0.3*0.5 + 0.15,
		},
		{
			name: "Weak mobile",
			dev:  capability.DeviceInfo{Class: capability.ClassMobile, MemoryGB: 1, Cores: 1},
			want: 0.4*0.125 + 0.3*0.125 + 0.15,
		},
		{
			name: "Memory and cores capped at 8",
			dev:  capability.DeviceInfo{Class: capability.ClassDesktop, MemoryGB: 64, Cores: 64},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerformanceScore(tt.dev)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PerformanceScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSelectProfilePriority(t *testing.T) {
	strongDesktop := capability.DeviceInfo{Class: capability.ClassDesktop, MemoryGB: 16, Cores: 8}
	weakMobile := capability.DeviceInfo{Class: capability.ClassMobile, MemoryGB: 1, Cores: 1}
	fastNet := capability.NetworkInfo{EffectiveType: capability.EffectiveType4G, DownlinkMbps: 50}
	midNet := capability.NetworkInfo{EffectiveType: capability.EffectiveType4G, DownlinkMbps: 5}
	slowNet := capability.NetworkInfo{EffectiveType: capability.EffectiveType2G, DownlinkMbps: 0.3}
	plenty := capability.StorageInfo{AvailableBytes: 10 << 30}
	low := capability.StorageInfo{AvailableBytes: capability.LowStorageBytes - 1}
	critical := capability.StorageInfo{AvailableBytes: capability.CriticalStorageBytes - 1}

	tests := []struct {
		name string
		dev  capability.DeviceInfo
		net  capability.NetworkInfo
		st   capability.StorageInfo
		want string
	}{
		{"Critical storage beats fast network", strongDesktop, fastNet, critical, StorageConstrained},
		{"Critical storage beats slow network", weakMobile, slowNet, critical, StorageConstrained},
		{"Slow network beats low storage", strongDesktop, slowNet, low, LowBandwidth},
		{"Save-data flag forces low bandwidth", strongDesktop,
			capability.NetworkInfo{EffectiveType: capability.EffectiveType4G, DownlinkMbps: 50, SaveData: true},
			plenty, LowBandwidth},
		{"Low storage beats device class", weakMobile, fastNet, low, StorageConstrained},
		{"Weak mobile regardless of fast network", weakMobile, fastNet, plenty, MobileOptimized},
		{"Weak mobile on mid network", weakMobile, midNet, plenty, MobileOptimized},
		{"Low memory desktop", capability.DeviceInfo{Class: capability.ClassDesktop, MemoryGB: 1.5, Cores: 8},
			fastNet, plenty, MobileOptimized},
		{"Single core desktop", capability.DeviceInfo{Class: capability.ClassDesktop, MemoryGB: 8, Cores: 1},
			fastNet, plenty, MobileOptimized},
		{"Strong device fast network", strongDesktop, fastNet, plenty, HighPerformance},
		{"Strong device mid network falls to balanced", strongDesktop, midNet, plenty, Balanced},
		{"Mid mobile defaults to balanced", capability.DeviceInfo{Class: capability.ClassMobile, MemoryGB: 6, Cores: 8},
			midNet, plenty, Balanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectProfile(tt.dev, tt.net, tt.st)
			if got.Name != tt.want {
				t.Errorf("SelectProfile() = %s, want %s", got.Name, tt.want)
			}
		})
	}
}

func TestGet(t *testing.T) {
	if Get(HighPerformance).Name != HighPerformance {
		t.Error("Get(HighPerformance) returned wrong profile")
	}
	if Get("nonsense").Name != Balanced {
		t.Error("Get with unknown name should fall back to balanced")
	}
}

func TestProfileInvariants(t *testing.T) {
	for name, p := range Profiles {
		if p.Name != name {
			t.Errorf("profile %s has mismatched Name %s", name, p.Name)
		}
		if p.Quality < 0 || p.Quality > 1 {
			t.Errorf("profile %s quality %f out of range", name, p.Quality)
		}
		if p.MaxConcurrentProcessing < 1 {
			t.Errorf("profile %s concurrency %d below 1", name, p.MaxConcurrentProcessing)
		}
		if p.MaxWidth <= 0 || p.MaxHeight <= 0 {
			t.Errorf("profile %s has non-positive dimensions", name)
		}
	}
}
