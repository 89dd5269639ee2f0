package profile

import (
	"testing"
	"time"

	"media-pipeline/internal/capability"
)

func TestMonitorDrivesRefresh(t *testing.T) {
	provider := &capability.StaticProvider{
		DeviceInfo:  capability.DeviceInfo{Class: capability.ClassDesktop, MemoryGB: 16, Cores: 8},
		NetworkInfo: capability.NetworkInfo{EffectiveType: "4g", DownlinkMbps: 50},
		StorageInfo: capability.StorageInfo{AvailableBytes: 10 << 30},
		Parallel:    true,
	}
	s := NewSelector(provider)
	if s.Current().Name == StorageConstrained {
		t.Fatal("selector started storage-constrained")
	}

	m := NewMonitor(s, 10*time.Millisecond)
	m.Start()
	defer m.Stop()

	// Storage drops below the critical threshold; the monitor's next
	// refresh should switch the profile without any processing traffic.
	provider.SetStorage(capability.StorageInfo{AvailableBytes: 10 << 20})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Current().Name == StorageConstrained {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("profile = %s after storage went critical, want storage-constrained", s.Current().Name)
}

func TestMonitorStopTerminates(t *testing.T) {
	provider := &capability.StaticProvider{
		DeviceInfo:  capability.DeviceInfo{Class: capability.ClassDesktop, MemoryGB: 8, Cores: 4},
		NetworkInfo: capability.NetworkInfo{EffectiveType: "4g", DownlinkMbps: 20},
		StorageInfo: capability.StorageInfo{AvailableBytes: 1 << 30},
	}
	m := NewMonitor(NewSelector(provider), 5*time.Millisecond)
	m.Start()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
