package profile

import (
	"testing"
	"time"

	"media-pipeline/internal/capability"
)

func balancedProvider() *capability.StaticProvider {
	return &capability.StaticProvider{
		DeviceInfo:  capability.DeviceInfo{Class: capability.ClassDesktop, MemoryGB: 8, Cores: 4},
		NetworkInfo: capability.NetworkInfo{EffectiveType: capability.EffectiveType4G, DownlinkMbps: 5},
		StorageInfo: capability.StorageInfo{AvailableBytes: 10 << 30},
		Parallel:    true,
	}
}

func TestNewSelectorInitialProfile(t *testing.T) {
	s := NewSelector(balancedProvider())
	if s.Current().Name != Balanced {
		t.Errorf("initial profile = %s, want %s", s.Current().Name, Balanced)
	}
}

func TestRecordProcessingTimeSwitches(t *testing.T) {
	s := NewSelector(balancedProvider())

	var changes []Change
	s.OnAdaptationChange(func(c Change) { changes = append(changes, c) })

	// Very slow processing should switch to mobile-optimized.
	for i := 0; i < 5; i++ {
		s.RecordProcessingTime(12 * time.Second)
	}
	if s.Current().Name != MobileOptimized {
		t.Fatalf("profile = %s after slow samples, want %s", s.Current().Name, MobileOptimized)
	}
	if len(changes) != 1 || changes[0].Reason != ReasonProcessingSlow {
		t.Fatalf("changes = %+v, want one processing-slow change", changes)
	}
	if changes[0].Previous.Name != Balanced || changes[0].New.Name != MobileOptimized {
		t.Errorf("change carried wrong profiles: %+v", changes[0])
	}

	// Fast samples push the window average below 2s and switch back.
	for i := 0; i < 10; i++ {
		s.RecordProcessingTime(100 * time.Millisecond)
	}
	if s.Current().Name != Balanced {
		t.Fatalf("profile = %s after fast samples, want %s", s.Current().Name, Balanced)
	}
	last := changes[len(changes)-1]
	if last.Reason != ReasonProcessingRecovered {
		t.Errorf("last change reason = %s, want %s", last.Reason, ReasonProcessingRecovered)
	}
}

func TestTrailingWindowKeepsLastTen(t *testing.T) {
	s := NewSelector(balancedProvider())

	// One huge outlier followed by ten small samples: the outlier must
	// have aged out of the window.
	s.RecordProcessingTime(time.Hour)
	for i := 0; i < 10; i++ {
		s.RecordProcessingTime(time.Second)
	}
	if avg := s.AverageProcessingTime(); avg != time.Second {
		t.Errorf("AverageProcessingTime() = %v, want 1s", avg)
	}
}

func TestRefreshStorageCrossing(t *testing.T) {
	p := balancedProvider()
	s := NewSelector(p)

	var changes []Change
	s.OnAdaptationChange(func(c Change) { changes = append(changes, c) })

	p.SetStorage(capability.StorageInfo{AvailableBytes: capability.CriticalStorageBytes - 1})
	s.Refresh()

	if s.Current().Name != StorageConstrained {
		t.Fatalf("profile = %s after storage crossing, want %s", s.Current().Name, StorageConstrained)
	}
	if len(changes) != 1 || changes[0].Reason != ReasonStorageCritical {
		t.Fatalf("changes = %+v, want one storage-critical change", changes)
	}

	// Crossing back re-selects.
	p.SetStorage(capability.StorageInfo{AvailableBytes: 10 << 30})
	s.Refresh()
	if s.Current().Name != Balanced {
		t.Errorf("profile = %s after storage recovery, want %s", s.Current().Name, Balanced)
	}
	if changes[len(changes)-1].Reason != ReasonStorageRecovered {
		t.Errorf("last reason = %s, want %s", changes[len(changes)-1].Reason, ReasonStorageRecovered)
	}
}

func TestRefreshNetworkCrossing(t *testing.T) {
	p := balancedProvider()
	s := NewSelector(p)

	p.SetNetwork(capability.NetworkInfo{EffectiveType: capability.EffectiveType2G, DownlinkMbps: 0.2})
	s.Refresh()
	if s.Current().Name != LowBandwidth {
		t.Fatalf("profile = %s after network degradation, want %s", s.Current().Name, LowBandwidth)
	}

	p.SetNetwork(capability.NetworkInfo{EffectiveType: capability.EffectiveType4G, DownlinkMbps: 5})
	s.Refresh()
	if s.Current().Name != Balanced {
		t.Errorf("profile = %s after network recovery, want %s", s.Current().Name, Balanced)
	}
}

func TestRefreshWithoutCrossingKeepsProfile(t *testing.T) {
	p := balancedProvider()
	s := NewSelector(p)

	var changes []Change
	s.OnAdaptationChange(func(c Change) { changes = append(changes, c) })

	s.Refresh()
	s.Refresh()

	if len(changes) != 0 {
		t.Errorf("changes = %+v, want none without threshold crossings", changes)
	}
}

func TestListenerPanicIsContained(t *testing.T) {
	p := balancedProvider()
	s := NewSelector(p)

	s.OnAdaptationChange(func(Change) { panic("broken listener") })

	var got *Change
	s.OnAdaptationChange(func(c Change) { got = &c })

	p.SetStorage(capability.StorageInfo{AvailableBytes: 0})
	s.Refresh() // must not panic

	if got == nil {
		t.Error("second listener not invoked after first panicked")
	}
}

func TestOptimalSettingsOverrides(t *testing.T) {
	s := NewSelector(balancedProvider())

	q := 0.95
	w := 640
	settings := s.OptimalSettings(Overrides{Quality: &q, MaxWidth: &w})

	if settings.Quality != 0.95 {
		t.Errorf("Quality = %f, want 0.95", settings.Quality)
	}
	if settings.MaxWidth != 640 {
		t.Errorf("MaxWidth = %d, want 640", settings.MaxWidth)
	}
	// Untouched fields come from the balanced profile.
	if settings.MaxHeight != Profiles[Balanced].MaxHeight {
		t.Errorf("MaxHeight = %d, want profile value %d", settings.MaxHeight, Profiles[Balanced].MaxHeight)
	}
}

func TestOptimalSettingsSlowProcessingAdjustment(t *testing.T) {
	s := NewSelector(balancedProvider())

	for i := 0; i < 10; i++ {
		s.RecordProcessingTime(7 * time.Second)
	}

	settings := s.OptimalSettings(Overrides{})
	want := Profiles[Balanced].Quality - 0.1
	if settings.Quality != want {
		t.Errorf("Quality = %f, want %f", settings.Quality, want)
	}
	if settings.MaxWidth != 1280 || settings.MaxHeight != 720 {
		t.Errorf("dimensions = %dx%d, want capped 1280x720", settings.MaxWidth, settings.MaxHeight)
	}

	// The canonical profile itself must be untouched.
	if Profiles[Balanced].Quality != 0.8 {
		t.Errorf("canonical balanced quality mutated to %f", Profiles[Balanced].Quality)
	}
}

func TestOptimalSettingsQualityFloor(t *testing.T) {
	p := balancedProvider()
	p.SetBattery(capability.BatteryInfo{Supported: true, Level: 0.1, Charging: false})
	s := NewSelector(p)

	for i := 0; i < 10; i++ {
		s.RecordProcessingTime(7 * time.Second)
	}

	// Balanced 0.8 − 0.1 (slow) − 0.2 (battery) = 0.5; floor holds.
	settings := s.OptimalSettings(Overrides{})
	if settings.Quality != 0.5 {
		t.Errorf("Quality = %f, want floor 0.5", settings.Quality)
	}
	if settings.MaxConcurrentProcessing != 1 || settings.UseParallelWorkers {
		t.Error("low battery should force serial processing")
	}
}

func TestOptimalSettingsBatteryChargingNoAdjustment(t *testing.T) {
	p := balancedProvider()
	p.SetBattery(capability.BatteryInfo{Supported: true, Level: 0.1, Charging: true})
	s := NewSelector(p)

	settings := s.OptimalSettings(Overrides{})
	if settings.Quality != Profiles[Balanced].Quality {
		t.Errorf("Quality = %f, charging battery should not reduce it", settings.Quality)
	}
}
