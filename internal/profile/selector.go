package profile

import (
	"sync"
	"time"

	"media-pipeline/internal/capability"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/metrics"
)

const (
	// trailingWindow is the number of processing-time samples kept.
	trailingWindow = 10

	// slowProcessing triggers the per-call quality reduction.
	slowProcessing = 5 * time.Second
	// verySlowProcessing triggers an automatic switch to mobile-optimized.
	verySlowProcessing = 10 * time.Second
	// fastProcessing triggers a switch back to balanced from mobile-optimized.
	fastProcessing = 2 * time.Second

	// minQuality is the floor below which adjustments never push quality.
	minQuality = 0.5

	// lowBatteryLevel is the charge level below which battery adjustments apply.
	lowBatteryLevel = 0.2

	// Dimension caps applied when processing is running slow.
	slowMaxWidth  = 1280
	slowMaxHeight = 720
)

// Machine-readable reasons reported with automatic profile switches.
const (
	ReasonProcessingSlow      = "processing-slow"
	ReasonProcessingRecovered = "processing-recovered"
	ReasonStorageCritical     = "storage-critical"
	ReasonStorageRecovered    = "storage-recovered"
	ReasonNetworkDegraded     = "network-degraded"
	ReasonNetworkImproved     = "network-improved"
)

// Change describes an automatic profile switch.
type Change struct {
	Previous ProcessingProfile
	New      ProcessingProfile
	Reason   string
}

// ChangeListener receives profile change notifications. Listeners are
// invoked synchronously; panics are caught and logged, never propagated.
type ChangeListener func(Change)

// Settings is the merged, adjusted parameter set returned by
// OptimalSettings. It is a snapshot; mutating it has no effect on the
// selected profile.
type Settings struct {
	Quality                   float64
	MaxWidth                  int
	MaxHeight                 int
	CompressionThresholdBytes int64
	UseParallelWorkers        bool
	MaxConcurrentProcessing   int
}

// Overrides contains optional caller overrides merged into the selected
// profile's settings before adjustments. Nil fields keep profile values.
type Overrides struct {
	Quality                   *float64
	MaxWidth                  *int
	MaxHeight                 *int
	CompressionThresholdBytes *int64
	UseParallelWorkers        *bool
	MaxConcurrentProcessing   *int
}

// Selector chooses a ProcessingProfile from capability readings and
// adapts it as processing times and conditions change.
type Selector struct {
	provider capability.Provider

	mu        sync.Mutex
	current   ProcessingProfile
	times     []time.Duration
	listeners []ChangeListener

	lastStorageCritical bool
	lastNetworkSlow     bool
	lastNetworkFast     bool
}

// NewSelector creates a Selector and performs the initial profile
// selection. Probe failures fall back to the balanced profile.
func NewSelector(provider capability.Provider) *Selector {
	s := &Selector{provider: provider}

	dev, net, st, err := s.sample()
	if err != nil {
		logging.Warn("Capability probe failed, falling back to balanced profile: %v", err)
		s.current = Profiles[Balanced]
	} else {
		s.current = SelectProfile(dev, net, st)
		s.lastStorageCritical = st.IsCritical()
		s.lastNetworkSlow = net.IsSlow()
		s.lastNetworkFast = net.IsFast()
	}

	metrics.ProfileCurrent.WithLabelValues(s.current.Name).Set(1)
	logging.Info("Initial processing profile: %s", s.current.Name)
	return s
}

func (s *Selector) sample() (capability.DeviceInfo, capability.NetworkInfo, capability.StorageInfo, error) {
	dev, err := s.provider.Device()
	if err != nil {
		return dev, capability.NetworkInfo{}, capability.StorageInfo{}, err
	}
	net, err := s.provider.Network()
	if err != nil {
		return dev, net, capability.StorageInfo{}, err
	}
	st, err := s.provider.Storage()
	if err != nil {
		return dev, net, st, err
	}
	return dev, net, st, nil
}

// Current returns the currently selected profile.
func (s *Selector) Current() ProcessingProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// OnAdaptationChange registers a listener for automatic profile switches.
func (s *Selector) OnAdaptationChange(fn ChangeListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// RecordProcessingTime feeds one observed processing duration into the
// trailing window and applies the processing-time switch rules: a trailing
// average above 10s switches to mobile-optimized; an average below 2s
// while on mobile-optimized switches back to balanced.
func (s *Selector) RecordProcessingTime(d time.Duration) {
	s.mu.Lock()
	s.times = append(s.times, d)
	if len(s.times) > trailingWindow {
		s.times = s.times[len(s.times)-trailingWindow:]
	}
	avg := s.averageLocked()
	current := s.current
	s.mu.Unlock()

	if avg > verySlowProcessing && current.Name != MobileOptimized {
		s.switchTo(Profiles[MobileOptimized], ReasonProcessingSlow)
	} else if avg > 0 && avg < fastProcessing && current.Name == MobileOptimized {
		s.switchTo(Profiles[Balanced], ReasonProcessingRecovered)
	}
}

// AverageProcessingTime returns the trailing-window average, or zero when
// no samples have been recorded.
func (s *Selector) AverageProcessingTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.averageLocked()
}

func (s *Selector) averageLocked() time.Duration {
	if len(s.times) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.times {
		total += d
	}
	return total / time.Duration(len(s.times))
}

// Refresh resamples the capability provider and switches profiles when
// storage crosses the critical threshold or the network crosses the
// slow/fast threshold in either direction.
func (s *Selector) Refresh() {
	dev, net, st, err := s.sample()
	if err != nil {
		logging.Warn("Capability refresh failed: %v", err)
		return
	}

	s.mu.Lock()
	storageCrossed := st.IsCritical() != s.lastStorageCritical
	networkCrossed := net.IsSlow() != s.lastNetworkSlow || net.IsFast() != s.lastNetworkFast

	var reason string
	switch {
	case storageCrossed && st.IsCritical():
		reason = ReasonStorageCritical
	case storageCrossed:
		reason = ReasonStorageRecovered
	case networkCrossed && net.IsSlow():
		reason = ReasonNetworkDegraded
	case networkCrossed:
		reason = ReasonNetworkImproved
	}

	s.lastStorageCritical = st.IsCritical()
	s.lastNetworkSlow = net.IsSlow()
	s.lastNetworkFast = net.IsFast()
	s.mu.Unlock()

	if reason == "" {
		return
	}

	s.switchTo(SelectProfile(dev, net, st), reason)
}

// switchTo replaces the current profile and notifies listeners. No-op if
// the profile is already selected.
func (s *Selector) switchTo(p ProcessingProfile, reason string) {
	s.mu.Lock()
	if s.current.Name == p.Name {
		s.mu.Unlock()
		return
	}
	prev := s.current
	s.current = p
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	metrics.ProfileCurrent.WithLabelValues(prev.Name).Set(0)
	metrics.ProfileCurrent.WithLabelValues(p.Name).Set(1)
	metrics.ProfileSwitchesTotal.WithLabelValues(reason).Inc()
	logging.Info("Profile switch: %s -> %s (%s)", prev.Name, p.Name, reason)

	change := Change{Previous: prev, New: p, Reason: reason}
	for _, fn := range listeners {
		s.notify(fn, change)
	}
}

// notify invokes one listener, containing any panic.
func (s *Selector) notify(fn ChangeListener, change Change) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Profile change listener panicked: %v", r)
		}
	}()
	fn(change)
}

// OptimalSettings returns the selected profile's parameters merged with
// overrides, then adjusted for current conditions:
//
//   - trailing average processing time above 5s reduces quality by 0.1
//     (floor 0.5) and caps dimensions at 1280×720
//   - battery below 20% while discharging reduces quality by a further
//     0.2 (floor 0.5) and forces parallelism to 1
//
// Adjustments are transient: they apply to the returned Settings only and
// are never written back into the profile.
func (s *Selector) OptimalSettings(o Overrides) Settings {
	s.mu.Lock()
	p := s.current
	avg := s.averageLocked()
	s.mu.Unlock()

	settings := Settings{
		Quality:                   p.Quality,
		MaxWidth:                  p.MaxWidth,
		MaxHeight:                 p.MaxHeight,
		CompressionThresholdBytes: p.CompressionThresholdBytes,
		UseParallelWorkers:        p.UseParallelWorkers,
		MaxConcurrentProcessing:   p.MaxConcurrentProcessing,
	}

	if o.Quality != nil {
		settings.Quality = *o.Quality
	}
	if o.MaxWidth != nil {
		settings.MaxWidth = *o.MaxWidth
	}
	if o.MaxHeight != nil {
		settings.MaxHeight = *o.MaxHeight
	}
	if o.CompressionThresholdBytes != nil {
		settings.CompressionThresholdBytes = *o.CompressionThresholdBytes
	}
	if o.UseParallelWorkers != nil {
		settings.UseParallelWorkers = *o.UseParallelWorkers
	}
	if o.MaxConcurrentProcessing != nil {
		settings.MaxConcurrentProcessing = *o.MaxConcurrentProcessing
	}

	if avg > slowProcessing {
		settings.Quality = clampQuality(settings.Quality - 0.1)
		if settings.MaxWidth > slowMaxWidth {
			settings.MaxWidth = slowMaxWidth
		}
		if settings.MaxHeight > slowMaxHeight {
			settings.MaxHeight = slowMaxHeight
		}
		logging.Debug("Slow processing (avg %v), reduced quality to %.2f", avg, settings.Quality)
	}

	if bat, err := s.provider.Battery(); err == nil && bat.Supported && !bat.Charging && bat.Level < lowBatteryLevel {
		settings.Quality = clampQuality(settings.Quality - 0.2)
		settings.UseParallelWorkers = false
		settings.MaxConcurrentProcessing = 1
		logging.Debug("Low battery (%.0f%%), reduced quality to %.2f and forced serial processing",
			bat.Level*100, settings.Quality)
	}

	return settings
}

func clampQuality(q float64) float64 {
	if q < minQuality {
		return minQuality
	}
	return q
}
