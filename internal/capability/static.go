package capability

import "sync"

// StaticProvider returns fixed capability readings. It is the substitution
// point for tests and for embedding capability reports received from a
// client device.
type StaticProvider struct {
	mu sync.RWMutex

	DeviceInfo  DeviceInfo
	NetworkInfo NetworkInfo
	StorageInfo StorageInfo
	BatteryInfo BatteryInfo
	Parallel    bool
}

// Device returns the configured device reading.
func (p *StaticProvider) Device() (DeviceInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.DeviceInfo, nil
}

// Network returns the configured network reading.
func (p *StaticProvider) Network() (NetworkInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.NetworkInfo, nil
}

// Storage returns the configured storage reading.
func (p *StaticProvider) Storage() (StorageInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.StorageInfo, nil
}

// Battery returns the configured battery reading.
func (p *StaticProvider) Battery() (BatteryInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.BatteryInfo, nil
}

// SupportsParallelProcessing returns the configured parallelism flag.
func (p *StaticProvider) SupportsParallelProcessing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Parallel
}

// SetNetwork replaces the network reading. Safe for concurrent use with
// the getters, so tests can simulate network changes mid-run.
func (p *StaticProvider) SetNetwork(n NetworkInfo) {
	p.mu.Lock()
	p.NetworkInfo = n
	p.mu.Unlock()
}

// SetStorage replaces the storage reading.
func (p *StaticProvider) SetStorage(s StorageInfo) {
	p.mu.Lock()
	p.StorageInfo = s
	p.mu.Unlock()
}

// SetBattery replaces the battery reading.
func (p *StaticProvider) SetBattery(b BatteryInfo) {
	p.mu.Lock()
	p.BatteryInfo = b
	p.mu.Unlock()
}
