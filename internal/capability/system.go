package capability

import (
	"fmt"
	"runtime"

	"media-pipeline/internal/logging"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemProvider reads capability information from the host via gopsutil.
//
// Network quality and battery state are not observable through system
// calls alone, so SystemProvider carries a NetworkInfo configured at
// construction (typically from environment or measured externally) and
// reports battery as unsupported.
type SystemProvider struct {
	storagePath string
	network     NetworkInfo
}

// NewSystemProvider creates a provider that samples storage headroom at
// storagePath and reports the given network reading.
func NewSystemProvider(storagePath string, network NetworkInfo) *SystemProvider {
	if storagePath == "" {
		storagePath = "/"
	}
	return &SystemProvider{storagePath: storagePath, network: network}
}

// Device returns hardware capability readings for the host.
// Hosts are always desktop-class; mobile and tablet classes come from
// StaticProvider configurations.
func (p *SystemProvider) Device() (DeviceInfo, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("failed to read system memory: %w", err)
	}

	cores, err := cpu.Counts(true)
	if err != nil {
		logging.Warn("Failed to count CPUs, falling back to GOMAXPROCS: %v", err)
		cores = runtime.GOMAXPROCS(0)
	}

	return DeviceInfo{
		Class:    ClassDesktop,
		MemoryGB: float64(vm.Total) / (1024 * 1024 * 1024),
		Cores:    cores,
	}, nil
}

// Network returns the configured network reading.
func (p *SystemProvider) Network() (NetworkInfo, error) {
	return p.network, nil
}

// Storage returns available bytes at the configured storage path.
func (p *SystemProvider) Storage() (StorageInfo, error) {
	usage, err := disk.Usage(p.storagePath)
	if err != nil {
		return StorageInfo{}, fmt.Errorf("failed to read storage usage for %s: %w", p.storagePath, err)
	}
	return StorageInfo{AvailableBytes: usage.Free}, nil
}

// Battery reports unsupported: hosts sampled via gopsutil do not expose
// battery state to this provider.
func (p *SystemProvider) Battery() (BatteryInfo, error) {
	return BatteryInfo{Supported: false}, nil
}

// SupportsParallelProcessing returns true when more than one CPU is
// available.
func (p *SystemProvider) SupportsParallelProcessing() bool {
	return runtime.GOMAXPROCS(0) > 1
}
