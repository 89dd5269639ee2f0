package capability

// DeviceClass categorizes the hardware the pipeline runs on.
type DeviceClass string

const (
	// ClassMobile is a phone-class device.
	ClassMobile DeviceClass = "mobile"
	// ClassTablet is a tablet-class device.
	ClassTablet DeviceClass = "tablet"
	// ClassDesktop is a desktop or server-class device.
	ClassDesktop DeviceClass = "desktop"
)

// Network effective-type values, mirroring the common connection taxonomy.
const (
	EffectiveTypeSlow2G = "slow-2g"
	EffectiveType2G     = "2g"
	EffectiveType3G     = "3g"
	EffectiveType4G     = "4g"
)

// Thresholds for derived network and storage flags.
const (
	// SlowDownlinkMbps is the downlink below which a connection counts as slow.
	SlowDownlinkMbps = 1.0
	// FastDownlinkMbps is the downlink above which a connection counts as fast.
	FastDownlinkMbps = 10.0
	// LowStorageBytes is the headroom below which storage counts as low.
	LowStorageBytes = 100 * 1024 * 1024
	// CriticalStorageBytes is the headroom below which storage counts as critical.
	CriticalStorageBytes = 50 * 1024 * 1024
)

// DeviceInfo describes the hardware capability of the host.
type DeviceInfo struct {
	Class    DeviceClass
	MemoryGB float64
	Cores    int
}

// IsMobile returns true for phone-class devices.
func (d DeviceInfo) IsMobile() bool {
	return d.Class == ClassMobile
}

// NetworkInfo describes the current network connection.
type NetworkInfo struct {
	EffectiveType string
	DownlinkMbps  float64
	SaveData      bool
}

// IsSlow returns true if the connection is below the slow threshold or
// reports a 2G-class effective type.
func (n NetworkInfo) IsSlow() bool {
	if n.EffectiveType == EffectiveTypeSlow2G || n.EffectiveType == EffectiveType2G {
		return true
	}
	return n.DownlinkMbps > 0 && n.DownlinkMbps < SlowDownlinkMbps
}

// IsFast returns true if the connection is above the fast threshold.
func (n NetworkInfo) IsFast() bool {
	return n.DownlinkMbps >= FastDownlinkMbps
}

// StorageInfo describes available storage headroom.
type StorageInfo struct {
	AvailableBytes uint64
}

// IsLow returns true if headroom is below the low threshold.
func (s StorageInfo) IsLow() bool {
	return s.AvailableBytes < LowStorageBytes
}

// IsCritical returns true if headroom is below the critical threshold.
func (s StorageInfo) IsCritical() bool {
	return s.AvailableBytes < CriticalStorageBytes
}

// BatteryInfo describes battery state where the host exposes one.
type BatteryInfo struct {
	// Supported is false when no battery information is available;
	// Level and Charging are meaningless in that case.
	Supported bool
	// Level is the charge level in [0,1].
	Level float64
	Charging bool
}

// Provider supplies capability readings to the profile selector.
// Each method is independently refreshable; implementations should return
// current values on every call.
type Provider interface {
	Device() (DeviceInfo, error)
	Network() (NetworkInfo, error)
	Storage() (StorageInfo, error)
	Battery() (BatteryInfo, error)

	// SupportsParallelProcessing reports whether the host can usefully run
	// decode/encode work on multiple workers.
	SupportsParallelProcessing() bool
}
