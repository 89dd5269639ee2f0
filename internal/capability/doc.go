// Package capability abstracts the device, network, storage, and battery
// probes that drive adaptive profile selection.
//
// The pipeline never inspects platform state directly; it queries a
// Provider. SystemProvider reads real system values via gopsutil, while
// StaticProvider returns fixed readings and is the substitution point for
// tests and for hosts where a probe is not meaningful (for example battery
// state on a server).
package capability
