// Package workers provides utilities for determining optimal worker pool
// sizes in containerized environments.
//
// When running in containers the number of available CPUs may be limited by
// cgroup constraints. Go 1.19+ sets GOMAXPROCS from the container CPU limit
// automatically, while runtime.NumCPU() still reports the host CPU count.
// This package derives worker counts from GOMAXPROCS so concurrency caps
// respect container limits.
//
// The pipeline uses these helpers to size the default processing and upload
// concurrency limits when a profile does not pin them explicitly:
//
//	processing := workers.ForCPU(8) // CPU-bound: decode/encode
//	uploads := workers.ForIO(16)    // I/O-bound: network requests
//
// All functions respect the PIPELINE_WORKERS environment variable, allowing
// operators to override the automatic calculation.
package workers
