package fallback

import (
	"context"

	"media-pipeline/internal/capture"
	"media-pipeline/internal/logging"
)

// Coordinator checks capture capability for one camera backend.
type Coordinator struct {
	camera capture.Camera
}

// New creates a Coordinator over the given backend.
func New(camera capture.Camera) *Coordinator {
	return &Coordinator{camera: camera}
}

// CaptureSupported reports whether camera capture can work here at all:
// the context supports the capture APIs and at least one camera is
// enumerable. A false result means the manual file-input path should be
// offered instead of a capture session.
func (c *Coordinator) CaptureSupported(ctx context.Context) bool {
	if !c.camera.Supported() {
		logging.Debug("Capture unsupported: missing APIs or insecure context")
		return false
	}

	devices, err := c.camera.Devices(ctx)
	if err != nil {
		logging.Debug("Capture unsupported: enumeration failed: %v", err)
		return false
	}
	if len(devices) == 0 {
		logging.Debug("Capture unsupported: no cameras enumerable")
		return false
	}
	return true
}

// Classify passes a capture failure through the session's error
// taxonomy so the caller can render a targeted remedy.
func Classify(err error) *capture.Error {
	return capture.Classify(capture.OpStart, err)
}

// ShouldFallback reports whether a classified failure means capture is
// unusable and the file-input path should replace it. Transient device
// conditions and permission denials do not retire the capture path; the
// user can retry after the device frees up or settings change.
func ShouldFallback(err error) bool {
	switch Classify(err).Kind {
	case capture.KindUnsupported, capture.KindDeviceNotFound:
		return true
	default:
		return false
	}
}
