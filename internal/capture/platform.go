package capture

import (
	"context"
	"image"
)

// Device identifies one enumerable camera.
type Device struct {
	ID     string
	Label  string
	Facing string // "user", "environment", or empty
}

// Camera abstracts the platform capture backend. Implementations return
// the package's sentinel errors for platform conditions so Classify can
// map them.
type Camera interface {
	// Supported reports whether capture is usable at all in this
	// context (secure origin, required APIs present).
	Supported() bool

	// RequestPermission prompts for camera access. Returns
	// ErrPermissionDenied when the user refuses.
	RequestPermission(ctx context.Context) error

	// Devices enumerates available cameras.
	Devices(ctx context.Context) ([]Device, error)

	// Open acquires a live stream from the given device.
	Open(ctx context.Context, deviceID string) (Stream, error)
}

// Stream is one open camera stream.
type Stream interface {
	Device() Device

	// Frame grabs the current frame.
	Frame(ctx context.Context) (image.Image, error)

	// Pause suspends the stream's tracks without releasing the device.
	Pause() error

	// Resume restarts paused tracks.
	Resume() error

	// Close releases the device. Safe to call more than once.
	Close() error
}

// Recorder records a stream into an encoded video blob.
type Recorder interface {
	Start(ctx context.Context, s Stream) error

	// Stop finishes the recording and returns the encoded bytes.
	Stop() ([]byte, error)
}

// RecorderFactory builds a fresh Recorder per recording. Sessions with a
// nil factory reject video operations as unsupported.
type RecorderFactory func() Recorder
