package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"sync"
	"time"

	"media-pipeline/internal/events"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/metrics"

	"github.com/google/uuid"
)

// State is the session lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateActive       State = "active"
	StateRecording    State = "recording"
)

// Permission is the camera permission sub-state. Denied is terminal for
// the session attempt and routes the caller to the fallback path.
type Permission string

const (
	PermissionPrompt  Permission = "prompt"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

const (
	// DefaultMaxRecording bounds a recording before auto-stop.
	DefaultMaxRecording = 120 * time.Second

	// deviceCacheTTL is how long an enumeration result is reused.
	deviceCacheTTL = 30 * time.Second

	photoQuality = 92
)

// CapturedMedia is one photo or video captured in a session. Raw holds
// the captured bytes; Processed and Thumbnail stay nil until the caller
// runs the item through the processor.
type CapturedMedia struct {
	ID        string
	Kind      mediatypes.MediaKind
	Raw       []byte
	Processed []byte
	Thumbnail []byte
	CreatedAt time.Time
	SizeBytes int64
}

// Session owns one camera lifecycle. All mutation goes through its
// methods; the active stream is never handed out.
type Session struct {
	camera      Camera
	newRecorder RecorderFactory
	bus         *events.Bus

	// MaxRecording bounds video recording; the default is applied by
	// NewSession. Exposed for configuration before Start.
	MaxRecording time.Duration

	mu             sync.Mutex
	state          State
	permission     Permission
	stream         Stream
	backgrounded   bool
	devices        []Device
	devicesFetched time.Time
	items          []*CapturedMedia
	recorder       Recorder
	recordStop     *time.Timer
}

// NewSession creates an idle session. newRecorder may be nil for
// photo-only backends; video operations then fail as unsupported.
func NewSession(camera Camera, newRecorder RecorderFactory, bus *events.Bus) *Session {
	return &Session{
		camera:       camera,
		newRecorder:  newRecorder,
		bus:          bus,
		MaxRecording: DefaultMaxRecording,
		state:        StateIdle,
		permission:   PermissionPrompt,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Permission returns the permission sub-state.
func (s *Session) Permission() Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// CurrentDevice returns the active device, if any.
func (s *Session) CurrentDevice() (Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return Device{}, false
	}
	return s.stream.Device(), true
}

// Items returns a snapshot of the captured media list.
func (s *Session) Items() []*CapturedMedia {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*CapturedMedia, len(s.items))
	copy(out, s.items)
	return out
}

// Remove drops one captured item and releases its buffers.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			item.Raw, item.Processed, item.Thumbnail = nil, nil, nil
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Start acquires the camera: permission flow, enumeration, and stream
// acquisition for deviceID (empty means the first available device).
// Only an idle session can be started.
func (s *Session) Start(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session is %s, cannot start", state)
	}
	if s.permission == PermissionDenied {
		s.mu.Unlock()
		return s.fail(OpStart, ErrPermissionDenied)
	}
	s.setStateLocked(StateInitializing)
	s.mu.Unlock()

	if !s.camera.Supported() {
		s.toIdle()
		return s.fail(OpStart, ErrUnsupported)
	}

	if err := s.camera.RequestPermission(ctx); err != nil {
		s.mu.Lock()
		s.permission = PermissionDenied
		s.mu.Unlock()
		s.toIdle()
		return s.fail(OpStart, err)
	}
	s.mu.Lock()
	s.permission = PermissionGranted
	s.mu.Unlock()

	devices, err := s.Devices(ctx)
	if err != nil {
		s.toIdle()
		return s.fail(OpStart, err)
	}
	if len(devices) == 0 {
		s.toIdle()
		return s.fail(OpStart, ErrDeviceNotFound)
	}

	if deviceID == "" {
		deviceID = devices[0].ID
	} else if !deviceKnown(devices, deviceID) {
		s.toIdle()
		return s.fail(OpStart, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID))
	}

	stream, err := s.camera.Open(ctx, deviceID)
	if err != nil {
		s.toIdle()
		return s.fail(OpStart, err)
	}

	s.mu.Lock()
	s.stream = stream
	s.setStateLocked(StateActive)
	s.mu.Unlock()

	metrics.CaptureSessionsActive.Inc()
	logging.Info("Capture session started on device %s", deviceID)
	return nil
}

// Devices enumerates cameras, reusing a cached result for 30 seconds to
// avoid redundant platform calls.
func (s *Session) Devices(ctx context.Context) ([]Device, error) {
	s.mu.Lock()
	if s.devices != nil && time.Since(s.devicesFetched) < deviceCacheTTL {
		out := make([]Device, len(s.devices))
		copy(out, s.devices)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	devices, err := s.camera.Devices(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.devices = devices
	s.devicesFetched = time.Now()
	s.mu.Unlock()

	out := make([]Device, len(devices))
	copy(out, devices)
	return out, nil
}

// SwitchDevice moves the session to another camera. The next stream is
// acquired before the previous one is released, so the preview never
// goes dark; on failure the previous stream stays active.
func (s *Session) SwitchDevice(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	if s.state != StateActive {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session is %s, cannot switch device", state)
	}
	prev := s.stream
	s.mu.Unlock()

	next, err := s.camera.Open(ctx, deviceID)
	if err != nil {
		logging.Warn("Device switch to %s failed, keeping %s: %v", deviceID, prev.Device().ID, err)
		return s.fail(OpSwitch, err)
	}

	s.mu.Lock()
	s.stream = next
	s.mu.Unlock()

	if err := prev.Close(); err != nil {
		logging.Warn("Failed to release previous stream: %v", err)
	}
	logging.Info("Switched capture device to %s", deviceID)
	return nil
}

// CapturePhoto grabs and encodes the current frame. It rejects frames
// with zero dimensions and empty encodes.
func (s *Session) CapturePhoto(ctx context.Context) (*CapturedMedia, error) {
	s.mu.Lock()
	if s.state != StateActive && s.state != StateRecording {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("session is %s, cannot capture", state)
	}
	if s.backgrounded {
		s.mu.Unlock()
		return nil, s.fail(OpPhoto, ErrInterrupted)
	}
	stream := s.stream
	s.mu.Unlock()

	frame, err := stream.Frame(ctx)
	if err != nil {
		return nil, s.fail(OpPhoto, err)
	}

	bounds := frame.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, s.fail(OpPhoto, fmt.Errorf("frame has zero dimensions"))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: photoQuality}); err != nil {
		return nil, s.fail(OpPhoto, fmt.Errorf("failed to encode frame: %w", err))
	}
	if buf.Len() == 0 {
		return nil, s.fail(OpPhoto, fmt.Errorf("frame encoded to zero bytes"))
	}

	item := &CapturedMedia{
		ID:        uuid.NewString(),
		Kind:      mediatypes.KindPhoto,
		Raw:       buf.Bytes(),
		CreatedAt: time.Now(),
		SizeBytes: int64(buf.Len()),
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()

	logging.Debug("Captured photo %s (%d bytes, %dx%d)", item.ID, item.SizeBytes, bounds.Dx(), bounds.Dy())
	return item, nil
}

// StartRecording begins a bounded video recording. Recording auto-stops
// at MaxRecording.
func (s *Session) StartRecording(ctx context.Context) error {
	if s.newRecorder == nil {
		return s.fail(OpVideo, fmt.Errorf("%w: no recorder backend", ErrUnsupported))
	}

	s.mu.Lock()
	if s.state != StateActive {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session is %s, cannot record", state)
	}
	if s.backgrounded {
		s.mu.Unlock()
		return s.fail(OpVideo, ErrInterrupted)
	}
	stream := s.stream
	rec := s.newRecorder()
	s.mu.Unlock()

	if err := rec.Start(ctx, stream); err != nil {
		return s.fail(OpVideo, err)
	}

	s.mu.Lock()
	s.recorder = rec
	s.setStateLocked(StateRecording)
	s.recordStop = time.AfterFunc(s.MaxRecording, func() {
		logging.Info("Recording hit the %s bound, auto-stopping", s.MaxRecording)
		if _, err := s.StopRecording(); err != nil {
			logging.Warn("Auto-stop failed: %v", err)
		}
	})
	s.mu.Unlock()
	return nil
}

// StopRecording finishes the active recording and appends the captured
// video to the session's items.
func (s *Session) StopRecording() (*CapturedMedia, error) {
	s.mu.Lock()
	if s.state != StateRecording {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("session is %s, not recording", state)
	}
	rec := s.recorder
	s.recorder = nil
	if s.recordStop != nil {
		s.recordStop.Stop()
		s.recordStop = nil
	}
	s.setStateLocked(StateActive)
	s.mu.Unlock()

	data, err := rec.Stop()
	if err != nil {
		return nil, s.fail(OpVideo, err)
	}

	item := &CapturedMedia{
		ID:        uuid.NewString(),
		Kind:      mediatypes.KindVideo,
		Raw:       data,
		CreatedAt: time.Now(),
		SizeBytes: int64(len(data)),
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()

	logging.Debug("Captured video %s (%d bytes)", item.ID, item.SizeBytes)
	return item, nil
}

// Background pauses the live stream's tracks without releasing the
// device, for when the application loses visibility.
func (s *Session) Background() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil || s.backgrounded {
		return nil
	}
	if err := s.stream.Pause(); err != nil {
		return fmt.Errorf("failed to pause stream: %w", err)
	}
	s.backgrounded = true
	return nil
}

// Foreground resumes tracks paused by Background.
func (s *Session) Foreground() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil || !s.backgrounded {
		return nil
	}
	if err := s.stream.Resume(); err != nil {
		return fmt.Errorf("failed to resume stream: %w", err)
	}
	s.backgrounded = false
	return nil
}

// Stop releases the stream and returns to idle, keeping captured items.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state == StateRecording && s.recorder != nil {
		if _, err := s.recorder.Stop(); err != nil {
			logging.Warn("Recorder stop during session stop: %v", err)
		}
		s.recorder = nil
	}
	if s.recordStop != nil {
		s.recordStop.Stop()
		s.recordStop = nil
	}
	stream := s.stream
	s.stream = nil
	s.backgrounded = false
	wasLive := s.state == StateActive || s.state == StateRecording
	s.setStateLocked(StateIdle)
	s.mu.Unlock()

	if stream != nil {
		if err := stream.Close(); err != nil {
			logging.Warn("Failed to close stream: %v", err)
		}
	}
	if wasLive {
		metrics.CaptureSessionsActive.Dec()
	}
}

// Teardown stops the session and releases every retained resource:
// stream, captured buffers, and the device cache. Idempotent.
func (s *Session) Teardown() {
	s.Stop()

	s.mu.Lock()
	for _, item := range s.items {
		item.Raw, item.Processed, item.Thumbnail = nil, nil, nil
	}
	s.items = nil
	s.devices = nil
	s.devicesFetched = time.Time{}
	s.mu.Unlock()
}

// fail classifies an error, records it, and publishes it before handing
// it to the caller.
func (s *Session) fail(op Op, err error) error {
	ce := Classify(op, err)
	metrics.CaptureErrorsTotal.WithLabelValues(string(ce.Kind)).Inc()
	s.bus.Publish(events.TopicCaptureError, string(ce.Kind), string(ce.Op))
	logging.Warn("Capture error: %v", ce)
	return ce
}

// setStateLocked transitions state and publishes the change. Caller
// holds s.mu.
func (s *Session) setStateLocked(next State) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	s.bus.Publish(events.TopicCaptureState, string(prev), string(next))
}

func (s *Session) toIdle() {
	s.mu.Lock()
	s.setStateLocked(StateIdle)
	s.mu.Unlock()
}

func deviceKnown(devices []Device, id string) bool {
	for _, d := range devices {
		if d.ID == id {
			return true
		}
	}
	return false
}
