package capture

import (
	"context"
	"image"
	"image/color"
	"sync"
)

func testFrame(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type fakeStream struct {
	mu       sync.Mutex
	device   Device
	frame    image.Image
	frameErr error
	paused   bool
	closed   int
}

func (f *fakeStream) Device() Device { return f.device }

func (f *fakeStream) Frame(ctx context.Context) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frameErr != nil {
		return nil, f.frameErr
	}
	return f.frame, nil
}

func (f *fakeStream) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	return nil
}

func (f *fakeStream) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	return nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeStream) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeCamera struct {
	mu            sync.Mutex
	unsupported   bool
	permissionErr error
	devices       []Device
	devicesErr    error
	openErr       map[string]error
	enumCalls     int
	permCalls     int
	opened        []*fakeStream
}

func newFakeCamera(devices ...Device) *fakeCamera {
	return &fakeCamera{devices: devices, openErr: map[string]error{}}
}

func (f *fakeCamera) Supported() bool { return !f.unsupported }

func (f *fakeCamera) RequestPermission(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permCalls++
	return f.permissionErr
}

func (f *fakeCamera) Devices(ctx context.Context) ([]Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enumCalls++
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}
	return f.devices, nil
}

func (f *fakeCamera) Open(ctx context.Context, deviceID string) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.openErr[deviceID]; err != nil {
		return nil, err
	}
	s := &fakeStream{
		device: Device{ID: deviceID},
		frame:  testFrame(640, 480, color.RGBA{R: 120, G: 120, B: 120, A: 255}),
	}
	f.opened = append(f.opened, s)
	return s, nil
}

func (f *fakeCamera) enumCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enumCalls
}

type fakeRecorder struct {
	mu      sync.Mutex
	started bool
	stopErr error
	data    []byte
}

func (f *fakeRecorder) Start(ctx context.Context, s Stream) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakeRecorder) Stop() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	if f.data == nil {
		return []byte("recorded-video"), nil
	}
	return f.data, nil
}
