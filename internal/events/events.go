package events

import (
	evbus "github.com/asaskevich/EventBus"
)

// Topics published by the pipeline. Subscriber signatures are noted per
// topic.
const (
	// TopicProfileChanged carries (profile.Change).
	TopicProfileChanged = "pipeline:profile.changed"
	// TopicBatchStarted carries (batchID string, totalFiles int).
	TopicBatchStarted = "pipeline:batch.started"
	// TopicBatchCompleted carries (batchID string, status string).
	TopicBatchCompleted = "pipeline:batch.completed"
	// TopicFileUploaded carries (batchID string, fileName string).
	TopicFileUploaded = "pipeline:batch.file.uploaded"
	// TopicCaptureState carries (previous string, current string).
	TopicCaptureState = "pipeline:capture.state"
	// TopicCaptureError carries (kind string, operation string).
	TopicCaptureError = "pipeline:capture.error"
)

// Bus wraps EventBus with nil tolerance so components can publish
// unconditionally.
type Bus struct {
	bus evbus.Bus
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish emits an event. Safe on a nil receiver.
func (b *Bus) Publish(topic string, args ...interface{}) {
	if b == nil {
		return
	}
	b.bus.Publish(topic, args...)
}

// Subscribe registers a synchronous handler for topic.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers a handler that runs in its own goroutine.
func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.SubscribeAsync(topic, fn, false)
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.Unsubscribe(topic, fn)
}

// Wait blocks until all async handlers have finished.
func (b *Bus) Wait() {
	if b == nil {
		return
	}
	b.bus.WaitAsync()
}
