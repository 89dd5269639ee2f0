package profile

import (
	"time"

	"media-pipeline/internal/logging"
)

// Monitor periodically re-samples the selector's capability provider so
// storage and network threshold crossings trigger profile switches even
// when no processing is happening.
type Monitor struct {
	selector *Selector
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewMonitor creates a monitor that calls selector.Refresh every
// interval. Non-positive intervals fall back to 30 seconds.
func NewMonitor(selector *Selector, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		selector: selector,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the refresh loop.
func (m *Monitor) Start() {
	logging.Debug("Capability monitor started, interval %s", m.interval)
	go m.loop()
}

// Stop ends the refresh loop and waits for it to exit.
func (m *Monitor) Stop() {
	close(m.stopChan)
	<-m.doneChan
}

func (m *Monitor) loop() {
	defer close(m.doneChan)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.selector.Refresh()
		case <-m.stopChan:
			return
		}
	}
}
