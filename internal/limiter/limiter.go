package limiter

import (
	"context"
	"fmt"
	"sync/atomic"

	"media-pipeline/internal/metrics"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds concurrent task execution to a fixed capacity.
// Waiters acquire slots in FIFO order.
type Limiter struct {
	name string
	max  int64
	sem  *semaphore.Weighted

	running atomic.Int64
	queued  atomic.Int64
}

// New creates a Limiter with the given capacity. The name labels the
// limiter's Prometheus gauges ("processing", "upload", ...).
// Capacity values below 1 are clamped to 1.
func New(name string, capacity int) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		name: name,
		max:  int64(capacity),
		sem:  semaphore.NewWeighted(int64(capacity)),
	}
}

// Do runs task once a slot is available, blocking until then. The slot is
// released when task returns, whether it succeeds, fails, or panics.
// Returns the task's error, or the context error if ctx is cancelled
// before a slot is acquired.
func (l *Limiter) Do(ctx context.Context, task func() error) error {
	l.queued.Add(1)
	metrics.LimiterQueued.WithLabelValues(l.name).Inc()

	err := l.sem.Acquire(ctx, 1)

	l.queued.Add(-1)
	metrics.LimiterQueued.WithLabelValues(l.name).Dec()

	if err != nil {
		return fmt.Errorf("limiter %s: %w", l.name, err)
	}

	l.running.Add(1)
	metrics.LimiterRunning.WithLabelValues(l.name).Inc()
	defer func() {
		l.running.Add(-1)
		metrics.LimiterRunning.WithLabelValues(l.name).Dec()
		l.sem.Release(1)
	}()

	return task()
}

// TryDo runs task immediately if a slot is free, otherwise returns false
// without running it.
func (l *Limiter) TryDo(task func() error) (bool, error) {
	if !l.sem.TryAcquire(1) {
		return false, nil
	}

	l.running.Add(1)
	metrics.LimiterRunning.WithLabelValues(l.name).Inc()
	defer func() {
		l.running.Add(-1)
		metrics.LimiterRunning.WithLabelValues(l.name).Dec()
		l.sem.Release(1)
	}()

	return true, task()
}

// Capacity returns the maximum number of concurrent tasks.
func (l *Limiter) Capacity() int {
	return int(l.max)
}

// Running returns the number of tasks currently executing.
func (l *Limiter) Running() int {
	return int(l.running.Load())
}

// Queued returns the number of tasks waiting for a slot.
func (l *Limiter) Queued() int {
	return int(l.queued.Load())
}
