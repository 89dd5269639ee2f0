// Package limiter provides a counting semaphore that bounds how many
// tasks run concurrently.
//
// A Limiter with capacity N guarantees that at most N tasks execute at
// once. Waiting tasks are granted slots in FIFO order. A task that returns
// an error or panics releases its slot like any other, so one failure
// never stalls the queue.
//
// The pipeline uses two independent limiters: one for CPU-bound media
// processing and one for network uploads.
package limiter
