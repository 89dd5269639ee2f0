package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"media-pipeline/internal/events"
	"media-pipeline/internal/limiter"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/media"
	"media-pipeline/internal/metrics"
	"media-pipeline/internal/profile"
	"media-pipeline/internal/uploader"
	"media-pipeline/internal/workers"

	"github.com/google/uuid"
)

// DefaultMaxConcurrentUploads bounds uploads when the caller does not
// specify a cap.
const DefaultMaxConcurrentUploads = 3

// errSkipped marks a limiter task that declined to run because the batch
// was paused or cancelled while it waited for a slot.
var errSkipped = errors.New("file skipped")

// Options configures one batch run.
type Options struct {
	CaseID string

	// Concurrency caps. Zero values fall back to the selector's current
	// profile for processing and DefaultMaxConcurrentUploads for uploads.
	MaxConcurrentProcessing int
	MaxConcurrentUploads    int

	// Overrides are merged into the selector's profile when deriving
	// processing options. Ignored when the coordinator has no selector.
	Overrides profile.Overrides

	Callbacks Callbacks
}

// Coordinator processes and uploads batches of files. Construct with
// NewCoordinator; the zero value is not usable.
type Coordinator struct {
	processor *media.Processor
	client    *uploader.Client
	selector  *profile.Selector
	bus       *events.Bus

	mu      sync.Mutex
	batches map[string]*Batch
}

// NewCoordinator wires the coordinator's collaborators. selector and bus
// may be nil; without a selector, processing options fall back to
// balanced-profile defaults.
func NewCoordinator(processor *media.Processor, client *uploader.Client, selector *profile.Selector, bus *events.Bus) *Coordinator {
	return &Coordinator{
		processor: processor,
		client:    client,
		selector:  selector,
		bus:       bus,
		batches:   make(map[string]*Batch),
	}
}

// ProcessBatch processes and uploads files, blocking until every file
// has settled or the batch is paused or cancelled. One file's failure
// never aborts its siblings. The returned Summary reflects the batch at
// the moment the call returns; a paused batch can be continued with
// Resume.
func (c *Coordinator) ProcessBatch(ctx context.Context, files []File, opts Options) (*Summary, error) {
	if len(files) == 0 {
		return nil, errors.New("batch contains no files")
	}

	bctx, cancel := context.WithCancel(ctx)
	b := &Batch{
		ID:          uuid.NewString(),
		ctx:         bctx,
		cancel:      cancel,
		procLimiter: limiter.New("processing", c.processingCap(opts)),
		upLimiter:   limiter.New("upload", c.uploadCap(opts)),
		opts:        opts,
		status:      StatusProcessing,
		files:       files,
		results:     make(map[int]FileResult),
		errs:        make(map[int]FileError),
		inFlight:    make(map[int]bool),
		started:     time.Now(),
	}
	for _, f := range files {
		b.totalBytes += int64(len(f.Data))
	}

	c.mu.Lock()
	c.batches[b.ID] = b
	c.mu.Unlock()

	logging.Info("Batch %s started: %d files, processing cap %d, upload cap %d",
		b.ID, len(files), b.procLimiter.Capacity(), b.upLimiter.Capacity())
	c.bus.Publish(events.TopicBatchStarted, b.ID, len(files))

	return c.run(b)
}

// Resume continues a paused batch, re-running only files without an
// outcome. Already-completed and already-errored files are skipped by
// the per-file guard, so nothing is uploaded twice.
func (c *Coordinator) Resume(batchID string) (*Summary, error) {
	b, err := c.lookup(batchID)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.status != StatusPaused {
		status := b.status
		b.mu.Unlock()
		return nil, fmt.Errorf("batch %s is %s, only paused batches can be resumed", batchID, status)
	}
	b.pausedDuration += time.Since(b.pausedAt)
	b.pausedAt = time.Time{}
	b.status = StatusProcessing
	b.mu.Unlock()

	logging.Info("Batch %s resumed", batchID)
	return c.run(b)
}

// Pause suspends a batch: files that have not started are held back and
// in-flight results are discarded for later re-processing. Only a batch
// in the processing state can be paused.
func (c *Coordinator) Pause(batchID string) error {
	b, err := c.lookup(batchID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != StatusProcessing {
		return fmt.Errorf("batch %s is %s, cannot pause", batchID, b.status)
	}
	b.status = StatusPaused
	b.pausedAt = time.Now()
	logging.Info("Batch %s paused with %d/%d files settled", batchID, b.outcomesLocked(), len(b.files))
	return nil
}

// Cancel terminally stops a batch and aborts its in-flight uploads.
// Completed uploads are never undone. A cancelled batch cannot be
// resumed, only restarted as a new batch.
func (c *Coordinator) Cancel(batchID string) error {
	b, err := c.lookup(batchID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.status == StatusCompleted || b.status == StatusFailed {
		status := b.status
		b.mu.Unlock()
		return fmt.Errorf("batch %s is already %s", batchID, status)
	}
	already := b.status == StatusCancelled
	b.status = StatusCancelled
	b.mu.Unlock()

	if !already {
		b.cancel()
		logging.Info("Batch %s cancelled", batchID)
	}
	return nil
}

// GetBatchStatus returns a point-in-time snapshot of a batch.
func (c *Coordinator) GetBatchStatus(batchID string) (Progress, error) {
	b, err := c.lookup(batchID)
	if err != nil {
		return Progress{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progressLocked(), nil
}

// RetryFailedFiles re-submits the files in a batch's error list as a
// fresh batch through the same pipeline, with the original options.
func (c *Coordinator) RetryFailedFiles(ctx context.Context, batchID string) (*Summary, error) {
	b, err := c.lookup(batchID)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	var failed []File
	for idx := range b.files {
		if _, ok := b.errs[idx]; ok {
			failed = append(failed, b.files[idx])
		}
	}
	opts := b.opts
	b.mu.Unlock()

	if len(failed) == 0 {
		return nil, fmt.Errorf("batch %s has no failed files", batchID)
	}
	logging.Info("Retrying %d failed files from batch %s", len(failed), batchID)
	return c.ProcessBatch(ctx, failed, opts)
}

func (c *Coordinator) lookup(batchID string) (*Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("unknown batch %s", batchID)
	}
	return b, nil
}

// run drives every unsettled file to an outcome and finalizes the batch.
// A panic escaping the orchestration itself (not a per-file unit) marks
// the whole batch failed.
func (c *Coordinator) run(b *Batch) (summary *Summary, err error) {
	metrics.BatchesActive.Inc()
	defer metrics.BatchesActive.Dec()

	defer func() {
		if r := recover(); r != nil {
			b.mu.Lock()
			b.status = StatusFailed
			b.ended = time.Now()
			s := b.summaryLocked()
			b.mu.Unlock()

			logging.Error("Batch %s orchestration failed: %v", b.ID, r)
			metrics.BatchesTotal.WithLabelValues(string(StatusFailed)).Inc()
			summary = &s
			err = fmt.Errorf("batch %s orchestration failed: %v", b.ID, r)
		}
	}()

	var wg sync.WaitGroup
	for idx := range b.files {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			c.runFile(b, idx)
		}(idx)
	}
	wg.Wait()

	b.mu.Lock()
	switch b.status {
	case StatusPaused:
		// Resumable; the batch is not finished.
	default:
		if b.status == StatusProcessing {
			// A parent context cancelled outside Cancel still ends the
			// batch as cancelled, not completed.
			if b.ctx.Err() != nil && b.outcomesLocked() < len(b.files) {
				b.status = StatusCancelled
			} else {
				b.status = StatusCompleted
			}
		}
		b.ended = time.Now()
	}
	s := b.summaryLocked()
	b.mu.Unlock()

	if s.Status != StatusPaused {
		metrics.BatchesTotal.WithLabelValues(string(s.Status)).Inc()
		c.safeCall("OnBatchComplete", func() {
			if fn := b.opts.Callbacks.OnBatchComplete; fn != nil {
				fn(s)
			}
		})
		c.bus.Publish(events.TopicBatchCompleted, b.ID, string(s.Status))
		logging.Info("Batch %s %s: %d/%d uploaded, %d failed in %v",
			b.ID, s.Status, s.UploadedFiles, s.TotalFiles, s.FailedFiles, s.Duration)
	}
	return &s, nil
}

// runFile drives one file through its guard, processing, and upload
// phases. Processing and upload are strictly sequential for one file but
// interleave freely across files up to the two limiter caps.
func (c *Coordinator) runFile(b *Batch, idx int) {
	if !b.admit(idx) {
		return
	}

	f := b.files[idx]

	var result *media.Result
	var procTime time.Duration

	perr := b.procLimiter.Do(b.ctx, func() error {
		// A pause or cancel that landed while this file waited for a
		// slot still skips it.
		if b.interrupted() {
			return errSkipped
		}
		c.fileProgress(b, f.Name, StageProcessing)

		start := time.Now()
		r, err := c.processor.ProcessImage(b.ctx, f.Data, c.mediaOptions(b.opts))
		if err != nil {
			return err
		}
		procTime = time.Since(start)
		if c.selector != nil {
			c.selector.RecordProcessingTime(procTime)
		}
		result = r
		return nil
	})
	if perr != nil {
		if errors.Is(perr, errSkipped) || errors.Is(perr, context.Canceled) {
			b.release(idx)
			return
		}
		c.recordError(b, idx, FileError{Name: f.Name, Err: perr})
		return
	}

	// Processing finished, but the result is discarded if the batch was
	// paused or cancelled before it could be consumed.
	if b.interrupted() {
		b.release(idx)
		return
	}

	b.mu.Lock()
	b.processedBytes += int64(len(result.Processed))
	b.mu.Unlock()

	var uploadID string
	var upTime time.Duration

	uerr := b.upLimiter.Do(b.ctx, func() error {
		if b.interrupted() {
			return errSkipped
		}
		c.fileProgress(b, f.Name, StageUploading)

		start := time.Now()
		resp, err := c.client.Upload(b.ctx, uploader.Item{
			FileName:  f.Name,
			Data:      result.Processed,
			Thumbnail: result.Thumbnail,
			Metadata:  result.Metadata,
			CaseID:    b.opts.CaseID,
		})
		if err != nil {
			return err
		}
		upTime = time.Since(start)
		uploadID = resp.ID
		return nil
	})
	if uerr != nil {
		if errors.Is(uerr, errSkipped) {
			b.release(idx)
			return
		}
		if errors.Is(uerr, uploader.ErrCancelled) || errors.Is(uerr, context.Canceled) {
			c.recordError(b, idx, FileError{Name: f.Name, Err: uerr, Cancelled: true})
			return
		}
		c.recordError(b, idx, FileError{Name: f.Name, Err: uerr})
		return
	}

	c.recordSuccess(b, idx, FileResult{
		Name:           f.Name,
		UploadID:       uploadID,
		Metadata:       result.Metadata,
		ProcessingTime: procTime,
		UploadTime:     upTime,
	})
}

func (c *Coordinator) recordSuccess(b *Batch, idx int, r FileResult) {
	b.mu.Lock()
	delete(b.inFlight, idx)
	b.results[idx] = r
	b.uploadedBytes += r.Metadata.ProcessedSize
	p := b.progressLocked()
	b.mu.Unlock()

	metrics.BatchFilesTotal.WithLabelValues("ok").Inc()
	c.bus.Publish(events.TopicFileUploaded, b.ID, r.Name)

	c.fileProgress(b, r.Name, StageDone)
	c.safeCall("OnFileComplete", func() {
		if fn := b.opts.Callbacks.OnFileComplete; fn != nil {
			fn(r)
		}
	})
	c.emitProgress(b, p)
}

func (c *Coordinator) recordError(b *Batch, idx int, fe FileError) {
	b.mu.Lock()
	delete(b.inFlight, idx)
	b.errs[idx] = fe
	p := b.progressLocked()
	b.mu.Unlock()

	outcome := "error"
	if fe.Cancelled {
		outcome = "cancelled"
	}
	metrics.BatchFilesTotal.WithLabelValues(outcome).Inc()
	logging.Warn("Batch %s file %s: %v", b.ID, fe.Name, fe.Err)

	c.safeCall("OnError", func() {
		if fn := b.opts.Callbacks.OnError; fn != nil {
			fn(fe.Name, fe.Err)
		}
	})
	c.emitProgress(b, p)
}

func (c *Coordinator) emitProgress(b *Batch, p Progress) {
	c.safeCall("OnProgress", func() {
		if fn := b.opts.Callbacks.OnProgress; fn != nil {
			fn(p)
		}
	})
}

func (c *Coordinator) fileProgress(b *Batch, name string, stage Stage) {
	c.safeCall("OnFileProgress", func() {
		if fn := b.opts.Callbacks.OnFileProgress; fn != nil {
			fn(name, stage)
		}
	})
}

// safeCall shields the orchestration from misbehaving callbacks.
func (c *Coordinator) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Batch callback %s panicked: %v", name, r)
		}
	}()
	fn()
}

// mediaOptions derives per-file processing options at the moment of use,
// so a profile switch mid-batch applies to files that have not started
// yet.
func (c *Coordinator) mediaOptions(opts Options) media.Options {
	if c.selector != nil {
		s := c.selector.OptimalSettings(opts.Overrides)
		return media.Options{
			MaxWidth:                  s.MaxWidth,
			MaxHeight:                 s.MaxHeight,
			Quality:                   s.Quality,
			CompressionThresholdBytes: s.CompressionThresholdBytes,
		}
	}
	return media.Options{
		MaxWidth:                  1920,
		MaxHeight:                 1080,
		Quality:                   media.DefaultQuality,
		CompressionThresholdBytes: 1024 * 1024,
	}
}

func (c *Coordinator) processingCap(opts Options) int {
	if opts.MaxConcurrentProcessing > 0 {
		return opts.MaxConcurrentProcessing
	}
	if c.selector != nil {
		if n := c.selector.OptimalSettings(opts.Overrides).MaxConcurrentProcessing; n > 0 {
			return n
		}
	}
	return workers.ForCPU(4)
}

func (c *Coordinator) uploadCap(opts Options) int {
	if opts.MaxConcurrentUploads > 0 {
		return opts.MaxConcurrentUploads
	}
	return workers.ForIO(DefaultMaxConcurrentUploads)
}
