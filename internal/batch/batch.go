package batch

import (
	"context"
	"sync"
	"time"

	"media-pipeline/internal/limiter"
	"media-pipeline/internal/media"
)

// Status is the lifecycle state of a Batch.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusPaused     Status = "paused"
	StatusCancelled  Status = "cancelled"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Stage is a per-file sub-phase reported through OnFileProgress.
// Uploading is a file-level phase, not a batch status.
type Stage string

const (
	StageProcessing Stage = "processing"
	StageUploading  Stage = "uploading"
	StageDone       Stage = "done"
)

// File is one input to a batch: a named blob.
type File struct {
	Name string
	Data []byte
}

// FileResult records one successfully uploaded file.
type FileResult struct {
	Name           string
	UploadID       string
	Metadata       media.Metadata
	ProcessingTime time.Duration
	UploadTime     time.Duration
}

// FileError records one file that did not complete. Cancelled marks an
// upload aborted by batch cancellation, a distinct condition from
// failure.
type FileError struct {
	Name      string
	Err       error
	Cancelled bool
}

// Progress is a point-in-time snapshot of a batch.
type Progress struct {
	BatchID         string
	Status          Status
	TotalFiles      int
	CompletedFiles  int
	SuccessfulFiles int
	FailedFiles     int
	TotalBytes      int64
	ProcessedBytes  int64
	UploadedBytes   int64
}

// Summary is the final report for a batch run.
type Summary struct {
	BatchID         string
	Status          Status
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	UploadedFiles   int

	TotalBytes     int64
	ProcessedBytes int64
	UploadedBytes  int64

	AvgCompressionRatio float64
	AvgProcessingTime   time.Duration
	AvgUploadTime       time.Duration

	Duration       time.Duration
	PausedDuration time.Duration

	Errors []FileError
}

// Callbacks are invoked synchronously from the orchestration. A panic in
// any callback is caught and logged; it never aborts the batch.
type Callbacks struct {
	OnProgress      func(Progress)
	OnFileProgress  func(fileName string, stage Stage)
	OnFileComplete  func(FileResult)
	OnBatchComplete func(Summary)
	OnError         func(fileName string, err error)
}

// Batch is the coordinator's record for one ProcessBatch invocation.
// Files are keyed by their index in the input slice, so duplicate names
// are tolerated.
type Batch struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc

	procLimiter *limiter.Limiter
	upLimiter   *limiter.Limiter
	opts        Options

	mu       sync.Mutex
	status   Status
	files    []File
	results  map[int]FileResult
	errs     map[int]FileError
	inFlight map[int]bool

	totalBytes     int64
	processedBytes int64
	uploadedBytes  int64

	started        time.Time
	ended          time.Time
	pausedAt       time.Time
	pausedDuration time.Duration
}

// outcomesLocked counts files that have settled either way.
func (b *Batch) outcomesLocked() int {
	return len(b.results) + len(b.errs)
}

// admit claims a file for execution. It refuses files that already have
// an outcome, are claimed by another worker, or whose batch is paused or
// cancelled.
func (b *Batch) admit(idx int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.status == StatusCancelled || b.status == StatusPaused {
		return false
	}
	if _, done := b.results[idx]; done {
		return false
	}
	if _, failed := b.errs[idx]; failed {
		return false
	}
	if b.inFlight[idx] {
		return false
	}
	b.inFlight[idx] = true
	return true
}

// release drops a file's in-flight claim without recording an outcome.
// Used when a result is discarded because the batch was paused or
// cancelled mid-flight.
func (b *Batch) release(idx int) {
	b.mu.Lock()
	delete(b.inFlight, idx)
	b.mu.Unlock()
}

// interrupted reports whether new work should stop being consumed.
func (b *Batch) interrupted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status == StatusCancelled || b.status == StatusPaused
}

func (b *Batch) currentStatus() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// progressLocked builds a snapshot. Caller holds b.mu.
func (b *Batch) progressLocked() Progress {
	failed := 0
	for _, fe := range b.errs {
		if !fe.Cancelled {
			failed++
		}
	}
	return Progress{
		BatchID:         b.ID,
		Status:          b.status,
		TotalFiles:      len(b.files),
		CompletedFiles:  b.outcomesLocked(),
		SuccessfulFiles: len(b.results),
		FailedFiles:     failed,
		TotalBytes:      b.totalBytes,
		ProcessedBytes:  b.processedBytes,
		UploadedBytes:   b.uploadedBytes,
	}
}

// summaryLocked builds the final report. Caller holds b.mu.
func (b *Batch) summaryLocked() Summary {
	s := Summary{
		BatchID:         b.ID,
		Status:          b.status,
		TotalFiles:      len(b.files),
		SuccessfulFiles: len(b.results),
		UploadedFiles:   len(b.results),
		TotalBytes:      b.totalBytes,
		ProcessedBytes:  b.processedBytes,
		UploadedBytes:   b.uploadedBytes,
		PausedDuration:  b.pausedDuration,
	}

	end := b.ended
	if end.IsZero() {
		end = time.Now()
	}
	s.Duration = end.Sub(b.started) - b.pausedDuration

	var ratioSum float64
	var procSum, upSum time.Duration
	for _, r := range b.results {
		ratioSum += r.Metadata.CompressionRatio
		procSum += r.ProcessingTime
		upSum += r.UploadTime
	}
	if n := len(b.results); n > 0 {
		s.AvgCompressionRatio = ratioSum / float64(n)
		s.AvgProcessingTime = procSum / time.Duration(n)
		s.AvgUploadTime = upSum / time.Duration(n)
	}

	for idx := range b.files {
		if fe, ok := b.errs[idx]; ok {
			s.Errors = append(s.Errors, fe)
			if !fe.Cancelled {
				s.FailedFiles++
			}
		}
	}
	return s
}
