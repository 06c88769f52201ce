package infrastructure

import (
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

// ProgressTracker writes throttled ProgressRecord snapshots to the result
// store under a progress-prefixed id. A tracker with an empty id is inert, so
// callers never need to branch on whether progress reporting was requested.
//
// Within one invocation the tracker is used by a single sequential loop, so
// successive records carry non-decreasing timestamps.
type ProgressTracker struct {
	store     *ResultStore
	id        string
	interval  time.Duration
	logger    *zap.Logger
	lastWrite time.Time
	done      bool
}

// NewProgressTracker creates a tracker for progressID. interval bounds how
// often non-terminal snapshots reach the store.
func NewProgressTracker(store *ResultStore, progressID string, interval time.Duration, logger *zap.Logger) *ProgressTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressTracker{
		store:    store,
		id:       progressID,
		interval: interval,
		logger:   logger,
	}
}

// Enabled reports whether this tracker writes anywhere.
func (t *ProgressTracker) Enabled() bool {
	return t.id != "" && t.store != nil
}

// Start writes the initial "starting" record. It is called before any
// network or subprocess I/O so a poller always observes activity.
func (t *ProgressTracker) Start(totalBytes int64) {
	if !t.Enabled() {
		return
	}
	record := domain.ProgressRecord{
		Status:     domain.ProgressStarting,
		TotalBytes: totalBytes,
	}
	record.Stamp()
	t.write(record)
	t.lastWrite = time.Now()
}

// Update writes a "downloading" snapshot, subject to throttling.
func (t *ProgressTracker) Update(update ProgressUpdate) {
	if !t.Enabled() || t.done {
		return
	}
	now := time.Now()
	if now.Sub(t.lastWrite) < t.interval {
		return
	}
	record := domain.ProgressRecord{
		Status:          domain.ProgressDownloading,
		Percentage:      update.Percentage,
		DownloadedBytes: update.DownloadedBytes,
		TotalBytes:      update.TotalBytes,
	}
	if update.Speed >= 0 {
		speed := update.Speed
		record.Speed = &speed
	}
	if update.ETA >= 0 {
		eta := update.ETA
		record.ETA = &eta
	}
	record.Stamp()
	t.write(record)
	t.lastWrite = now
}

// Heartbeat records activity for phases where the tool reports no byte
// counts (HLS/DASH segment merging, postprocessing). Throttled like Update.
func (t *ProgressTracker) Heartbeat(message string) {
	if !t.Enabled() || t.done {
		return
	}
	now := time.Now()
	if now.Sub(t.lastWrite) < t.interval {
		return
	}
	record := domain.ProgressRecord{
		Status:  domain.ProgressDownloading,
		Message: domain.TruncateMessage(message, 100),
	}
	record.Stamp()
	t.write(record)
	t.lastWrite = now
}

// Complete writes the terminal success record. Terminal writes bypass the
// throttle.
func (t *ProgressTracker) Complete(filePath string) {
	if !t.Enabled() || t.done {
		return
	}
	record := domain.ProgressRecord{
		Status:     domain.ProgressComplete,
		Percentage: 100,
		FilePath:   filePath,
	}
	record.Stamp()
	t.write(record)
	t.done = true
}

// Fail writes the terminal error record. Terminal writes bypass the throttle.
func (t *ProgressTracker) Fail(msg string) {
	if !t.Enabled() || t.done {
		return
	}
	record := domain.ProgressRecord{
		Status: domain.ProgressError,
		Error:  msg,
	}
	record.Stamp()
	t.write(record)
	t.done = true
}

func (t *ProgressTracker) write(record domain.ProgressRecord) {
	if err := t.store.Save(ProgressID(t.id), record); err != nil {
		// Progress persistence is best effort; the download itself must not
		// fail because a snapshot could not be written.
		t.logger.Warn("failed to save progress snapshot",
			zap.String("progress_id", t.id),
			zap.Error(err))
	}
}
