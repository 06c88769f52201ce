package domain

import "time"

// ProgressStatus represents the state of an in-flight download.
type ProgressStatus string

const (
	ProgressStarting    ProgressStatus = "starting"
	ProgressDownloading ProgressStatus = "downloading"
	ProgressComplete    ProgressStatus = "complete"
	ProgressError       ProgressStatus = "error"
)

// ProgressRecord is a snapshot of in-flight download state. It is written
// repeatedly under the same progress id during one download; the last write
// is terminal (complete or error). Percentage is not guaranteed monotonic:
// fragmented/streamed downloads reset near 0% between segments, which pollers
// must tolerate. Speed and ETA are pointers so a genuinely parsed zero is
// reported instead of being dropped by omitempty.
type ProgressRecord struct {
	Status          ProgressStatus `json:"status"`
	Percentage      float64        `json:"percentage"`
	DownloadedBytes int64          `json:"downloaded_bytes"`
	TotalBytes      int64          `json:"total_bytes"`
	Speed           *int64         `json:"speed,omitempty"`
	ETA             *int           `json:"eta,omitempty"`
	LastUpdated     float64        `json:"last_updated"`
	Message         string         `json:"message,omitempty"`
	Error           string         `json:"error,omitempty"`
	FilePath        string         `json:"file_path,omitempty"`
}

// Stamp sets LastUpdated to the current wall clock, as fractional seconds
// since the epoch.
func (p *ProgressRecord) Stamp() {
	p.LastUpdated = float64(time.Now().UnixNano()) / float64(time.Second)
}

// IsTerminal reports whether no further writes will follow this record.
func (p *ProgressRecord) IsTerminal() bool {
	return p.Status == ProgressComplete || p.Status == ProgressError
}
