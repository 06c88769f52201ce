package domain

import (
	"time"

	"github.com/google/uuid"
)

// Strategy identifies which download strategy produced an outcome.
type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategyExtractor Strategy = "extractor"
)

// HistoryStatus is the terminal state of a recorded download.
type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "completed"
	HistoryFailed    HistoryStatus = "failed"
)

// HistoryEntry is one row in the download-history ledger. The ledger is
// informational only; the result store remains the host-facing contract.
type HistoryEntry struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	URL          string        `json:"url" gorm:"not null"`
	Strategy     Strategy      `json:"strategy" gorm:"not null"`
	Status       HistoryStatus `json:"status" gorm:"not null;index"`
	FilePath     string        `json:"file_path,omitempty"`
	FileSize     int64         `json:"file_size,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// NewHistoryEntry creates a ledger entry for a download that just started.
func NewHistoryEntry(url string, strategy Strategy) *HistoryEntry {
	return &HistoryEntry{
		ID:        uuid.New().String(),
		URL:       url,
		Strategy:  strategy,
		CreatedAt: time.Now(),
	}
}

// MarkCompleted records a successful outcome.
func (h *HistoryEntry) MarkCompleted(filePath string, fileSize int64) {
	h.Status = HistoryCompleted
	h.FilePath = filePath
	h.FileSize = fileSize
	now := time.Now()
	h.CompletedAt = &now
}

// MarkFailed records a failed outcome.
func (h *HistoryEntry) MarkFailed(msg string) {
	h.Status = HistoryFailed
	h.ErrorMessage = msg
	now := time.Now()
	h.CompletedAt = &now
}

// HistoryRepository defines the interface for download-history persistence
type HistoryRepository interface {
	// Record inserts a terminal history entry
	Record(entry *HistoryEntry) error

	// Recent returns the most recent entries, newest first
	Recent(limit int) ([]*HistoryEntry, error)

	// CountByStatus returns the number of entries with the given status
	CountByStatus(status HistoryStatus) (int64, error)

	// Close releases the underlying storage
	Close() error
}
