package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

// SQLiteHistoryRepository implements HistoryRepository using SQLite. The
// ledger is shared between short-lived invocations the same way the result
// store is; SQLite's own locking covers concurrent writers.
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository creates a new SQLite history repository
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&domain.HistoryEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Record inserts a terminal history entry
func (r *SQLiteHistoryRepository) Record(entry *domain.HistoryEntry) error {
	return r.db.Create(entry).Error
}

// Recent returns the most recent entries, newest first
func (r *SQLiteHistoryRepository) Recent(limit int) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// CountByStatus returns the number of entries with the given status
func (r *SQLiteHistoryRepository) CountByStatus(status domain.HistoryStatus) (int64, error) {
	var count int64
	err := r.db.Model(&domain.HistoryEntry{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Close releases the underlying storage
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
