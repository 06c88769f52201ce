package app

import (
	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

const defaultHistoryLimit = 20

// handleHistory returns the most recent ledger entries plus outcome counts.
func (d *Dispatcher) handleHistory(args map[string]interface{}) domain.TaskResult {
	if !d.config.History.Enabled {
		return domain.Fail("History is disabled")
	}

	limit := defaultHistoryLimit
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	repo, err := d.historyRepo()
	if err != nil {
		d.logger.Error("failed to open history ledger", zap.Error(err))
		return domain.Fail("Failed to open history")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			d.logger.Warn("failed to close history ledger", zap.Error(err))
		}
	}()

	entries, err := repo.Recent(limit)
	if err != nil {
		d.logger.Error("failed to query history", zap.Error(err))
		return domain.Fail("Failed to query history")
	}

	completed, err := repo.CountByStatus(domain.HistoryCompleted)
	if err != nil {
		return domain.Fail("Failed to query history")
	}
	failed, err := repo.CountByStatus(domain.HistoryFailed)
	if err != nil {
		return domain.Fail("Failed to query history")
	}

	return domain.OK(map[string]interface{}{
		"entries":         entries,
		"total_completed": completed,
		"total_failed":    failed,
	})
}
