package app

import (
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
	"github.com/yourusername/media-fetch-go/internal/infrastructure"
)

// notFoundResult is the shape for an absent result file. Absence is a normal
// polling outcome, not a failure, so success stays true.
func notFoundResult() domain.TaskResult {
	return domain.TaskResult{
		"success":   true,
		"retrieved": false,
		"not_found": true,
	}
}

func (d *Dispatcher) handleReadResult(args map[string]interface{}) domain.TaskResult {
	resultID, _ := args["result_id"].(string)
	if resultID == "" {
		return domain.TaskResult{
			"success":             false,
			domain.ResultKeyError: "No result_id provided",
			"retrieved":           false,
		}
	}

	// Progress snapshots are polled constantly while a download runs, and
	// missing files are expected before the first write lands. Keep those
	// reads quiet.
	isProgress := strings.HasPrefix(resultID, infrastructure.ProgressIDPrefix)
	if isProgress {
		d.logger.Debug("reading progress snapshot", zap.String("result_id", resultID))
	} else {
		d.logger.Debug("reading stored result", zap.String("result_id", resultID))
	}

	data, found, err := d.store.Load(resultID)
	if err != nil {
		if !isProgress {
			d.logger.Error("failed to load result",
				zap.String("result_id", resultID),
				zap.Error(err))
		}
		return notFoundResult()
	}
	if !found {
		if !isProgress {
			d.logger.Debug("result not found", zap.String("result_id", resultID))
		}
		return notFoundResult()
	}

	result := domain.TaskResult(data)
	result["retrieved"] = true

	// Failure markers inside the stored payload belong to the task that
	// produced it, not to this read. Rename them so the envelope does not
	// report the read itself as failed.
	if v, ok := result[domain.ResultKeyError]; ok {
		result["task_error"] = v
		delete(result, domain.ResultKeyError)
	}
	if v, ok := result["error"]; ok {
		result["task_error"] = v
		delete(result, "error")
	}
	if _, ok := result["success"]; !ok {
		_, failed := result["task_error"]
		result["success"] = !failed
	}

	return result
}

func (d *Dispatcher) handleCleanupResult(args map[string]interface{}) domain.TaskResult {
	resultID, _ := args["result_id"].(string)
	if resultID == "" {
		return domain.Fail("No result_id provided")
	}

	if err := d.store.Delete(resultID); err != nil {
		d.logger.Error("failed to delete result",
			zap.String("result_id", resultID),
			zap.Error(err))
		return domain.Fail("Failed to delete result")
	}

	return domain.TaskResult{"success": true, "deleted": true}
}
