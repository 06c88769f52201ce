package app

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
	"github.com/yourusername/media-fetch-go/internal/infrastructure"
)

// decodeArgs maps loosely-typed task args onto a request struct. Numbers and
// booleans arriving as strings are coerced rather than rejected.
func decodeArgs(args map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return domain.Tag(domain.ErrInput, fmt.Errorf("invalid task arguments: %w", err))
	}
	return nil
}

func (d *Dispatcher) handleDownload(ctx context.Context, args map[string]interface{}) domain.TaskResult {
	var req domain.DownloadRequest
	if err := decodeArgs(args, &req); err != nil {
		return d.finishDownload(&req, nil, "", 0, err)
	}
	if req.URL == "" {
		return d.finishDownload(&req, nil, "", 0, domain.Errorf(domain.ErrInput, "No URL provided"))
	}

	if req.OutputDir == "" {
		req.OutputDir = d.config.Download.OutputDir
	}
	if !domain.ValidQuality(req.Quality) {
		req.Quality = domain.Quality(d.config.Download.DefaultQuality)
	}

	if err := infrastructure.CheckFreeSpace(req.OutputDir, d.config.Download.MinFreeSpace); err != nil {
		return d.finishDownload(&req, nil, "", 0, err)
	}

	tracker := infrastructure.NewProgressTracker(
		d.store, req.ProgressID, d.config.Download.ProgressInterval, d.logger)

	if d.classifier.IsDirectFile(req.URL) {
		filePath, fileSize, err := d.fetcher.Fetch(ctx, &req, tracker)
		if err == nil {
			tracker.Complete(filePath)
			entry := domain.NewHistoryEntry(req.URL, domain.StrategyDirect)
			entry.MarkCompleted(filePath, fileSize)
			return d.finishDownload(&req, entry, filePath, fileSize, nil)
		}

		// A failed direct fetch gets exactly one retry through the
		// extractor, and only when the caller supplied a page URL to
		// retry against.
		if req.FallbackURL == "" {
			tracker.Fail(err.Error())
			entry := domain.NewHistoryEntry(req.URL, domain.StrategyDirect)
			entry.MarkFailed(err.Error())
			return d.finishDownload(&req, entry, "", 0, err)
		}

		d.logger.Warn("direct fetch failed, falling back to extractor",
			zap.String("url", req.URL),
			zap.String("fallback_url", req.FallbackURL),
			zap.Error(err))
		req.URL = req.FallbackURL
	}

	return d.downloadWithExtractor(ctx, &req, tracker)
}

func (d *Dispatcher) downloadWithExtractor(ctx context.Context, req *domain.DownloadRequest, tracker *infrastructure.ProgressTracker) domain.TaskResult {
	entry := domain.NewHistoryEntry(req.URL, domain.StrategyExtractor)

	if _, err := d.downloader.EnsureAvailable(ctx); err != nil {
		tracker.Fail(err.Error())
		entry.MarkFailed(err.Error())
		return d.finishDownload(req, entry, "", 0, err)
	}

	filePath, err := d.downloader.Download(
		ctx, req.URL, req.OutputDir, req.Filename, req.Quality, req.Proxy, tracker)
	if err != nil {
		tracker.Fail(err.Error())
		entry.MarkFailed(err.Error())
		return d.finishDownload(req, entry, "", 0, err)
	}

	var fileSize int64
	if info, statErr := os.Stat(filePath); statErr == nil {
		fileSize = info.Size()
	}

	tracker.Complete(filePath)
	entry.MarkCompleted(filePath, fileSize)
	return d.finishDownload(req, entry, filePath, fileSize, nil)
}

// finishDownload turns the outcome into a task result, persists it under the
// caller's result id when one was given, and appends the history entry. Store
// and ledger failures are logged but never mask the download outcome.
func (d *Dispatcher) finishDownload(req *domain.DownloadRequest, entry *domain.HistoryEntry, filePath string, fileSize int64, taskErr error) domain.TaskResult {
	var result domain.TaskResult
	var record domain.ResultRecord

	if taskErr == nil {
		result = domain.OK(map[string]interface{}{
			"file_path": filePath,
			"file_size": fileSize,
		})
		record = domain.ResultRecord{Success: true, FilePath: filePath, FileSize: fileSize}
	} else {
		msg := fmt.Sprintf("Download failed: %s", taskErr.Error())
		result = domain.Fail(msg)
		record = domain.ResultRecord{Success: false, Error: msg}
	}

	if req.ResultID != "" {
		if err := d.store.Save(req.ResultID, record); err != nil {
			d.logger.Error("failed to persist download result",
				zap.String("result_id", req.ResultID),
				zap.Error(err))
		}
	}

	if entry != nil {
		if repo, err := d.historyRepo(); err != nil {
			d.logger.Warn("history ledger unavailable", zap.Error(err))
		} else if repo != nil {
			if err := repo.Record(entry); err != nil {
				d.logger.Warn("failed to record history entry", zap.Error(err))
			}
			if err := repo.Close(); err != nil {
				d.logger.Warn("failed to close history ledger", zap.Error(err))
			}
		}
	}

	return result
}
