package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
	"github.com/yourusername/media-fetch-go/internal/infrastructure"
)

func (d *Dispatcher) handleExtractMetadata(ctx context.Context, args map[string]interface{}) domain.TaskResult {
	var req domain.MetadataRequest
	if err := decodeArgs(args, &req); err != nil {
		return d.saveAndReturn(req.ResultID, domain.Fail(err.Error()))
	}
	if req.URL == "" {
		return d.saveAndReturn(req.ResultID, domain.Fail("No URL provided"))
	}

	if req.Proxy != "" {
		d.logger.Info("extracting metadata through proxy", zap.String("proxy", req.Proxy))
	}

	if _, err := d.downloader.EnsureAvailable(ctx); err != nil {
		return d.saveAndReturn(req.ResultID, domain.Fail(err.Error()))
	}

	metadata, err := d.downloader.ExtractMetadata(ctx, req.URL, req.Proxy)
	if err != nil {
		msg := err.Error()
		if req.Proxy == "" {
			msg += " (tip: try configuring a proxy in settings)"
		}
		return d.saveAndReturn(req.ResultID, domain.Fail(msg))
	}

	contentType := infrastructure.DetectContentType(metadata)
	formats := infrastructure.ExtractVideoFormats(metadata)

	d.logger.Info("metadata extracted",
		zap.String("url", req.URL),
		zap.String("content_type", string(contentType)),
		zap.Int("formats", len(formats)))

	result := domain.OK(map[string]interface{}{
		"detected_content_type": string(contentType),
		"title":                 metadata["title"],
		"description":           metadata["description"],
		"duration":              metadata["duration"],
		"uploader":              metadata["uploader"],
		"channel":               metadata["channel"],
		"upload_date":           metadata["upload_date"],
		"thumbnail":             metadata["thumbnail"],
		"tags":                  listField(metadata, "tags"),
		"categories":            listField(metadata, "categories"),
		"cast":                  listField(metadata, "cast"),
		"creators":              listField(metadata, "creators"),
		"artist":                metadata["artist"],
		"url":                   metadata["url"],
		"webpage_url":           metadata["webpage_url"],
		"original_url":          metadata["original_url"],
		"height":                metadata["height"],
		"width":                 metadata["width"],
		"formats":               formats,
	})

	return d.saveAndReturn(req.ResultID, result)
}

// saveAndReturn persists the result under the caller's id when provided, so a
// later read_result invocation can retrieve it, then passes the result back.
func (d *Dispatcher) saveAndReturn(resultID string, result domain.TaskResult) domain.TaskResult {
	if resultID != "" {
		if err := d.store.Save(resultID, result); err != nil {
			d.logger.Error("failed to persist task result",
				zap.String("result_id", resultID),
				zap.Error(err))
		}
	}
	return result
}

// listField always yields a list, so absent tag-style fields serialize as []
// rather than null.
func listField(metadata map[string]interface{}, key string) interface{} {
	if v, ok := metadata[key]; ok && v != nil {
		return v
	}
	return []interface{}{}
}
