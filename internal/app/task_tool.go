package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

// handleCheckTool probes the extraction tool. An unavailable tool is a status,
// not a task failure, so the result stays successful either way and carries a
// status_message instead of the failure marker.
func (d *Dispatcher) handleCheckTool(ctx context.Context) domain.TaskResult {
	version, err := d.downloader.Version(ctx)
	if err != nil {
		d.logger.Warn("extraction tool unavailable", zap.Error(err))
		msg := "tool not installed"
		if domain.IsKind(err, domain.ErrTimeout) {
			msg = "tool check timed out"
		}
		return domain.TaskResult{
			"success":        true,
			"available":      false,
			"version":        nil,
			"status_message": msg,
		}
	}

	d.logger.Debug("extraction tool available", zap.String("version", version))
	return domain.TaskResult{
		"success":   true,
		"available": true,
		"version":   version,
	}
}

func (d *Dispatcher) handleTestProxy(ctx context.Context, args map[string]interface{}) domain.TaskResult {
	proxy, _ := args["proxy"].(string)
	if proxy == "" {
		return domain.Fail("No proxy URL provided")
	}

	url, _ := args["url"].(string)
	if url == "" {
		url = d.config.Tool.ProxyTestURL
	}

	d.logger.Debug("testing proxy",
		zap.String("proxy", proxy),
		zap.String("url", url))

	if err := d.downloader.TestProxy(ctx, url, proxy); err != nil {
		result := domain.Fail(err.Error())
		result["url"] = url
		result["proxy"] = proxy
		return result
	}

	return domain.OK(map[string]interface{}{
		"url":     url,
		"proxy":   proxy,
		"message": "Successfully connected through proxy",
	})
}
