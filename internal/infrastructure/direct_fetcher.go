package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

const (
	directChunkSize   = 8192
	maxFilenameLength = 200
	defaultFilename   = "downloaded_file"
	defaultExtension  = ".mp4"
)

// DirectFetcher downloads direct-file URLs with a plain streaming GET,
// bypassing the extraction tool entirely.
type DirectFetcher struct {
	config *domain.DirectConfig
	logger *zap.Logger
}

// NewDirectFetcher creates a new direct fetcher
func NewDirectFetcher(config *domain.DirectConfig, logger *zap.Logger) *DirectFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectFetcher{config: config, logger: logger}
}

// Fetch streams the URL's body to a file under outputDir and returns the
// final path and byte count. Any transport error, non-success status, or
// write failure yields a tagged failure; a partial file left by a failed
// transfer is removed, never treated as valid.
func (f *DirectFetcher) Fetch(ctx context.Context, req *domain.DownloadRequest, tracker *ProgressTracker) (string, int64, error) {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	parsed, err := url.Parse(req.URL)
	if err != nil {
		return "", 0, domain.Tag(domain.ErrInput, fmt.Errorf("invalid URL: %w", err))
	}

	filename := resolveFilename(req.Filename, parsed)
	outputPath := filepath.Join(req.OutputDir, filename)

	client, err := f.buildClient(req.Proxy)
	if err != nil {
		return "", 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", 0, domain.Tag(domain.ErrInput, err)
	}

	// Referer/Origin derived from the target's own origin defeats simple
	// hotlink protection. Accept-Encoding is left to the transport: setting
	// it manually disables transparent decompression and a gzip body would
	// land on disk still compressed.
	origin := parsed.Scheme + "://" + parsed.Host
	httpReq.Header.Set("User-Agent", f.config.UserAgent)
	httpReq.Header.Set("Accept", "*/*")
	httpReq.Header.Set("Referer", origin+"/")
	httpReq.Header.Set("Origin", origin)

	f.logger.Debug("direct fetch",
		zap.String("url", req.URL),
		zap.String("output", outputPath),
		zap.Bool("proxy", req.Proxy != ""))

	resp, err := client.Do(httpReq)
	if err != nil {
		if isTimeout(err) || ctx.Err() == context.DeadlineExceeded {
			return "", 0, domain.Errorf(domain.ErrTimeout, "direct download timed out after %s", f.config.Timeout)
		}
		return "", 0, domain.Tag(domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, domain.Errorf(domain.ErrNetwork, "direct download failed with status %d", resp.StatusCode)
	}

	totalSize := resp.ContentLength
	if totalSize < 0 {
		totalSize = 0
	}
	tracker.Start(totalSize)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create output file: %w", err)
	}

	downloaded, err := f.stream(resp, file, totalSize, tracker)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		if isTimeout(err) || ctx.Err() == context.DeadlineExceeded {
			return "", 0, domain.Errorf(domain.ErrTimeout, "direct download timed out after %s", f.config.Timeout)
		}
		return "", 0, domain.Tag(domain.ErrNetwork, fmt.Errorf("direct download failed: %w", err))
	}

	f.logger.Info("direct download complete",
		zap.String("path", outputPath),
		zap.Int64("bytes", downloaded))
	return outputPath, downloaded, nil
}

// stream copies the body to disk in fixed-size chunks, emitting throttled
// progress while the total size is known from the response headers.
func (f *DirectFetcher) stream(resp *http.Response, file *os.File, totalSize int64, tracker *ProgressTracker) (int64, error) {
	buf := make([]byte, directChunkSize)
	var downloaded int64

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return downloaded, err
			}
			downloaded += int64(n)

			if totalSize > 0 {
				tracker.Update(ProgressUpdate{
					Percentage:      float64(downloaded) / float64(totalSize) * 100,
					DownloadedBytes: downloaded,
					TotalBytes:      totalSize,
					Speed:           -1,
					ETA:             -1,
				})
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return downloaded, readErr
		}
	}

	return downloaded, nil
}

// isTimeout reports whether err is a transport-level timeout.
func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

// buildClient returns an HTTP client honoring the configured timeout and an
// optional proxy URL.
func (f *DirectFetcher) buildClient(proxy string) (*http.Client, error) {
	client := &http.Client{Timeout: f.config.Timeout}
	if proxy == "" {
		return client, nil
	}

	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, domain.Tag(domain.ErrInput, fmt.Errorf("invalid proxy URL: %w", err))
	}
	client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return client, nil
}

// resolveFilename picks the output filename: explicit override, then the
// download_filename query hint, then the URL path basename, then a constant
// fallback. The result is sanitized and always carries an extension.
func resolveFilename(override string, parsed *url.URL) string {
	name := override

	if name == "" {
		if hint := parsed.Query().Get("download_filename"); hint != "" {
			name = hint
		}
	}
	if name == "" {
		base := path.Base(parsed.Path)
		if base != "." && base != "/" {
			if unescaped, err := url.PathUnescape(base); err == nil {
				base = unescaped
			}
			name = base
		}
	}
	if name == "" {
		name = defaultFilename
	}

	name = SanitizeFilename(name)
	if name == "" {
		name = defaultFilename
	}
	if !strings.Contains(name, ".") {
		name += defaultExtension
	}
	return name
}

// SanitizeFilename strips characters illegal on common filesystems and
// bounds the length.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if runes := []rune(s); len(runes) > maxFilenameLength {
		s = string(runes[:maxFilenameLength])
	}
	return s
}
