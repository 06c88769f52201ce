package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

const (
	proxyTestTimeout = 30 * time.Second
	outputTailLines  = 20
	maxErrorLength   = 500
)

// progressTemplate pins yt-dlp's progress line format so the parser sees a
// stable shape regardless of tool version.
const progressTemplate = "download:[download] %(progress._percent_str)s of %(progress._total_bytes_str)s at %(progress._speed_str)s ETA %(progress._eta_str)s"

// YTDLPDownloader wraps the external extraction tool as a subprocess with
// real-time output parsing. One invocation moves through
// starting -> downloading* -> {complete | error}; entry into starting happens
// before the subprocess is spawned.
type YTDLPDownloader struct {
	config *domain.ToolConfig
	logger *zap.Logger
}

// NewYTDLPDownloader creates a new extraction downloader
func NewYTDLPDownloader(config *domain.ToolConfig, logger *zap.Logger) *YTDLPDownloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPDownloader{config: config, logger: logger}
}

// FormatForQuality maps a quality preference to a yt-dlp format selector.
// Height-capped qualities degrade gracefully: capped mp4 combo, then capped
// mp4, then unconstrained best.
func FormatForQuality(quality domain.Quality) string {
	switch quality {
	case domain.Quality1080p:
		return "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[height<=1080][ext=mp4]/best"
	case domain.Quality720p:
		return "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720][ext=mp4]/best"
	case domain.Quality480p:
		return "bestvideo[height<=480][ext=mp4]+bestaudio[ext=m4a]/best[height<=480][ext=mp4]/best"
	default:
		return "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	}
}

// Download runs the extraction tool against url and returns the path of the
// resulting file. filename may be empty, in which case the tool's title
// template is used.
func (d *YTDLPDownloader) Download(ctx context.Context, url, outputDir, filename string, quality domain.Quality, proxy string, tracker *ProgressTracker) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	template := "%(title)s.%(ext)s"
	if filename != "" {
		template = SanitizeFilename(filename) + ".%(ext)s"
	}

	args := []string{
		"-f", FormatForQuality(quality),
		"-o", filepath.Join(outputDir, template),
		"--no-playlist",
		"--newline",
		"--progress",
		"--progress-template", progressTemplate,
		// Make the tool print the final path once the file has been moved
		// into place; this beats guessing from the output template.
		"--print", "after_move:filepath",
	}
	if extra, err := shlex.Split(d.config.ExtraArgs); err == nil {
		args = append(args, extra...)
	}
	if proxy != "" {
		args = append(args, "--proxy", proxy)
	}
	args = append(args, url)

	ctx, cancel := context.WithTimeout(ctx, d.config.DownloadTimeout)
	defer cancel()

	// The initial snapshot goes out before the subprocess exists so a poller
	// always observes activity.
	tracker.Start(0)

	d.logger.Info("starting extraction download",
		zap.String("url", url),
		zap.String("quality", string(quality)),
		zap.Bool("proxy", proxy != ""))
	d.logger.Debug("tool command", zap.String("cmd", ShellEscapeCommand(d.config.Binary, args...)))

	cmd := exec.CommandContext(ctx, d.config.Binary, args...)
	// yt-dlp suppresses progress without a TTY; a terminal-type variable is
	// enough to defeat that heuristic.
	cmd.Env = append(os.Environ(), "TERM=xterm")

	// Merge stderr into stdout: progress, diagnostics and the path hook all
	// arrive on one stream, in order.
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		if isBinaryMissing(err) {
			return "", domain.Tag(domain.ErrToolUnavailable, err)
		}
		return "", domain.Tag(domain.ErrNetwork, fmt.Errorf("failed to start %s: %w", d.config.Binary, err))
	}

	type scanResult struct {
		finalPath string
		tail      []string
	}
	scanned := make(chan scanResult, 1)
	go func() {
		finalPath, tail := d.consumeOutput(pr, tracker)
		scanned <- scanResult{finalPath: finalPath, tail: tail}
	}()

	waitErr := cmd.Wait()
	pw.Close()
	out := <-scanned

	if ctx.Err() == context.DeadlineExceeded {
		return "", domain.Errorf(domain.ErrTimeout, "download timed out after %s", d.config.DownloadTimeout)
	}
	if waitErr != nil {
		diag := domain.TruncateMessage(strings.Join(out.tail, "\n"), maxErrorLength)
		return "", domain.Errorf(domain.ErrNetwork, "%s failed: %v: %s", d.config.Binary, waitErr, diag)
	}

	if out.finalPath != "" && fileExists(out.finalPath) {
		return out.finalPath, nil
	}

	// No path hook line appeared; fall back to the most recently modified
	// file in the output directory.
	d.logger.Warn("no output path reported, scanning output directory",
		zap.String("dir", outputDir))
	newest, err := newestFile(outputDir)
	if err != nil {
		return "", domain.Errorf(domain.ErrParse, "download finished but no output file was found: %v", err)
	}
	return newest, nil
}

// consumeOutput drains the merged subprocess stream line by line, feeding
// progress lines to the tracker and capturing the final-path hook line. It
// returns the captured path (possibly empty) and a bounded tail of raw lines
// for diagnostics.
func (d *YTDLPDownloader) consumeOutput(r io.Reader, tracker *ProgressTracker) (string, []string) {
	lr := NewLineReader(r)
	var finalPath string
	var tail []string

	for {
		line, err := lr.Next()
		if err != nil {
			break
		}

		tail = append(tail, line)
		if len(tail) > outputTailLines {
			tail = tail[1:]
		}

		// The after_move hook prints a bare absolute path.
		if isPathLine(line) {
			finalPath = line
			d.logger.Debug("captured output path", zap.String("path", line))
			continue
		}

		if update, ok := ParseProgressLine(line); ok {
			tracker.Update(*update)
			continue
		}

		if strings.Contains(line, "[download]") || strings.Contains(line, "[info]") {
			// Heartbeat keeps pollers alive through phases with no byte
			// counts (HLS fragments, merging).
			tracker.Heartbeat(line)
		} else if strings.Contains(strings.ToLower(line), "error") {
			d.logger.Warn("tool error output", zap.String("line", line))
		}
	}

	return finalPath, tail
}

// ExtractMetadata runs the tool in probe mode and returns the parsed
// metadata document.
func (d *YTDLPDownloader) ExtractMetadata(ctx context.Context, url, proxy string) (map[string]interface{}, error) {
	args := []string{"--dump-json", "--no-download", "--no-playlist"}
	if proxy != "" {
		args = append(args, "--proxy", proxy)
	}
	args = append(args, url)

	ctx, cancel := context.WithTimeout(ctx, d.config.MetadataTimeout)
	defer cancel()

	d.logger.Debug("extracting metadata", zap.String("url", url), zap.Bool("proxy", proxy != ""))

	cmd := exec.CommandContext(ctx, d.config.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, domain.Errorf(domain.ErrTimeout, "metadata extraction timed out after %s", d.config.MetadataTimeout)
	}
	if err != nil {
		if isBinaryMissing(err) {
			return nil, domain.Tag(domain.ErrToolUnavailable, err)
		}
		return nil, domain.Errorf(domain.ErrNetwork, "metadata extraction failed: %s", lastDiagnosticLine(stderr.String(), stdout.String()))
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &metadata); err != nil {
		return nil, domain.Tag(domain.ErrParse, fmt.Errorf("failed to parse tool output: %w", err))
	}
	return metadata, nil
}

// Version probes the tool binary and returns its version string.
func (d *YTDLPDownloader) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.VersionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.Binary, "--version")
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", domain.Errorf(domain.ErrTimeout, "version check timed out after %s", d.config.VersionTimeout)
	}
	if err != nil {
		if isBinaryMissing(err) {
			return "", domain.Tag(domain.ErrToolUnavailable, err)
		}
		return "", domain.Tag(domain.ErrToolUnavailable, fmt.Errorf("version check failed: %w", err))
	}
	return strings.TrimSpace(string(out)), nil
}

// EnsureAvailable verifies the tool is installed, making exactly one
// auto-install attempt if the binary is missing.
func (d *YTDLPDownloader) EnsureAvailable(ctx context.Context) (string, error) {
	version, err := d.Version(ctx)
	if err == nil {
		return version, nil
	}
	if !domain.IsKind(err, domain.ErrToolUnavailable) || d.config.InstallCommand == "" {
		return "", err
	}

	d.logger.Warn("extraction tool not found, attempting install",
		zap.String("binary", d.config.Binary))
	if installErr := d.install(ctx); installErr != nil {
		return "", domain.Errorf(domain.ErrToolUnavailable,
			"%s is not installed and auto-install failed: %v", d.config.Binary, installErr)
	}

	version, err = d.Version(ctx)
	if err != nil {
		return "", domain.Errorf(domain.ErrToolUnavailable,
			"%s is still unavailable after install", d.config.Binary)
	}
	return version, nil
}

// install runs the configured install command once.
func (d *YTDLPDownloader) install(ctx context.Context) error {
	parts, err := shlex.Split(d.config.InstallCommand)
	if err != nil || len(parts) == 0 {
		return fmt.Errorf("invalid install command %q", d.config.InstallCommand)
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.InstallTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("install failed: %v: %s",
			err, domain.TruncateMessage(output.String(), maxErrorLength))
	}
	return nil
}

// TestProxy verifies proxy connectivity by probing a URL through it. The
// tool handles SOCKS proxies natively, which a plain HTTP client would not.
func (d *YTDLPDownloader) TestProxy(ctx context.Context, url, proxy string) error {
	args := []string{
		"--proxy", proxy,
		"--no-download",
		"--no-playlist",
		"--dump-json",
		"--no-check-certificate",
		url,
	}

	ctx, cancel := context.WithTimeout(ctx, proxyTestTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.Binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return domain.Errorf(domain.ErrTimeout, "proxy connection timed out after %s", proxyTestTimeout)
	}
	if err != nil {
		return domain.Errorf(domain.ErrNetwork, "proxy connection failed: %s",
			domain.TruncateMessage(output.String(), 200))
	}
	return nil
}

// isPathLine reports whether a line is a bare filesystem path (Unix absolute
// or Windows drive-letter form) as printed by the after_move hook.
func isPathLine(line string) bool {
	if strings.HasPrefix(line, "/") {
		return true
	}
	return len(line) > 2 && line[1] == ':' && (line[2] == '\\' || line[2] == '/')
}

// isBinaryMissing reports whether err means the tool binary could not be
// found on PATH.
func isBinaryMissing(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound)
}

// lastDiagnosticLine picks the most useful line of tool output for a
// human-readable error message.
func lastDiagnosticLine(stderr, stdout string) string {
	combined := strings.TrimSpace(stderr)
	if combined == "" {
		combined = strings.TrimSpace(stdout)
	}
	if combined == "" {
		return "unknown error"
	}
	lines := strings.Split(combined, "\n")
	return domain.TruncateMessage(strings.TrimSpace(lines[len(lines)-1]), 200)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newestFile returns the most recently modified regular file in dir.
func newestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var newestPath string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newestPath == "" || info.ModTime().After(newestTime) {
			newestPath = filepath.Join(dir, entry.Name())
			newestTime = info.ModTime()
		}
	}

	if newestPath == "" {
		return "", fmt.Errorf("no files in %s", dir)
	}
	return newestPath, nil
}
