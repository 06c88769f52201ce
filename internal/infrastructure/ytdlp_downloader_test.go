package infrastructure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

func TestFormatForQuality(t *testing.T) {
	tests := []struct {
		name     string
		quality  domain.Quality
		expected string
	}{
		{
			name:     "best",
			quality:  domain.QualityBest,
			expected: "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		},
		{
			name:     "1080p",
			quality:  domain.Quality1080p,
			expected: "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[height<=1080][ext=mp4]/best",
		},
		{
			name:     "720p",
			quality:  domain.Quality720p,
			expected: "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720][ext=mp4]/best",
		},
		{
			name:     "480p",
			quality:  domain.Quality480p,
			expected: "bestvideo[height<=480][ext=mp4]+bestaudio[ext=m4a]/best[height<=480][ext=mp4]/best",
		},
		{
			name:     "unknown falls back to best",
			quality:  domain.Quality("4k"),
			expected: "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector := FormatForQuality(tt.quality)
			assert.Equal(t, tt.expected, selector)
			// every capped selector still ends in an unconstrained fallback
			assert.True(t, strings.HasSuffix(selector, "/best"))
		})
	}
}

func TestIsPathLine(t *testing.T) {
	assert.True(t, isPathLine("/home/user/Downloads/clip.mp4"))
	assert.True(t, isPathLine(`C:\Users\user\clip.mp4`))
	assert.True(t, isPathLine("D:/media/clip.mp4"))

	assert.False(t, isPathLine("[download] 100% of 4.00MiB"))
	assert.False(t, isPathLine("clip.mp4"))
	assert.False(t, isPathLine(""))
	assert.False(t, isPathLine("a:"))
}

func TestConsumeOutput(t *testing.T) {
	store := NewResultStore(t.TempDir(), zap.NewNop())
	tracker := NewProgressTracker(store, "dl", 0, zap.NewNop())
	tracker.Start(0)

	output := strings.Join([]string{
		"[info] Downloading format 137",
		"[download] Destination: /tmp/work/clip.f137.mp4",
		"[download]  50.0% of 100.00MiB at 5.00MiB/s ETA 00:10",
		"/home/user/Downloads/clip.mp4",
		"",
	}, "\n")

	d := NewYTDLPDownloader(&domain.ToolConfig{}, zap.NewNop())
	finalPath, tail := d.consumeOutput(strings.NewReader(output), tracker)

	assert.Equal(t, "/home/user/Downloads/clip.mp4", finalPath)
	assert.NotEmpty(t, tail)

	data, found, err := store.Load(ProgressID("dl"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, string(domain.ProgressDownloading), data["status"])
	assert.Equal(t, 50.0, data["percentage"])
}

func TestConsumeOutput_TailBounded(t *testing.T) {
	var lines []string
	for i := 0; i < outputTailLines*3; i++ {
		lines = append(lines, "noise line")
	}
	d := NewYTDLPDownloader(&domain.ToolConfig{}, zap.NewNop())
	_, tail := d.consumeOutput(strings.NewReader(strings.Join(lines, "\n")), NewProgressTracker(nil, "", 0, zap.NewNop()))
	assert.Len(t, tail, outputTailLines)
}

func TestLastDiagnosticLine(t *testing.T) {
	assert.Equal(t, "ERROR: no video found",
		lastDiagnosticLine("WARNING: something\nERROR: no video found\n", "ignored"))
	assert.Equal(t, "stdout fallback", lastDiagnosticLine("", "stdout fallback"))
	assert.Equal(t, "unknown error", lastDiagnosticLine("", ""))
}

func TestNewestFile(t *testing.T) {
	dir := t.TempDir()

	older := filepath.Join(dir, "older.mp4")
	newer := filepath.Join(dir, "newer.mp4")
	require.NoError(t, os.WriteFile(older, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("b"), 0644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	// subdirectories are ignored
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	got, err := newestFile(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, got)
}

func TestNewestFile_EmptyDir(t *testing.T) {
	_, err := newestFile(t.TempDir())
	assert.Error(t, err)
}
