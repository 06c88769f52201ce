package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

func testConfig(t *testing.T) *domain.Config {
	t.Helper()
	config := domain.DefaultConfig()
	config.Results.Dir = t.TempDir()
	config.Download.OutputDir = t.TempDir()
	config.Download.ProgressInterval = 0
	config.Direct.Timeout = 5 * time.Second
	config.Tool.Binary = "definitely-not-a-real-binary"
	config.Tool.InstallCommand = ""
	config.History.DatabasePath = filepath.Join(t.TempDir(), "history.db")
	return config
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *domain.Config) {
	t.Helper()
	config := testConfig(t)
	return NewDispatcher(config, zap.NewNop()), config
}

func TestDispatch_UnknownTask(t *testing.T) {
	d, _ := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), "frobnicate", nil)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "Unknown task: frobnicate", result[domain.ResultKeyError])
}

func TestDispatch_DownloadMissingURL(t *testing.T) {
	d, _ := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), "download", map[string]interface{}{})
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result[domain.ResultKeyError], "No URL provided")
}

func TestDispatch_DownloadDirectFile(t *testing.T) {
	body := "fake video bytes"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	d, _ := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), "download", map[string]interface{}{
		"url":         server.URL + "/clip.mp4",
		"result_id":   "dl-1",
		"progress_id": "dl-1",
	})

	require.Equal(t, true, result["success"], "%v", result)
	assert.Equal(t, int64(len(body)), result["file_size"])
	path, _ := result["file_path"].(string)
	assert.True(t, strings.HasSuffix(path, "clip.mp4"))

	// the persisted result matches what the task returned
	stored, found, err := d.store.Load("dl-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, true, stored["success"])
	assert.Equal(t, path, stored["file_path"])

	// the terminal progress snapshot reports completion
	progress, found, err := d.store.Load("progress-dl-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, string(domain.ProgressComplete), progress["status"])
	assert.Equal(t, float64(100), progress["percentage"])
}

func TestDispatch_DownloadFailurePersistsResult(t *testing.T) {
	d, _ := newTestDispatcher(t)

	// unreachable direct URL with no fallback_url: no extractor retry, the
	// direct failure is terminal
	result := d.Dispatch(context.Background(), "download", map[string]interface{}{
		"url":         "http://127.0.0.1:1/gone.mp4",
		"result_id":   "dl-2",
		"progress_id": "dl-2",
	})

	require.Equal(t, false, result["success"])
	assert.Contains(t, result[domain.ResultKeyError], "Download failed")

	stored, found, err := d.store.Load("dl-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, false, stored["success"])
	assert.NotEmpty(t, stored[domain.ResultKeyError])

	progress, found, err := d.store.Load("progress-dl-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, string(domain.ProgressError), progress["status"])
}

func TestDispatch_DownloadFallbackGoesToExtractor(t *testing.T) {
	d, _ := newTestDispatcher(t)

	// the direct fetch fails, so the extractor is tried against the fallback
	// page URL; with the tool binary missing that surfaces as a tool error
	result := d.Dispatch(context.Background(), "download", map[string]interface{}{
		"url":          "http://127.0.0.1:1/gone.mp4",
		"fallback_url": "https://example.com/watch?v=abc",
	})

	require.Equal(t, false, result["success"])
	msg, _ := result[domain.ResultKeyError].(string)
	assert.Contains(t, msg, "Download failed")
	assert.Contains(t, msg, "not found")
}

func TestDispatch_ReadResult(t *testing.T) {
	d, _ := newTestDispatcher(t)

	require.NoError(t, d.store.Save("done", map[string]interface{}{
		"success":   true,
		"file_path": "/tmp/a.mp4",
	}))

	result := d.Dispatch(context.Background(), "read_result", map[string]interface{}{
		"result_id": "done",
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, true, result["retrieved"])
	assert.Equal(t, "/tmp/a.mp4", result["file_path"])
}

func TestDispatch_ReadResult_RenamesStoredErrors(t *testing.T) {
	d, _ := newTestDispatcher(t)

	require.NoError(t, d.store.Save("failed-task", map[string]interface{}{
		"success":             false,
		domain.ResultKeyError: "no video found",
	}))

	result := d.Dispatch(context.Background(), "read_result", map[string]interface{}{
		"result_id": "failed-task",
	})

	// the read itself succeeded, so the stored failure must not surface as a
	// top-level envelope error
	assert.Equal(t, true, result["retrieved"])
	assert.Equal(t, "no video found", result["task_error"])
	assert.NotContains(t, result, domain.ResultKeyError)

	env := BuildEnvelope(result)
	assert.Nil(t, env.Error)
}

func TestDispatch_ReadResult_Missing(t *testing.T) {
	d, _ := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), "read_result", map[string]interface{}{
		"result_id": "never-written",
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, false, result["retrieved"])
	assert.Equal(t, true, result["not_found"])
}

func TestDispatch_ReadResult_MissingID(t *testing.T) {
	d, _ := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), "read_result", nil)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "No result_id provided", result[domain.ResultKeyError])
}

func TestDispatch_CleanupResult(t *testing.T) {
	d, _ := newTestDispatcher(t)

	require.NoError(t, d.store.Save("temp", map[string]interface{}{"success": true}))

	result := d.Dispatch(context.Background(), "cleanup_result", map[string]interface{}{
		"result_id": "temp",
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, true, result["deleted"])

	_, found, err := d.store.Load("temp")
	require.NoError(t, err)
	assert.False(t, found)

	// deleting again is still a success
	again := d.Dispatch(context.Background(), "cleanup_result", map[string]interface{}{
		"result_id": "temp",
	})
	assert.Equal(t, true, again["success"])
}

func TestDispatch_CheckTool_Unavailable(t *testing.T) {
	d, _ := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), "check_tool", nil)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, false, result["available"])
	assert.NotEmpty(t, result["status_message"])
	assert.NotContains(t, result, domain.ResultKeyError)
}

func TestDispatch_TestProxy_MissingProxy(t *testing.T) {
	d, _ := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), "test_proxy", map[string]interface{}{})
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "No proxy URL provided", result[domain.ResultKeyError])
}

func TestDispatch_History(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	d, _ := newTestDispatcher(t)

	download := d.Dispatch(context.Background(), "download", map[string]interface{}{
		"url": server.URL + "/clip.mp4",
	})
	require.Equal(t, true, download["success"])

	result := d.Dispatch(context.Background(), "history", map[string]interface{}{})
	require.Equal(t, true, result["success"], "%v", result)
	assert.Equal(t, int64(1), result["total_completed"])
	assert.Equal(t, int64(0), result["total_failed"])

	entries, ok := result["entries"].([]*domain.HistoryEntry)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StrategyDirect, entries[0].Strategy)
}

func TestDispatch_History_Disabled(t *testing.T) {
	config := testConfig(t)
	config.History.Enabled = false
	d := NewDispatcher(config, zap.NewNop())

	result := d.Dispatch(context.Background(), "history", nil)
	assert.Equal(t, false, result["success"])
}

func TestRun_EndToEnd(t *testing.T) {
	d, _ := newTestDispatcher(t)

	input := strings.NewReader(`{"args":{"mode":"read_result","result_id":"nothing"}}`)
	var output bytes.Buffer

	code := d.Run(context.Background(), input, &output)
	assert.Equal(t, 0, code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &doc))
	assert.NotContains(t, doc, "error")

	out, ok := doc["output"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, out["not_found"])
}

func TestRun_InvalidInputStillEmitsEnvelope(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var output bytes.Buffer
	code := d.Run(context.Background(), strings.NewReader("{broken"), &output)
	assert.Equal(t, 0, code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &doc))
	assert.NotEmpty(t, doc["error"])
}
