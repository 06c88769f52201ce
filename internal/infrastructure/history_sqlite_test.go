package infrastructure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

func newTestHistoryRepo(t *testing.T) *SQLiteHistoryRepository {
	t.Helper()
	repo, err := NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteHistoryRepository_RecordAndRecent(t *testing.T) {
	repo := newTestHistoryRepo(t)

	first := domain.NewHistoryEntry("https://example.com/a.mp4", domain.StrategyDirect)
	first.MarkCompleted("/downloads/a.mp4", 1024)
	require.NoError(t, repo.Record(first))

	second := domain.NewHistoryEntry("https://example.com/page", domain.StrategyExtractor)
	second.MarkFailed("no video found")
	require.NoError(t, repo.Record(second))

	entries, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	urls := []string{entries[0].URL, entries[1].URL}
	assert.Contains(t, urls, "https://example.com/a.mp4")
	assert.Contains(t, urls, "https://example.com/page")
}

func TestSQLiteHistoryRepository_RecentHonorsLimit(t *testing.T) {
	repo := newTestHistoryRepo(t)

	for i := 0; i < 5; i++ {
		entry := domain.NewHistoryEntry("https://example.com/v", domain.StrategyDirect)
		entry.MarkCompleted("/downloads/v.mp4", 1)
		require.NoError(t, repo.Record(entry))
	}

	entries, err := repo.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSQLiteHistoryRepository_CountByStatus(t *testing.T) {
	repo := newTestHistoryRepo(t)

	completed := domain.NewHistoryEntry("https://example.com/ok", domain.StrategyDirect)
	completed.MarkCompleted("/downloads/ok.mp4", 10)
	require.NoError(t, repo.Record(completed))

	for i := 0; i < 2; i++ {
		failed := domain.NewHistoryEntry("https://example.com/bad", domain.StrategyExtractor)
		failed.MarkFailed("timeout")
		require.NoError(t, repo.Record(failed))
	}

	n, err := repo.CountByStatus(domain.HistoryCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountByStatus(domain.HistoryFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
