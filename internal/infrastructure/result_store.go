package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

// ProgressIDPrefix namespaces progress snapshots from result snapshots within
// the same store directory.
const ProgressIDPrefix = "progress-"

var idSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeID maps every character outside [A-Za-z0-9_-] to an underscore so
// no id can escape the results root.
func SanitizeID(id string) string {
	return idSanitizer.ReplaceAllString(id, "_")
}

// ProgressID derives the store id for progress snapshots of a download.
func ProgressID(id string) string {
	return ProgressIDPrefix + id
}

// ResultStore persists id-keyed JSON records under a single root directory.
// It performs no cross-writer coordination: each invocation is assumed to be
// the only producer for its ids, and a write is either fully visible or not
// yet visible to concurrent readers.
type ResultStore struct {
	root   string
	logger *zap.Logger
}

// NewResultStore creates a store rooted at dir. The directory is created
// lazily on first save, so a read-only poll invocation never creates it.
func NewResultStore(dir string, logger *zap.Logger) *ResultStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultStore{root: dir, logger: logger}
}

// Path resolves the file path for an id. The id is sanitized first, so the
// result always stays within the store root.
func (s *ResultStore) Path(id string) string {
	return filepath.Join(s.root, SanitizeID(id)+".json")
}

// Save serializes record and overwrites the id's file as a whole. It returns
// an error rather than partial state: a failed write leaves either the old
// record or nothing.
func (s *ResultStore) Save(id string, record interface{}) error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.Tag(domain.ErrSerialization, fmt.Errorf("failed to serialize record: %w", err))
	}

	path := s.Path(id)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	s.logger.Debug("saved result", zap.String("id", id), zap.String("path", path))
	return nil
}

// Load reads the record for id into a generic map. The second return is
// false when no record exists; absence is not an error.
func (s *ResultStore) Load(id string) (map[string]interface{}, bool, error) {
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read result: %w", err)
	}

	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, domain.Tag(domain.ErrParse, fmt.Errorf("corrupt result record %q: %w", id, err))
	}
	return record, true, nil
}

// Delete removes the id's file. Deleting an absent id succeeds.
func (s *ResultStore) Delete(id string) error {
	err := os.Remove(s.Path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}
