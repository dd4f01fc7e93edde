package attempt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/julienduc-econ/finquiz/internal/question"
)

// FileStore implements Store on a single YAML file, for classroom use
// without a database. Appends rewrite the whole file under a lock, so
// concurrent sessions in one process cannot corrupt it.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore writing to path. The file and its
// directory are created on first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append adds one record to the file.
func (s *FileStore) Append(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}
	record.ID = int64(len(records) + 1)
	records = append(records, record)

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("yaml.Marshal() > %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("os.MkdirAll(%s) > %w: %w", dir, ErrStoreUnavailable, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w: %w", s.path, ErrStoreUnavailable, err)
	}
	return nil
}

// Query returns recorded attempts, oldest first.
func (s *FileStore) Query(ctx context.Context, category question.Category) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if category == "" || category == question.CategoryAll {
		return records, nil
	}
	filtered := make([]Record, 0, len(records))
	for _, record := range records {
		if record.Category == category {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

func (s *FileStore) readAll() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w: %w", s.path, ErrStoreUnavailable, err)
	}
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", s.path, err)
	}
	return records, nil
}
