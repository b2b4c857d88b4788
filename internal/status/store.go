package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/edp-audit/odm-linkaudit/internal/logger"
)

const fileSuffix = "_link_status.json"

// Store reads and writes per-tab status artifacts under one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the artifact path for a tab key.
func (s *Store) Path(tabKey string) string {
	return filepath.Join(s.dir, tabKey+fileSuffix)
}

// Save writes the records for a tab key, creating parent directories as
// needed and fully replacing any previous artifact.
func (s *Store) Save(tabKey string, records []Record) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create status dir %s: %w", s.dir, err)
	}
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal status records: %w", err)
	}
	path := s.Path(tabKey)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write status artifact %s: %w", path, err)
	}
	return path, nil
}

// Load reads the records for a tab key. A missing artifact reads as
// empty, and a corrupt one reads as empty with a warning, so one bad
// file cannot take down a whole report run.
func (s *Store) Load(tabKey string) ([]Record, error) {
	path := s.Path(tabKey)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read status artifact %s: %w", path, err)
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.L().Warn("ignoring corrupt status artifact",
			zap.String("path", path), zap.Error(err))
		return nil, nil
	}
	return records, nil
}

// Clean removes every JSON artifact in the directory, leaving other files
// alone. A directory that does not exist yet is already clean.
func (s *Store) Clean() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read status dir %s: %w", s.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}
