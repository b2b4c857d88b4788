package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edp-audit/odm-linkaudit/internal/manifest"
)

// FileSource reads a raw-links dump produced by the browser scraping
// side: a JSON object of tab key to URL array. Null entries become empty
// strings so list positions survive for order-sensitive callers.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Links(_ context.Context) (map[string][]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	var dump map[string][]*string
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, fmt.Errorf("parse links file %s: %w", f.path, err)
	}

	links := make(map[string][]string, len(dump))
	for key, list := range dump {
		if _, ok := manifest.FromKey(key); !ok {
			return nil, fmt.Errorf("links file %s: unknown tab key %q", f.path, key)
		}
		entries := make([]string, 0, len(list))
		for _, entry := range list {
			if entry == nil {
				entries = append(entries, "")
				continue
			}
			entries = append(entries, *entry)
		}
		links[key] = entries
	}
	return links, nil
}

// WriteDump persists a link collection in the same tab-key shape the
// scraping side produces, so a collect run can feed a later audit run.
func WriteDump(path string, links map[string][]string) error {
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal links: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dump dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write links dump %s: %w", path, err)
	}
	return nil
}
