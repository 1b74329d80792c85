package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/jetsetter/internal/model"
)

// JSON-backed snapshot of the packing list. Single file, human-readable.
// No locking; one process owns the file at a time.

// ErrDuplicateID is returned by Load when two items share an id.
var ErrDuplicateID = errors.New("duplicate item id")

// DefaultFileName is used when the config names a directory.
const DefaultFileName = "packing.json"

// Resolve returns the snapshot path for p. A directory gets DefaultFileName
// appended; anything else is returned as-is.
func Resolve(p string) string {
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return filepath.Join(p, DefaultFileName)
	}
	return p
}

// Load reads the snapshot at path. A missing file is an empty list.
func Load(path string) ([]model.Item, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Item{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w %d in %s", ErrDuplicateID, it.ID, path)
		}
		seen[it.ID] = struct{}{}
	}
	return items, nil
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Save writes items to path, creating parent directories.
func Save(path string, items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
