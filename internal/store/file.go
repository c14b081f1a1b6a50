package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File persists the snapshot as a single JSON file, written atomically via
// a temp file and rename so a crash mid-write never corrupts the snapshot.
type File struct {
	path string
}

// NewFile creates a file store at path, creating parent directories as
// needed.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	return &File{path: path}, nil
}

func (f *File) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

func (f *File) Save(_ context.Context, data []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
