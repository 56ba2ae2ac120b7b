package runlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("run log not found")

type Store interface {
	// Load returns [ErrNotFound] when no run has been recorded for [key].
	Load(ctx context.Context, key Key) (*Log, error)
	Save(ctx context.Context, key Key, log *Log) error
}

// FileStore keeps one JSON file per schema under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("run log directory is empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run log directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key Key) string {
	return filepath.Join(f.dir, key.String()+".json")
}

func (f *FileStore) Load(_ context.Context, key Key) (*Log, error) {
	bytes, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read run log %q: %w", key.String(), err)
	}

	return Unmarshal(bytes)
}

func (f *FileStore) Save(_ context.Context, key Key, log *Log) error {
	bytes, err := Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal run log: %w", err)
	}

	// Write to a temporary file first so a crash never leaves a truncated log behind.
	tmp := f.path(key) + ".tmp"
	if err = os.WriteFile(tmp, bytes, 0o644); err != nil {
		return fmt.Errorf("failed to write run log %q: %w", key.String(), err)
	}

	if err = os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("failed to write run log %q: %w", key.String(), err)
	}

	return nil
}
