package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyDir is returned when no output directory is given.
var ErrEmptyDir = errors.New("output directory must not be empty")

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// LocalStorage implements the Storage interface using a local directory.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a new LocalStorage rooted at dir.
// The directory, and any missing parents, is created if it doesn't exist.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		return nil, ErrEmptyDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &LocalStorage{dir: dir}, nil
}

// Dir returns the output directory path.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Path returns the full path of name inside the output directory.
func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Remove deletes the specified files.
// It continues even if some files fail to delete,
// returning the first error encountered.
// It runs regardless of ctx so partial outputs are removed after cancellation.
func (s *LocalStorage) Remove(_ context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove file %s: %w", p, err)
			}
		}
	}
	return firstErr
}
