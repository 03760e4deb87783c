package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewLocalStorage(t *testing.T) {
	t.Run("creates directory with parents if not exists", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b", "c")

		storage, err := NewLocalStorage(dir)
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		if storage.Dir() != dir {
			t.Errorf("Dir() = %v, want %v", storage.Dir(), dir)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("existing directory is kept", func(t *testing.T) {
		dir := t.TempDir()
		marker := filepath.Join(dir, "keep.txt")
		if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := NewLocalStorage(dir); err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}
		if _, err := os.Stat(marker); err != nil {
			t.Errorf("existing content removed: %v", err)
		}
	})

	t.Run("empty directory is rejected", func(t *testing.T) {
		_, err := NewLocalStorage("")
		if !errors.Is(err, ErrEmptyDir) {
			t.Errorf("expected ErrEmptyDir, got %v", err)
		}
	})

	t.Run("path blocked by a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewLocalStorage(filepath.Join(file, "sub")); err == nil {
			t.Error("expected error when a parent is a regular file")
		}
	})
}

func TestLocalStorage_Path(t *testing.T) {
	storage := setupTestStorage(t)

	got := storage.Path("曲.mp4")
	want := filepath.Join(storage.Dir(), "曲.mp4")
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLocalStorage_Remove(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("removes files", func(t *testing.T) {
		var paths []string
		for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
			path := storage.Path(name)
			if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
				t.Fatal(err)
			}
			paths = append(paths, path)
		}

		if err := storage.Remove(ctx, paths); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}

		for _, p := range paths {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("file %s still exists", p)
			}
		}
	})

	t.Run("ignores non-existent files", func(t *testing.T) {
		err := storage.Remove(ctx, []string{"/non/existent/file"})
		if err != nil {
			t.Errorf("Remove() should ignore non-existent files, got %v", err)
		}
	})

	t.Run("runs after context cancellation", func(t *testing.T) {
		path := storage.Path("partial.mp4")
		if err := os.WriteFile(path, []byte("partial"), 0o644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := storage.Remove(ctx, []string{path}); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("partial file should be removed even when ctx is cancelled")
		}
	})
}

func setupTestStorage(t *testing.T) *LocalStorage {
	t.Helper()

	storage, err := NewLocalStorage(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return storage
}
