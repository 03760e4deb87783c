// Package storage provides the output directory and optional remote
// publishing of converted files. It defines the Storage and Publisher
// interfaces (ports) and implementations for local disk and S3.
package storage

import "context"

// Storage defines the local output directory used by a conversion run.
type Storage interface {
	// Dir returns the output directory.
	Dir() string

	// Path returns the full path of name inside the output directory.
	Path(name string) string

	// Remove deletes the specified files, ignoring files that do not exist.
	// It continues even if some files fail to delete.
	Remove(ctx context.Context, paths []string) error
}

// Publisher uploads finished files to persistent remote storage.
type Publisher interface {
	// Publish uploads the file at path under key and returns its URL.
	Publish(ctx context.Context, key, path string) (url string, err error)
}
