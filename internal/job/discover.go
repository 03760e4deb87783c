package job

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/maauso/audio2video/internal/storage"
)

const (
	// DefaultSourceExt is the audio extension selected when none is configured.
	DefaultSourceExt = ".mp3"
	// OutputExt is the extension of every destination file.
	OutputExt = ".mp4"
)

// ErrDestinationCollision is returned for a job whose destination is
// already claimed by an earlier job in the same run (e.g. a.mp3 and a.MP3).
var ErrDestinationCollision = errors.New("destination collides with another input")

// ErrOverwritesSource is returned for a job whose destination is its own
// source, which happens when the source extension is the output extension
// and both directories are the same.
var ErrOverwritesSource = errors.New("destination would overwrite the source")

// NormalizeExt returns ext in lower case with a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Discover lists the immediate entries of dir whose extension equals ext,
// compared case-insensitively. Directories are skipped and there is no
// recursion. Entries are returned in os.ReadDir order (sorted by name).
// A missing dir yields no entries and no error.
func Discover(dir, ext string) ([]string, error) {
	ext = NormalizeExt(ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) != ext {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// DestinationName replaces the extension of sourceName with OutputExt.
// The base name is preserved byte for byte.
func DestinationName(sourceName string) string {
	base := filepath.Base(sourceName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + OutputExt
}

// Plan creates one pending job per source, in order, with destinations
// inside out. The first source claiming a destination name keeps it and
// later ones get CollidesWith set.
func Plan(sources []string, out storage.Storage, resolution string) []*Job {
	jobs := make([]*Job, 0, len(sources))
	claimed := make(map[string]string, len(sources))

	for i, src := range sources {
		name := DestinationName(src)
		j := New(i, src, out.Path(name), resolution)

		if owner, ok := claimed[name]; ok {
			j.CollidesWith = owner
		} else {
			claimed[name] = j.SourceName()
		}
		jobs = append(jobs, j)
	}
	return jobs
}
