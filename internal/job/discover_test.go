package job

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/audio2video/internal/storage"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}

func TestDiscover_SelectsExtensionCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp3", "B.MP3", "c.Mp3", "d.wav", "e.mp3.txt", "mp3", "f.mp4")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.mp3"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	touch(t, filepath.Join(dir, "sub"), "nested.mp3")

	files, err := Discover(dir, ".mp3")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.mp3", "B.MP3", "c.Mp3"}, baseNames(files))
	for _, f := range files {
		assert.Equal(t, dir, filepath.Dir(f))
	}
}

func TestDiscover_ExtensionForms(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.flac", "b.FLAC", "c.mp3")

	for _, ext := range []string{".flac", "flac", "FLAC", " .Flac "} {
		t.Run(ext, func(t *testing.T) {
			files, err := Discover(dir, ext)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"a.flac", "b.FLAC"}, baseNames(files))
		})
	}
}

func TestDiscover_MissingDirectoryIsEmpty(t *testing.T) {
	files, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"), ".mp3")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "file.mp3")

	_, err := Discover(filepath.Join(dir, "file.mp3"), ".mp3")
	require.Error(t, err)
}

func TestDiscover_NoMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "notes.txt", "cover.jpg")

	files, err := Discover(dir, ".mp3")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDestinationName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"track.MP3", "track.mp4"},
		{"track.mp3", "track.mp4"},
		{"運動会 アナウンス.mp3", "運動会 アナウンス.mp4"},
		{"Café del Mar.Mp3", "Café del Mar.mp4"},
		{"a.b.c.mp3", "a.b.c.mp4"},
		{"/some/dir/song.mp3", "song.mp4"},
		{"noext", "noext.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DestinationName(tt.in))
		})
	}
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, ".mp3", NormalizeExt("mp3"))
	assert.Equal(t, ".mp3", NormalizeExt(".MP3"))
	assert.Equal(t, ".m4a", NormalizeExt(" M4A "))
	assert.Equal(t, "", NormalizeExt(""))
}

func newOutput(t *testing.T) *storage.LocalStorage {
	t.Helper()
	out, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	return out
}

func TestPlan(t *testing.T) {
	out := newOutput(t)
	sources := []string{
		filepath.Join("in", "one.mp3"),
		filepath.Join("in", "two.MP3"),
	}

	jobs := Plan(sources, out, "640x360")
	require.Len(t, jobs, 2)

	for i, j := range jobs {
		assert.Equal(t, i, j.Index)
		assert.Equal(t, sources[i], j.SourcePath)
		assert.Equal(t, "640x360", j.Resolution)
		assert.Equal(t, StatusPending, j.Status)
		assert.Empty(t, j.CollidesWith)
	}
	assert.Equal(t, out.Path("one.mp4"), jobs[0].DestinationPath)
	assert.Equal(t, out.Path("two.mp4"), jobs[1].DestinationPath)
}

func TestPlan_Collisions(t *testing.T) {
	sources := []string{
		filepath.Join("in", "a.MP3"),
		filepath.Join("in", "a.mp3"),
		filepath.Join("in", "a.Mp3"),
		filepath.Join("in", "b.mp3"),
	}

	jobs := Plan(sources, newOutput(t), "1280x720")
	require.Len(t, jobs, 4)

	assert.Empty(t, jobs[0].CollidesWith, "first claimant keeps the destination")
	assert.Equal(t, "a.MP3", jobs[1].CollidesWith)
	assert.Equal(t, "a.MP3", jobs[2].CollidesWith)
	assert.Empty(t, jobs[3].CollidesWith)
}

func TestPlan_BaseNamesDifferingInCaseDoNotCollide(t *testing.T) {
	sources := []string{
		filepath.Join("in", "Song.mp3"),
		filepath.Join("in", "song.mp3"),
	}

	jobs := Plan(sources, newOutput(t), "1280x720")
	require.Len(t, jobs, 2)

	assert.Empty(t, jobs[0].CollidesWith)
	assert.Empty(t, jobs[1].CollidesWith)
	assert.Equal(t, "Song.mp4", jobs[0].DestinationName())
	assert.Equal(t, "song.mp4", jobs[1].DestinationName())
}

func TestDiscover_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.mp3")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.mp3")))

	files, err := Discover(dir, ".mp3")
	require.NoError(t, err)
	assert.Equal(t, []string{"link.mp3"}, baseNames(files))
}
