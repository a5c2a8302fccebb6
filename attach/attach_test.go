package attach_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parleychat/parley/attach"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad_PlainPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "dot.png", []byte{1, 2, 3})

	ref, err := attach.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dot.png", ref.Name)
	assert.Equal(t, "image/png", ref.MimeType)
	assert.Equal(t, []byte{1, 2, 3}, ref.Data)
}

func TestLoad_Glob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "report.txt", []byte("hello"))
	writeFile(t, dir, "image.png", []byte{1})

	ref, err := attach.Load(filepath.Join(dir, "*.txt"))
	require.NoError(t, err)
	assert.Equal(t, "report.txt", ref.Name)
	assert.Contains(t, ref.MimeType, "text/plain")
}

func TestLoad_NestedGlob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))
	writeFile(t, filepath.Join(dir, "a", "b"), "deep.txt", []byte("x"))

	ref, err := attach.Load(filepath.Join(dir, "**", "*.txt"))
	require.NoError(t, err)
	assert.Equal(t, "deep.txt", ref.Name)
}

func TestLoad_NoMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := attach.Load(filepath.Join(dir, "*.pdf"))
	assert.ErrorContains(t, err, "no file matches")
}

func TestLoad_MultipleMatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("a"))
	writeFile(t, dir, "b.txt", []byte("b"))

	_, err := attach.Load(filepath.Join(dir, "*.txt"))
	assert.ErrorContains(t, err, "matches 2 files")
}

func TestLoad_UnknownExtensionFallsBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "blob.qz9", []byte{1})

	ref, err := attach.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", ref.MimeType)
}
