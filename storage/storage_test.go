package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parleychat/parley/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_ReadWrite(t *testing.T) {
	t.Parallel()

	d, err := storage.NewDir(t.TempDir())
	require.NoError(t, err)

	_, ok, err := d.Read(storage.KeySessions)
	require.NoError(t, err)
	assert.False(t, ok, "absent key reads as not-ok, not as an error")

	require.NoError(t, d.Write(storage.KeySessions, []byte(`{"version":1}`)))

	blob, ok, err := d.Read(storage.KeySessions)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"version":1}`, string(blob))
}

func TestDir_OverwriteIsAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d, err := storage.NewDir(dir)
	require.NoError(t, err)

	require.NoError(t, d.Write("k", []byte("one")))
	require.NoError(t, d.Write("k", []byte("two")))

	blob, ok, err := d.Read("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(blob))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestNewDir_CreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "data")
	_, err := storage.NewDir(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
