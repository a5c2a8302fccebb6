// Package storage provides the durable key/blob boundary the core writes
// through. The key space is small and fixed: one key for the session
// collection, one for the provider/model selection, one for the theme
// preference.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Well-known keys.
const (
	KeySessions = "chat_history"
	KeySettings = "settings"
	KeyTheme    = "theme"
)

// Storage is a durable key/blob mapping. Read reports ok=false for an
// absent key; malformed blobs are the caller's concern and must be
// tolerated by falling back to defaults.
type Storage interface {
	Read(key string) (blob []byte, ok bool, err error)
	Write(key string, blob []byte) error
}

// Dir is a Storage backed by one file per key inside a directory.
// Writes go through a temp file and rename, so a crash mid-write leaves
// the previous blob intact rather than a truncated one.
type Dir struct {
	path string
}

// Interface compliance check.
var _ Storage = (*Dir)(nil)

// NewDir creates a Dir rooted at path, creating the directory as needed.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Read returns the blob stored under key, or ok=false when absent.
func (d *Dir) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(d.file(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Write stores blob under key atomically.
func (d *Dir) Write(key string, blob []byte) error {
	path := d.file(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (d *Dir) file(key string) string {
	return filepath.Join(d.path, key+".json")
}
