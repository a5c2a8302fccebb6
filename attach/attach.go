// Package attach resolves user-supplied paths into message attachments.
// A path may be a doublestar glob; it must resolve to exactly one file,
// since a message carries at most one attachment.
package attach

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/parleychat/parley"
)

const defaultMimeType = "application/octet-stream"

// maxSize caps attachment payloads. Inline base64 parts blow up request
// bodies; providers reject anything much larger anyway.
const maxSize = 20 << 20

// Load resolves pattern to a single file and reads it into a FileRef.
// The MIME type comes from the file extension, falling back to
// application/octet-stream.
func Load(pattern string) (*parley.FileRef, error) {
	path, err := resolve(pattern)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("attach: %s exceeds the %dMB attachment limit", path, maxSize>>20)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	return &parley.FileRef{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Data:     data,
	}, nil
}

// resolve expands pattern and requires exactly one match. A plain path
// without meta characters passes through doublestar unchanged.
func resolve(pattern string) (string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("attach: bad pattern %q: %w", pattern, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("attach: no file matches %q", pattern)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("attach: %q matches %d files, expected exactly one", pattern, len(matches))
	}
}
