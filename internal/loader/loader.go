// Package loader reads requirements files from a directory or from a source
// archive.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a file does not exist in the source.
var ErrNotFound = errors.New("file not found")

// Loader returns the content of a slash-separated path.
type Loader interface {
	Load(path string) (string, error)
}

// Dir loads files relative to a directory on disk.
type Dir struct {
	Root string
}

// NewDir creates a loader rooted at root. An empty root means the working
// directory.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Load reads path. Absolute paths ignore the root.
func (d *Dir) Load(path string) (string, error) {
	full := d.Path(path)
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// Path returns the filesystem path that Load reads for path.
func (d *Dir) Path(path string) string {
	p := filepath.FromSlash(path)
	if filepath.IsAbs(p) || d.Root == "" {
		return p
	}
	return filepath.Join(d.Root, p)
}
