// Package paths resolves and validates filesystem paths ahead of a scan.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Resolve joins relative against base unless relative is already
// absolute, and returns the cleaned result.
func Resolve(base, relative string) string {
	if filepath.IsAbs(relative) {
		return filepath.Clean(relative)
	}

	return filepath.Join(base, relative)
}

// EnsureDir verifies that path exists and is a directory. When
// createIfMissing is set a missing directory is created, parents
// included. A path that exists but is not a directory is always an
// error.
func EnsureDir(path string, createIfMissing bool) error {
	info, err := os.Stat(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
		if createIfMissing {
			return os.MkdirAll(path, 0o755)
		}

		return fmt.Errorf("directory not found: %q", path)
	case err != nil:
		return fmt.Errorf("accessing path %q: %w", path, err)
	case !info.IsDir():
		return fmt.Errorf("path %q is not a directory", path)
	}

	return nil
}

// EnsureFile verifies that path exists and is a regular file.
func EnsureFile(path string) error {
	info, err := os.Stat(path)

	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("file not found: %q", path)
	case err != nil:
		return fmt.Errorf("accessing path %q: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("path %q is not a file", path)
	}

	return nil
}
