package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// WriteFileAtomic copies r into dir/name through a temp file in the same
// directory, so a failed transfer never leaves a truncated file under the
// final name. An existing file with that name is replaced.
func WriteFileAtomic(dir, name string, r io.Reader) (string, int64, error) {
	if err := EnsureDir(dir); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".part-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		if copyErr != nil {
			return "", n, fmt.Errorf("write %s: %w", name, copyErr)
		}
		return "", n, fmt.Errorf("close %s: %w", name, closeErr)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		_ = os.Remove(tmp.Name())
		return "", n, fmt.Errorf("rename %s: %w", name, err)
	}
	return final, n, nil
}
