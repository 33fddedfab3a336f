package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	path, n, err := WriteFileAtomic(dir, "playlist.zip", strings.NewReader("PK\x03\x04data"))
	if err != nil {
		t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "playlist.zip") || n != 8 {
		t.Errorf("WriteFileAtomic() = %q, %d", path, n)
	}

	// Replaces an existing file.
	if _, _, err := WriteFileAtomic(dir, "playlist.zip", strings.NewReader("new")); err != nil {
		t.Fatalf("second WriteFileAtomic() unexpected error: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q, want new", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the final file", len(entries))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteFileAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := WriteFileAtomic(dir, "playlist.zip", failingReader{}); err == nil {
		t.Fatalf("WriteFileAtomic() expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d entries after failure, want 0", len(entries))
	}
}
