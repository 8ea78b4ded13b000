package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Scratch manages the single local file the downloaded media is written to
// before it is attached to the record store request. Each run overwrites it.
type Scratch struct {
	path string
}

// NewScratch creates a scratch file manager, creating the parent directory
func NewScratch(path string) (*Scratch, error) {
	if path == "" {
		return nil, fmt.Errorf("scratch path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	return &Scratch{path: path}, nil
}

// Path returns the scratch file path
func (s *Scratch) Path() string {
	return s.path
}

// Save replaces the scratch file with the contents of r and returns the
// number of bytes written. A failed write leaves any previous file intact.
func (s *Scratch) Save(r io.Reader) (int64, error) {
	tempFile := s.path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to save media data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return written, nil
}

// Open opens the scratch file for reading
func (s *Scratch) Open() (*os.File, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scratch file: %w", err)
	}
	return f, nil
}
