//go:build windows
// +build windows

// Package xos provides cross-platform atomic file operations.
// On Windows, we use a fallback approach since atomic rename across
// drives is not always possible.
package xos

import (
	"os"
	"path/filepath"
)

// WriteFile writes data to the named file.
// On Windows, this uses a temp file + rename approach within the same directory.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	p, err := NewPendingFile(filename)
	if err != nil {
		return err
	}
	defer p.Cleanup()

	if _, err := p.Write(data); err != nil {
		return err
	}
	if err := p.file.Chmod(perm); err != nil {
		return err
	}
	return p.CloseAtomically()
}

// WriteFileAll is WriteFile after creating the parent directory.
func WriteFileAll(filename string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	return WriteFile(filename, data, perm)
}

// PendingFile represents a file that will be written atomically.
// Call CloseAtomically to complete the write, or Cleanup to discard.
type PendingFile struct {
	file *os.File
	path string
	done bool
}

// NewPendingFile creates a temp file next to filename.
func NewPendingFile(filename string) (*PendingFile, error) {
	f, err := os.CreateTemp(filepath.Dir(filename), ".tmp-*")
	if err != nil {
		return nil, err
	}
	return &PendingFile{file: f, path: filename}, nil
}

// Write writes data to the pending file.
func (p *PendingFile) Write(data []byte) (int, error) {
	return p.file.Write(data)
}

// CloseAtomically syncs the temp file and renames it over the target.
func (p *PendingFile) CloseAtomically() error {
	if err := p.file.Sync(); err != nil {
		return err
	}
	if err := p.file.Close(); err != nil {
		return err
	}

	// On Windows, we need to remove the target first if it exists
	if _, err := os.Stat(p.path); err == nil {
		if err := os.Remove(p.path); err != nil {
			return err
		}
	}
	if err := os.Rename(p.file.Name(), p.path); err != nil {
		return err
	}
	p.done = true
	return nil
}

// Cleanup discards the pending file without writing. It is safe to call
// after CloseAtomically.
func (p *PendingFile) Cleanup() {
	if p.done {
		return
	}
	p.file.Close()
	os.Remove(p.file.Name())
}

// Path returns the target path of the pending file.
func (p *PendingFile) Path() string {
	return p.path
}
