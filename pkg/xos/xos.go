//go:build !windows
// +build !windows

// Package xos provides cross-platform atomic file operations.
// It uses atomic rename operations so readers never observe a partially
// written file.
package xos

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteFile writes data to the named file atomically using rename.
// If the file does not exist, WriteFile creates it with permissions perm;
// otherwise it is replaced in a single step.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	p, err := NewPendingFile(filename)
	if err != nil {
		return err
	}
	defer p.Cleanup()

	if _, err := p.Write(data); err != nil {
		return err
	}
	if err := p.tempFile.Chmod(perm); err != nil {
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
	tempFile *renameio.PendingFile
	path     string
}

// NewPendingFile creates a new pending file for atomic writing.
func NewPendingFile(filename string) (*PendingFile, error) {
	t, err := renameio.TempFile("", filename)
	if err != nil {
		return nil, err
	}
	return &PendingFile{
		tempFile: t,
		path:     filename,
	}, nil
}

// Write writes data to the pending file.
func (p *PendingFile) Write(data []byte) (int, error) {
	return p.tempFile.Write(data)
}

// CloseAtomically completes the write by atomically renaming the temp file.
func (p *PendingFile) CloseAtomically() error {
	return p.tempFile.CloseAtomicallyReplace()
}

// Cleanup discards the pending file without writing. It is safe to call
// after CloseAtomically.
func (p *PendingFile) Cleanup() {
	p.tempFile.Cleanup()
}

// Path returns the target path of the pending file.
func (p *PendingFile) Path() string {
	return p.path
}
