package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"blit-migrate/internal/blit"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
type OSFilesystemManager struct{}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// Resolve makes rawPath absolute and stats it. Symlinks are followed, so a
// project reached through a link resolves to what the link points at.
func (m *OSFilesystemManager) Resolve(rawPath string) (*blit.Path, error) {
	if rawPath == "" {
		return nil, fmt.Errorf("empty path")
	}

	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return blit.NewPath(absPath, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return blit.NewPath(absPath, info), nil
}

// ReadFile reads a regular file in full.
func (m *OSFilesystemManager) ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}
	return os.ReadFile(path)
}

// Exists reports whether path names a regular file. A directory or special
// file at path counts as absent.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// Compile-time check that OSFilesystemManager implements blit.FilesystemManager interface
var _ blit.FilesystemManager = (*OSFilesystemManager)(nil)
