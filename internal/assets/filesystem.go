package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"blit-migrate/internal/blit"
)

// FileSystemAssetStore copies cel images between directories on disk.
// Every copy is written to a temp file beside the target and renamed into
// place, so a target either holds the complete image or does not exist.
type FileSystemAssetStore struct {
	verify bool
}

// NewFileSystemAssetStore creates an asset store. With verify set, each
// copied file is read back and its SHA-256 compared against the source's.
func NewFileSystemAssetStore(verify bool) *FileSystemAssetStore {
	return &FileSystemAssetStore{verify: verify}
}

// Copy copies src to dst byte for byte.
func (s *FileSystemAssetStore) Copy(src, dst string) (*blit.AssetCopy, error) {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("asset not found: %s", src)
		}
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat asset: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("asset is not a regular file: %s", src)
	}

	if _, err := os.Lstat(dst); err == nil {
		return nil, fmt.Errorf("target already exists: %s", dst)
	}

	checksum, err := writeFile(dst, in, info.Size())
	if err != nil {
		return nil, err
	}

	if s.verify {
		got, err := fileChecksum(dst)
		if err != nil {
			os.Remove(dst)
			return nil, fmt.Errorf("verifying copy: %w", err)
		}
		if got != checksum {
			os.Remove(dst)
			return nil, fmt.Errorf("checksum mismatch for %s: source %s, copy %s", dst, checksum, got)
		}
	}

	return &blit.AssetCopy{
		Name:        filepath.Base(dst),
		Source:      src,
		Destination: dst,
		Size:        info.Size(),
		Checksum:    checksum,
	}, nil
}

// writeFile writes data from r to destPath using atomic write (temp file +
// rename) and returns the hex SHA-256 of what was written.
func writeFile(destPath string, r io.Reader, expectedSize int64) (string, error) {
	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	h := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmpFile, h), r)
	if err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return hex.EncodeToString(h.Sum(nil)), nil
}

// fileChecksum returns the hex SHA-256 of the file at path.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Compile-time check that FileSystemAssetStore implements blit.AssetStore interface
var _ blit.AssetStore = (*FileSystemAssetStore)(nil)
