package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestFileSystemAssetStore_Copy(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		verify bool
	}{
		{name: "copies content", data: "\x89PNG\r\n\x1a\nfake", verify: false},
		{name: "copies and verifies", data: "\x89PNG\r\n\x1a\nfake", verify: true},
		{name: "empty file", data: "", verify: true},
		{name: "large file", data: strings.Repeat("x", 256*1024), verify: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcDir, dstDir := t.TempDir(), t.TempDir()
			src := filepath.Join(srcDir, "a.png")
			dst := filepath.Join(dstDir, "a.png")
			if err := os.WriteFile(src, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}

			got, err := NewFileSystemAssetStore(tt.verify).Copy(src, dst)
			if err != nil {
				t.Fatalf("Copy() error = %v", err)
			}

			data, err := os.ReadFile(dst)
			if err != nil {
				t.Fatalf("reading copy: %v", err)
			}
			if string(data) != tt.data {
				t.Errorf("copied content differs from source")
			}
			if got.Name != "a.png" {
				t.Errorf("Name = %q, want %q", got.Name, "a.png")
			}
			if got.Size != int64(len(tt.data)) {
				t.Errorf("Size = %d, want %d", got.Size, len(tt.data))
			}
			if got.Checksum != sha256Hex(tt.data) {
				t.Errorf("Checksum = %s, want %s", got.Checksum, sha256Hex(tt.data))
			}

			entries, _ := os.ReadDir(dstDir)
			if len(entries) != 1 {
				t.Errorf("target dir has %d entries, want 1 (temp file left behind?)", len(entries))
			}
		})
	}
}

func TestFileSystemAssetStore_Copy_Errors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "a.png")

		_, err := NewFileSystemAssetStore(true).Copy(filepath.Join(t.TempDir(), "a.png"), dst)
		if err == nil {
			t.Fatal("Copy() expected error for missing source")
		}
		if !strings.Contains(err.Error(), "asset not found") {
			t.Errorf("error = %v, want error containing 'asset not found'", err)
		}
		if _, err := os.Stat(dst); !os.IsNotExist(err) {
			t.Errorf("target should not exist, stat error = %v", err)
		}
	})

	t.Run("source is a directory", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "a.png")
		os.Mkdir(src, 0755)

		_, err := NewFileSystemAssetStore(false).Copy(src, filepath.Join(t.TempDir(), "a.png"))
		if err == nil {
			t.Fatal("Copy() expected error for directory source")
		}
	})

	t.Run("existing target is not overwritten", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "a.png")
		dst := filepath.Join(t.TempDir(), "a.png")
		os.WriteFile(src, []byte("new"), 0644)
		os.WriteFile(dst, []byte("old"), 0644)

		if _, err := NewFileSystemAssetStore(false).Copy(src, dst); err == nil {
			t.Fatal("Copy() expected error for existing target")
		}
		data, _ := os.ReadFile(dst)
		if string(data) != "old" {
			t.Errorf("target = %q, want untouched %q", data, "old")
		}
	})

	t.Run("missing target directory", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "a.png")
		os.WriteFile(src, []byte("x"), 0644)

		_, err := NewFileSystemAssetStore(false).Copy(src, filepath.Join(t.TempDir(), "gone", "a.png"))
		if err == nil {
			t.Fatal("Copy() expected error for missing target directory")
		}
	})
}

func TestWriteFile_SizeMismatch(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "a.png")

	if _, err := writeFile(dst, strings.NewReader("short"), 100); err == nil {
		t.Fatal("writeFile() expected size mismatch error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d entries after failed write, want 0", len(entries))
	}
}
