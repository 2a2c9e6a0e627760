package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"blit-migrate/internal/blit"
)

// MemoryAssetStore keeps files in a map keyed by path. Copy reads and writes
// only that map, which makes it useful for driving the migrator in tests
// without image files on disk. Safe for concurrent use.
type MemoryAssetStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryAssetStore creates an empty store.
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{files: make(map[string][]byte)}
}

// Put stores data at path, replacing anything there.
func (m *MemoryAssetStore) Put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = append([]byte(nil), data...)
}

// Get returns the data stored at path.
func (m *MemoryAssetStore) Get(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

// Paths lists every stored path in sorted order.
func (m *MemoryAssetStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Copy duplicates the entry at src under dst.
func (m *MemoryAssetStore) Copy(src, dst string) (*blit.AssetCopy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[filepath.Clean(src)]
	if !ok {
		return nil, fmt.Errorf("asset not found: %s", src)
	}
	if _, exists := m.files[filepath.Clean(dst)]; exists {
		return nil, fmt.Errorf("target already exists: %s", dst)
	}

	m.files[filepath.Clean(dst)] = append([]byte(nil), data...)
	sum := sha256.Sum256(data)
	return &blit.AssetCopy{
		Name:        filepath.Base(dst),
		Source:      src,
		Destination: dst,
		Size:        int64(len(data)),
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// Compile-time check that MemoryAssetStore implements blit.AssetStore interface
var _ blit.AssetStore = (*MemoryAssetStore)(nil)
