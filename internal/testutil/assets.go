package testutil

import (
	"errors"
	"path/filepath"
	"sync"

	"blit-migrate/internal/blit"
)

// ErrInjected is the error FailingAssetStore returns for a failed copy.
var ErrInjected = errors.New("injected copy failure")

// FailingAssetStore wraps another store and fails selected copies. Copies
// that are not selected are passed through to the wrapped store.
type FailingAssetStore struct {
	next blit.AssetStore

	mu     sync.Mutex
	failAt int
	name   string
	calls  int
}

// FailOnCall fails the nth Copy call (1-based).
func FailOnCall(next blit.AssetStore, n int) *FailingAssetStore {
	return &FailingAssetStore{next: next, failAt: n}
}

// FailOnAsset fails any copy whose destination file name is name.
func FailOnAsset(next blit.AssetStore, name string) *FailingAssetStore {
	return &FailingAssetStore{next: next, name: name}
}

func (s *FailingAssetStore) Copy(src, dst string) (*blit.AssetCopy, error) {
	s.mu.Lock()
	s.calls++
	fail := s.calls == s.failAt || (s.name != "" && filepath.Base(dst) == s.name)
	s.mu.Unlock()

	if fail {
		return nil, ErrInjected
	}
	return s.next.Copy(src, dst)
}

// Calls returns the number of Copy calls made so far.
func (s *FailingAssetStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var _ blit.AssetStore = (*FailingAssetStore)(nil)
