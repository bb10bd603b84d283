package clipboard

import (
	"context"
	"slices"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 🧠 MemoryStore is an in-process Store, used by tests and embedders
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	staged  bool
	writes  int
}

// 🏭 NewMemoryStore creates an empty store; Read fails until the first Write
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Location() string {
	return "memory"
}

func (s *MemoryStore) Write(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = slices.Clone(entries)
	s.staged = true
	s.writes++
	return nil
}

func (s *MemoryStore) Read(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.staged {
		return nil, errors.Errorf("%w: nothing staged in memory", ErrClipboardUnavailable)
	}
	return slices.Clone(s.entries), nil
}

// Writes reports how many times Write was called
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
