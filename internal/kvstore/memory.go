package kvstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and single-process setups.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get returns the value for key and whether it was present.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// Set writes value under key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.entries[key] = cp
	return nil
}

// SetMulti writes all entries under a single lock.
func (s *MemoryStore) SetMulti(_ context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range entries {
		cp := make([]byte, len(value))
		copy(cp, value)
		s.entries[key] = cp
	}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
