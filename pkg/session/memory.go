package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the credential in process memory, guarded by a RWMutex.
// Concurrent Set/Clear resolve as last-write-wins.
type MemoryStore struct {
	mu    sync.RWMutex
	key   string
	value string
}

// NewMemoryStore creates an empty in-memory store for the given slot name.
func NewMemoryStore(key string) *MemoryStore {
	return &MemoryStore{key: normalizeKey(key)}
}

func (s *MemoryStore) Key() string { return s.key }

// Set stores value in the slot, replacing any previous credential. Never fails.
// An empty value leaves the slot empty.
func (s *MemoryStore) Set(_ context.Context, value string) error {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.value != ""
}

func (s *MemoryStore) Clear(_ context.Context) {
	s.mu.Lock()
	s.value = ""
	s.mu.Unlock()
}
