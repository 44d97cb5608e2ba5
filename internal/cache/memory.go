package cache

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in process memory. This is the default for
// a short-lived screener session.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored snapshot, if any.
func (s *MemoryStore) Load(_ context.Context) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, false
	}
	return s.snap, true
}

// Save replaces the stored snapshot wholesale. A nil snapshot clears it.
func (s *MemoryStore) Save(_ context.Context, snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}
