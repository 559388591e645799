// Package store provides the best-effort key-value stores backing state
// persistence. Every operation is already wrapped to never fail the
// caller: a broken store behaves like an empty one.
package store

import "sync"

// Store is an injected key-value capability. Implementations swallow
// underlying storage failures; Read reports absence instead of erroring.
type Store interface {
	Read(key string) (value []byte, ok bool)
	Write(key string, value []byte)
	Remove(key string)
}

// MemStore is the ephemeral, session-scoped store.
type MemStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

func (s *MemStore) Read(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true
}

func (s *MemStore) Write(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
}

func (s *MemStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
