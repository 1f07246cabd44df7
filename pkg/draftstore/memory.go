package draftstore

import (
	"context"
	"sync"
)

// MemoryStore keeps drafts in process memory
type MemoryStore struct {
	drafts map[string][]byte
	mu     sync.RWMutex

	// MaxBytes limits the size of a single value when > 0
	MaxBytes int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string][]byte)}
}

// Get returns a copy of the draft stored under key
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.drafts[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put stores a copy of value under key
func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if m.MaxBytes > 0 && len(value) > m.MaxBytes {
		return ErrQuotaExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drafts[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the draft for key; deleting a missing key is not an error
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.drafts, key)
	return nil
}

// Has returns true if a draft exists for key
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.drafts[key]
	return ok
}

// Keys returns the stored keys in no particular order
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.drafts))
	for k := range m.drafts {
		keys = append(keys, k)
	}
	return keys
}
