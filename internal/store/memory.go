// ABOUTME: In-memory Store implementation
// ABOUTME: Backs the "memory" backend and lets tests run without SQLite

package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Key][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[Key][]byte),
	}
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// Get returns a copy of the stored document.
func (m *MemoryStore) Get(ctx context.Context, key Key) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrAbsent
	}
	return cloneBytes(v), nil
}

// Put stores a copy of value under key.
func (m *MemoryStore) Put(ctx context.Context, key Key, value []byte) error {
	if err := checkWrite(key, value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = cloneBytes(value)
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(ctx context.Context, key Key) error {
	if err := checkKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// PutMany stores every value under a single lock acquisition.
func (m *MemoryStore) PutMany(ctx context.Context, values map[Key][]byte) error {
	if err := checkBatch(values); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		m.values[k] = cloneBytes(v)
	}
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
