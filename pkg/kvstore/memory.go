package kvstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory storage. Safe for concurrent
// use. State is lost when the process exits; use FileStore or RedisStore
// when session state must survive restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates a new in-memory key-value store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

// Get retrieves the value for a key.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.values[key]
	if !exists {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores a value under a key.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// Remove deletes a key.
func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

type flashEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryFlash implements Flash using in-memory storage with per-key TTLs.
type MemoryFlash struct {
	mu      sync.Mutex
	entries map[string]flashEntry
}

// NewMemoryFlash creates a new in-memory read-once store.
func NewMemoryFlash() *MemoryFlash {
	return &MemoryFlash{
		entries: make(map[string]flashEntry),
	}
}

// Put stores a value with a TTL.
func (f *MemoryFlash) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = flashEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Take retrieves and removes the value in one step.
func (f *MemoryFlash) Take(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entry, exists := f.entries[key]
	if !exists {
		return "", ErrKeyNotFound
	}
	// Cleared unconditionally, even when expired
	delete(f.entries, key)

	if time.Now().After(entry.expiresAt) {
		return "", ErrKeyNotFound
	}
	return entry.value, nil
}

// Compile-time interface assertions
var (
	_ Store = (*MemoryStore)(nil)
	_ Flash = (*MemoryFlash)(nil)
)
