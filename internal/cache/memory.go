package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is an in-process Backend. Entries live until the Cache
// purges them on an expired lookup; the ttl argument is ignored since
// expiry is enforced by the Cache layer.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]*Entry)}
}

// Get returns the entry for fingerprint, or nil.
func (m *MemoryBackend) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[fingerprint], nil
}

// Set stores an entry.
func (m *MemoryBackend) Set(ctx context.Context, entry *Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Fingerprint] = entry
	return nil
}

// Delete removes an entry.
func (m *MemoryBackend) Delete(ctx context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, fingerprint)
	return nil
}

// Len returns the number of physically present entries, expired or not.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
