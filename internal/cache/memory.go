package cache

import (
	"context"
	"sync"
	"time"
)

// sweepEvery controls how many writes happen between expired-entry sweeps.
const sweepEvery = 1024

type memoryEntry struct {
	value     []byte
	counter   int64
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Counters are only consistent within one process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
	writes  int
}

// NewMemoryStore creates an empty MemoryStore. A nil clock falls back to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     now,
	}
}

// Get returns a copy of the stored value.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(key)
	if !ok || entry.value == nil {
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value for ttl.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	m.entries[key] = &memoryEntry{value: stored, expiresAt: m.now().Add(ttl)}
	m.afterWrite()
	return nil
}

// IncrementWindow increments the counter under key, starting a new window when none is live.
func (m *MemoryStore) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(key)
	if !ok {
		entry = &memoryEntry{expiresAt: m.now().Add(window)}
		m.entries[key] = entry
	}
	entry.counter++
	m.afterWrite()
	return entry.counter, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close drops every entry.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*memoryEntry)
	return nil
}

// Len returns the number of live entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	return len(m.entries)
}

// live returns the entry for key when it has not expired. Caller holds mu.
func (m *MemoryStore) live(key string) (*memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return entry, true
}

// afterWrite sweeps expired entries periodically. Caller holds mu.
func (m *MemoryStore) afterWrite() {
	m.writes++
	if m.writes%sweepEvery == 0 {
		m.sweep()
	}
}

// sweep removes expired entries. Caller holds mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}
