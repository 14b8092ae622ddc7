package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// sweepInterval is the minimum time between scans for expired keys.
const sweepInterval = time.Minute

// MemoryStore keeps entries in process. Expired keys are swept on writes, at
// most once per sweepInterval.
type MemoryStore struct {
	mu        sync.Mutex
	items     map[string]memoryItem
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (m *MemoryStore) Reserve(_ context.Context, key string, entry Entry, ttl time.Duration) (*Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	if item, ok := m.items[key]; ok && now.Before(item.expiresAt) {
		existing := item.entry
		return &existing, false, nil
	}
	m.items[key] = memoryItem{entry: entry, expiresAt: now.Add(ttl)}
	return nil, true, nil
}

func (m *MemoryStore) Complete(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	m.items[key] = memoryItem{entry: entry, expiresAt: now.Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Len reports the number of stored keys, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// sweep drops expired keys. Callers hold m.mu.
func (m *MemoryStore) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for key, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, key)
		}
	}
}
