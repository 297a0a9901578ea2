package storage

import (
	"sync"
	"time"
)

type memoryEntry struct {
	status    string
	expiresAt time.Time
}

// memoryStore keeps statuses for the life of the process, bounded by the TTL.
type memoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	statusTTL time.Duration
	now       func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		entries:   make(map[string]memoryEntry),
		statusTTL: opts.StatusTTL,
		now:       time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) LastStatus(id string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok || !e.expiresAt.After(m.now()) {
		return "", false, nil
	}
	return e.status, true, nil
}

func (m *memoryStore) RecordStatus(id, status string) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if !e.expiresAt.After(now) {
			delete(m.entries, key)
		}
	}
	m.entries[id] = memoryEntry{status: status, expiresAt: now.Add(m.statusTTL)}
	return nil
}
