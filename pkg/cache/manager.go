package cache

import (
	"sync"
	"time"
)

// Manager is an in-process TTL cache shared by the resolver and fetcher.
// Entries expire lazily: a Get that finds an expired entry removes it.
// There is no size bound; TTL is the only eviction pressure.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry

	// now is overridden in tests
	now func() time.Time
}

// NewManager creates an empty cache manager.
func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]*CacheEntry),
		now:     time.Now,
	}
}

// Get retrieves a cached value by key.
// Returns false if the key doesn't exist or the entry is expired.
func (m *Manager) Get(key string) (any, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		CacheMisses.Inc()
		return nil, false
	}

	if entry.isExpiredAt(m.now()) {
		m.mu.Lock()
		// Another writer may have replaced the entry since we looked.
		if current, ok := m.entries[key]; ok && current == entry {
			delete(m.entries, key)
			CacheEntries.WithLabelValues("memory").Dec()
			CacheExpirations.Inc()
		}
		m.mu.Unlock()
		CacheMisses.Inc()
		return nil, false
	}

	CacheHits.WithLabelValues("memory").Inc()
	return entry.Value, true
}

// Set stores a value for ttl. A non-positive ttl stores nothing.
// An existing entry for key is replaced.
func (m *Manager) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	entry := &CacheEntry{
		Value:   value,
		Expires: m.now().Add(ttl),
	}

	m.mu.Lock()
	if _, exists := m.entries[key]; !exists {
		CacheEntries.WithLabelValues("memory").Inc()
	}
	m.entries[key] = entry
	m.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones that
// have not been read since expiring.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
