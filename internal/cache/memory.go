package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	value   []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryProvider is an LRU-bounded in-process cache. Entries carry their own
// deadline so different TTLs can coexist in one cache.
type MemoryProvider struct {
	mu  sync.Mutex
	lru *lru.Cache[string, entry]
	now func() time.Time
}

// NewMemoryProvider creates a cache holding up to size entries.
func NewMemoryProvider(size int) (*MemoryProvider, error) {
	if size <= 0 {
		size = 256
	}
	inner, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryProvider{lru: inner, now: time.Now}, nil
}

// Get returns the cached value or ErrCacheMiss. Expired entries are evicted
// on read.
func (m *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if e.expired(m.now()) {
		m.lru.Remove(key)
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

// Set stores the value. A non-positive ttl stores it without expiry.
func (m *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lru.Add(key, m.newEntry(value, ttl))
	return nil
}

// SetNX stores the value only when the key is absent or expired.
func (m *MemoryProvider) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.lru.Get(key); ok && !e.expired(m.now()) {
		return false, nil
	}
	m.lru.Add(key, m.newEntry(value, ttl))
	return true, nil
}

// Del removes the key.
func (m *MemoryProvider) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lru.Remove(key)
	return nil
}

// Close drops all entries.
func (m *MemoryProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lru.Purge()
	return nil
}

func (m *MemoryProvider) newEntry(value []byte, ttl time.Duration) entry {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	return e
}
