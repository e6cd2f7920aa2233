package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/studyplan/core"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultMaxSize = 500
)

var _ core.CacheWithStats = (*SessionCache)(nil)

// Memory is an in-process TTL cache. With Sliding set, every hit
// restarts the entry's TTL.
type Memory[V any] struct {
	entries map[string]*entry[V]
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	sliding bool
	now     func() time.Time

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

func NewMemory[V any](c core.CacheConfig) *Memory[V] {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}

	return &Memory[V]{
		entries: make(map[string]*entry[V]),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		sliding: c.Sliding,
		now:     time.Now,
	}
}

func (m *Memory[V]) Get(key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	e, ok := m.entries[key]
	if !ok {
		atomic.AddInt64(&m.misses, 1)
		return zero, core.ErrCacheNotFound
	}

	now := m.now()
	if now.Sub(e.cachedAt) > m.ttl {
		delete(m.entries, key)
		atomic.AddInt64(&m.evictions, 1)
		atomic.AddInt64(&m.misses, 1)
		return zero, core.ErrCacheNotFound
	}

	if m.sliding {
		e.cachedAt = now
	}
	atomic.AddInt64(&m.hits, 1)
	return e.value, nil
}

func (m *Memory[V]) Set(key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		m.evictOldest()
	}

	m.entries[key] = &entry[V]{value: value, cachedAt: m.now()}
	atomic.AddInt64(&m.sets, 1)
	return nil
}

// evictOldest expects m.mu to be held.
func (m *Memory[V]) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range m.entries {
		if oldestKey == "" || e.cachedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.cachedAt
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
		atomic.AddInt64(&m.evictions, 1)
	}
}

func (m *Memory[V]) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, existed := m.entries[key]; existed {
		delete(m.entries, key)
		atomic.AddInt64(&m.deletes, 1)
	}
	return nil
}

func (m *Memory[V]) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry[V])
	return nil
}

// Prune drops every expired entry and reports how many went.
func (m *Memory[V]) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, e := range m.entries {
		if now.Sub(e.cachedAt) > m.ttl {
			delete(m.entries, k)
			n++
		}
	}
	atomic.AddInt64(&m.evictions, int64(n))
	return n
}

// Values returns a snapshot of every live entry. Hits are not counted and
// sliding entries are not refreshed.
func (m *Memory[V]) Values() []V {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]V, 0, len(m.entries))
	for _, e := range m.entries {
		if now.Sub(e.cachedAt) <= m.ttl {
			out = append(out, e.value)
		}
	}
	return out
}

func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory[V]) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&m.hits),
		Misses:    atomic.LoadInt64(&m.misses),
		Sets:      atomic.LoadInt64(&m.sets),
		Deletes:   atomic.LoadInt64(&m.deletes),
		Evictions: atomic.LoadInt64(&m.evictions),
		Size:      m.Len(),
		TTL:       m.ttl,
	}
}

// SessionCache is the in-memory core.Cache for validated sessions.
type SessionCache = Memory[*core.SessionData]

func NewSessionCache(c core.CacheConfig) *SessionCache {
	return NewMemory[*core.SessionData](c)
}
