package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL matches the lifetime the desktop client gives loaded reference data.
const DefaultTTL = 30 * time.Minute

// Forever is the ttl for entries that live as long as the cache.
const Forever time.Duration = -1

// Cache is the key-value store the parsers memoize dictionaries and lookup
// tables in. Implementations must be safe for concurrent use.
type Cache interface {
	TryGet(key string) (any, bool)
	// Set stores value under key. ttl 0 means the implementation default and
	// a negative ttl means no expiry. A nil value is ignored.
	Set(key string, value any, ttl time.Duration)
}

// onceLoader is implemented by caches that can collapse concurrent loads of
// the same key into a single call.
type onceLoader interface {
	loadOnce(key string, fn func() (any, error)) (any, error)
}

type entry struct {
	value   any
	expires time.Time // zero = never
}

// Memory is an in-process Cache with per-entry expiry.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
	group      singleflight.Group
}

// NewMemory creates an empty cache. defaultTTL <= 0 keeps entries forever.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (m *Memory) TryGet(key string) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		// re-check: another goroutine may have refreshed the entry
		if cur, ok := m.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(key string, value any, ttl time.Duration) {
	if value == nil {
		return
	}
	if ttl == 0 {
		ttl = m.defaultTTL
	}
	e := entry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

// Remove drops a single key.
func (m *Memory) Remove(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Clear drops every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) loadOnce(key string, fn func() (any, error)) (any, error) {
	v, err, _ := m.group.Do(key, fn)
	return v, err
}

// Get is a typed TryGet. A stored value of another type reports a miss.
func Get[T any](c Cache, key string) (T, bool) {
	var zero T
	v, ok := c.TryGet(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetOrLoad returns the cached value for key, calling load to populate it on
// a miss. When c supports it, concurrent misses for one key share a single
// load call; otherwise the load may run more than once and the last Set wins.
func GetOrLoad[T any](c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, ok := Get[T](c, key); ok {
		return v, nil
	}

	fill := func() (any, error) {
		// a concurrent loader may have finished between the miss and here
		if v, ok := Get[T](c, key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return v, err
		}
		c.Set(key, v, ttl)
		return v, nil
	}

	var (
		v   any
		err error
	)
	if ol, ok := c.(onceLoader); ok {
		v, err = ol.loadOnce(key, fill)
	} else {
		v, err = fill()
	}
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}
