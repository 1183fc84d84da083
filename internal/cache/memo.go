// Package cache provides the session-scoped memoization store shared by all
// providers.
package cache

import "sync"

// Memo is a key/value store with no capacity bound and no expiry. It lives
// for one session and is safe for concurrent use.
type Memo[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewMemo creates an empty Memo.
func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{entries: make(map[string]V)}
}

// Set stores value under key, overwriting any previous value.
func (m *Memo[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Has reports whether key is present.
func (m *Memo[V]) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}

// Get returns the value stored under key. The boolean is false, and the value
// is V's zero value, when the key is absent.
func (m *Memo[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Len returns the number of stored entries.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
