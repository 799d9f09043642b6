package cache

import (
	"sync"
	"time"
)

// Key identifies a cached search result page.
type Key struct {
	Search string
	Page   string
}

type pageEntry[V any] struct {
	value    V
	storedAt time.Time
}

// Pages is the search result cache. Entries are considered fresh within the
// freshness window, but are retained until evicted by capacity so that the
// rate-limit fallback can serve them stale. Eviction is strict FIFO: when
// the capacity is exceeded, the oldest-inserted key is removed regardless of
// how recently it was read.
//
// This store is intentionally not TTL-expiring: an entry past its freshness
// window is still wanted, just not on the primary path.
type Pages[V any] struct {
	mu       sync.RWMutex
	entries  map[Key]pageEntry[V]
	order    []Key // insertion order, oldest first
	freshFor time.Duration
	capacity int
}

func NewPages[V any](freshFor time.Duration, capacity int) *Pages[V] {
	return &Pages[V]{
		entries:  make(map[Key]pageEntry[V]),
		order:    make([]Key, 0, capacity),
		freshFor: freshFor,
		capacity: capacity,
	}
}

// Get retrieves a cached page. The second return reports whether the entry
// exists at all; the third whether it is still within the freshness window.
func (p *Pages[V]) Get(key Key) (V, bool, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[key]
	if !ok {
		var zero V
		return zero, false, false
	}

	return entry.value, true, time.Since(entry.storedAt) < p.freshFor
}

// Put stores a page, replacing any existing entry wholesale. Overwriting an
// existing key refreshes its stored-at time but keeps its insertion-order
// position. When a new key pushes the store over capacity, the
// oldest-inserted entry is evicted.
func (p *Pages[V]) Put(key Key, value V) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, existing := p.entries[key]
	p.entries[key] = pageEntry[V]{value: value, storedAt: time.Now()}

	if existing {
		return
	}

	p.order = append(p.order, key)
	for len(p.entries) > p.capacity {
		oldest := p.order[0]
		p.order = p.order[1:]
		delete(p.entries, oldest)
	}
}

// AnyForSearch returns the first-inserted entry whose key matches the given
// search component, on any page and regardless of freshness. It backs the
// stale fallback used when the upstream rate-limits.
func (p *Pages[V]) AnyForSearch(search string) (V, Key, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, key := range p.order {
		if key.Search != search {
			continue
		}
		if entry, ok := p.entries[key]; ok {
			return entry.value, key, true
		}
	}

	var zero V
	return zero, Key{}, false
}

// Len returns the current number of cached entries.
func (p *Pages[V]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
