// Package filtercache memoizes filter-query results under canonical
// criteria keys with a weighted, debounced eviction policy.
//
// The cache is capped at a hard entry count. The first overflow schedules
// one eviction pass after a short idle delay; further overflows inside the
// window do not schedule more. The pass scores every entry by a blend of
// insertion age, hit count, and recency of last hit, then drops the
// lowest-scored tenth (plus one). Entries that are both frequently and
// recently used survive.
package filtercache

import (
	"sort"
	"sync"
	"time"

	"github.com/calliso/stylecache/internal/styles/common/clock"
)

const (
	// DefaultCap is the hard entry limit before an eviction pass is due.
	DefaultCap = 10000
	// DefaultDelay is the debounce window between overflow and eviction.
	DefaultDelay = time.Second

	weightAge     = 5.0
	weightHits    = 0.25
	weightRecency = 10.0
)

type entry[V any] struct {
	result  V
	hits    uint64
	lastHit time.Time
	seq     uint64 // insertion order, monotonically increasing
}

// Cache is a weighted-eviction memoization cache. K is the canonical
// criteria key; V the stored result. All methods are safe for concurrent
// use; the deferred eviction pass takes the same lock as lookups.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	seq     uint64
	cap     int
	delay   time.Duration
	clk     clock.Clock
	pending bool

	hits      uint64
	misses    uint64
	evictions uint64
}

// New returns a filter cache with the given capacity and debounce delay.
// Non-positive arguments select the defaults. A nil clock defaults to the
// real clock.
func New[K comparable, V any](capacity int, delay time.Duration, clk clock.Clock) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		cap:     capacity,
		delay:   delay,
		clk:     clk,
	}
}

// Get returns the cached result for the key. On a hit the entry's hit
// counter is incremented and its last-hit time refreshed. The result is
// returned by reference; callers must not mutate it.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, found := c.entries[key]; found {
		e.hits++
		e.lastHit = c.clk.Now()
		c.hits++
		return e.result, true
	}
	c.misses++
	var zero V
	return zero, false
}

// Put stores a freshly computed result with an initial hit count of 1.
// If the cache now exceeds its capacity and no eviction pass is pending,
// one is scheduled after the debounce delay.
func (c *Cache[K, V]) Put(key K, result V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.entries[key] = &entry[V]{
		result:  result,
		hits:    1,
		lastHit: c.clk.Now(),
		seq:     c.seq,
	}
	if len(c.entries) > c.cap && !c.pending {
		c.pending = true
		time.AfterFunc(c.delay, c.evict)
	}
}

// evict runs one deferred eviction pass.
func (c *Cache[K, V]) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	c.evictLocked()
}

// evictLocked scores every entry and deletes the len/10+1 lowest. The age
// term ranks entries by insertion order as a cheap proxy for true age;
// recency of last hit is normalized into [0,1] across the oldest-to-now
// span so one stale burst cannot dominate the blend.
func (c *Cache[K, V]) evictLocked() {
	n := len(c.entries)
	if n == 0 {
		return
	}
	now := c.clk.Now()
	oldest := now
	for _, e := range c.entries {
		if e.lastHit.Before(oldest) {
			oldest = e.lastHit
		}
	}
	span := now.Sub(oldest)

	type scored struct {
		key    K
		weight float64
	}
	byAge := make([]*entry[V], 0, n)
	keys := make(map[*entry[V]]K, n)
	for k, e := range c.entries {
		byAge = append(byAge, e)
		keys[e] = k
	}
	sort.Slice(byAge, func(i, j int) bool { return byAge[i].seq < byAge[j].seq })

	ranked := make([]scored, 0, n)
	for i, e := range byAge {
		w := float64(i) * weightAge / float64(n)
		w += float64(e.hits) * weightHits
		if span > 0 {
			w += float64(e.lastHit.Sub(oldest)) / float64(span) * weightRecency
		}
		ranked = append(ranked, scored{key: keys[e], weight: w})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].weight < ranked[j].weight })

	drop := n/10 + 1
	for _, s := range ranked[:drop] {
		delete(c.entries, s.key)
		c.evictions++
	}
}

// Clear removes every entry. Any pending eviction pass becomes a no-op on
// the rebuilt map.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*entry[V])
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cumulative hit/miss/eviction counters.
func (c *Cache[K, V]) Stats() (hits, misses, evictions uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions
}

// hitCount reports an entry's hit counter and last-hit time; used by tests
// to assert refresh-on-hit behavior.
func (c *Cache[K, V]) hitCount(key K) (uint64, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, found := c.entries[key]; found {
		return e.hits, e.lastHit, true
	}
	return 0, time.Time{}, false
}
