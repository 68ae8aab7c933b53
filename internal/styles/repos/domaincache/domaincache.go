// Package domaincache memoizes URL -> domain-suffix decompositions.
//
// Replacement is FIFO, not LRU: the cache holds the most recently inserted
// URLs and a hit does not change an entry's position.
package domaincache

import (
	"sync"

	"github.com/calliso/stylecache/internal/styles/common/urlutil"
	"github.com/calliso/stylecache/internal/styles/services/engine"
)

// DefaultSize bounds the cache to the 100 most recently inserted URLs.
const DefaultSize = 100

type fifoCache struct {
	mu      sync.Mutex
	entries map[string][]string
	order   []string // insertion order, oldest first
	size    int
	hits    uint64
	misses  uint64
}

// New returns a FIFO-bounded decomposition cache. size <= 0 selects
// DefaultSize.
func New(size int) *fifoCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &fifoCache{
		entries: make(map[string][]string, size),
		order:   make([]string, 0, size),
		size:    size,
	}
}

// Decompose returns the ordered decreasing-specificity domain suffixes for
// the URL's host, caching the result. Callers must not mutate the returned
// slice.
func (c *fifoCache) Decompose(rawURL string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if suffixes, found := c.entries[rawURL]; found {
		c.hits++
		return suffixes
	}
	c.misses++

	suffixes := urlutil.DecomposeURL(rawURL)
	if len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[rawURL] = suffixes
	c.order = append(c.order, rawURL)
	return suffixes
}

// Len returns the number of cached decompositions.
func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge clears all entries.
func (c *fifoCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]string, c.size)
	c.order = c.order[:0]
}

// Stats returns cumulative hit/miss counters.
func (c *fifoCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

var _ engine.DomainDecomposer = (*fifoCache)(nil)
