// Package emptiness decides whether a section's code block is semantically
// empty: blank, or nothing but @namespace declarations once CSS comments
// are stripped. A section whose code is empty never applies, even when its
// conditions would otherwise match.
package emptiness

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/calliso/stylecache/internal/styles/services/engine"
)

// BypassLength is the code length at which results stop being memoized.
// Long code blocks are recomputed per call so the cache stays small; the
// check itself is cheap relative to holding kilobytes of key material.
const BypassLength = 1000

// DefaultSize bounds the memoization cache.
const DefaultSize = 512

var (
	commentRe   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	namespaceRe = regexp.MustCompile(`^@namespace(?:\s+[^\s()]+)?\s+url\(http[^)]+\)\s*;?`)
)

type Cache struct {
	lru *lru.Cache[string, bool]
}

// New returns an emptiness cache bounded to size entries. size <= 0
// selects DefaultSize.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, bool](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// IsEmpty reports whether the code block is semantically empty. Results
// for codes shorter than BypassLength are memoized by value.
func (c *Cache) IsEmpty(code string) bool {
	if len(code) >= BypassLength {
		return computeEmpty(code)
	}
	if empty, found := c.lru.Get(code); found {
		return empty
	}
	empty := computeEmpty(code)
	c.lru.Add(code, empty)
	return empty
}

// Len returns the number of memoized results.
func (c *Cache) Len() int { return c.lru.Len() }

// Purge clears all memoized results.
func (c *Cache) Purge() { c.lru.Purge() }

// computeEmpty strips comments, then peels namespace declarations off the
// front until either nothing remains (empty) or real rules appear.
func computeEmpty(code string) bool {
	rest := strings.TrimSpace(commentRe.ReplaceAllString(code, ""))
	for rest != "" {
		m := namespaceRe.FindString(rest)
		if m == "" {
			return false
		}
		rest = strings.TrimSpace(rest[len(m):])
	}
	return true
}

var _ engine.EmptinessChecker = (*Cache)(nil)
