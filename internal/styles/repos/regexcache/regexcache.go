// Package regexcache compiles and permanently memoizes the anchored
// regular expressions used by URL matching.
//
// Two anchoring passes exist. The strict pass wraps the authored pattern
// in a non-capturing group, `^(?:p)$`, so the whole URL must match the
// whole pattern. The lenient pass anchors the raw pattern, `^p$`, which
// tolerates a class of authored patterns that stop compiling once wrapped.
// The lenient pass is only ever consulted when the strict form failed to
// compile, never when it merely failed to match.
//
// Both compiled matchers and compilation failures are cached forever:
// authored patterns are legitimately malformed at times, and retrying a
// failed compile can never succeed.
package regexcache

import (
	"regexp"
	"sync"
	"time"

	"github.com/calliso/stylecache/internal/styles/common/clock"
	"github.com/calliso/stylecache/internal/styles/services/engine"
)

// WarmBudget is the cumulative wall-clock budget for one warm-up run.
// Compilation beyond the budget is deferred to first use.
const WarmBudget = 100 * time.Millisecond

// key distinguishes the strict and lenient compilations of one pattern.
type key struct {
	pattern string
	lenient bool
}

type Cache struct {
	mu sync.RWMutex
	// compiled holds the anchored matcher, or nil for a permanent
	// compilation failure.
	compiled map[key]*regexp.Regexp
	clk      clock.Clock
}

// New returns an empty regex matcher cache. A nil clock defaults to the
// real clock.
func New(clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Cache{
		compiled: make(map[key]*regexp.Regexp),
		clk:      clk,
	}
}

// Matches reports whether the pattern matches the URL. In strict mode only
// the strict anchoring pass runs. Otherwise the lenient pass is attempted
// when, and only when, the strict pattern failed to compile. An invalid
// pattern is never an error: it simply does not match.
func (c *Cache) Matches(pattern, url string, strict bool) bool {
	re := c.get(pattern, false)
	if re != nil {
		return re.MatchString(url)
	}
	if strict {
		return false
	}
	re = c.get(pattern, true)
	return re != nil && re.MatchString(url)
}

// get returns the cached matcher for (pattern, lenient), compiling on first
// use. nil means the pattern does not compile in that flavor.
func (c *Cache) get(pattern string, lenient bool) *regexp.Regexp {
	k := key{pattern: pattern, lenient: lenient}

	c.mu.RLock()
	re, found := c.compiled[k]
	c.mu.RUnlock()
	if found {
		return re
	}

	re, _ = regexp.Compile(anchor(pattern, lenient))

	c.mu.Lock()
	// A concurrent compile of the same key yields an equivalent matcher,
	// so last-write-wins is fine.
	c.compiled[k] = re
	c.mu.Unlock()
	return re
}

// anchor produces the anchored source for one flavor of a pattern.
func anchor(pattern string, lenient bool) string {
	if lenient {
		return "^" + pattern + "$"
	}
	return "^(?:" + pattern + ")$"
}

// Warm precompiles the strict flavor of the given patterns until the
// deadline passes. It returns how many patterns were processed this call;
// done is false when the budget ran out first. Already-cached patterns
// cost nothing and do not consume the budget check's attention.
func (c *Cache) Warm(patterns []string, deadline time.Time) (processed int, done bool) {
	for _, p := range patterns {
		if c.clk.Now().After(deadline) {
			return processed, false
		}
		c.get(p, false)
		processed++
	}
	return processed, true
}

// Len returns the number of cached compilations, counting failures.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.compiled)
}

// Purge clears all cached compilations.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compiled = make(map[key]*regexp.Regexp)
}

var _ engine.RegexMatcher = (*Cache)(nil)
