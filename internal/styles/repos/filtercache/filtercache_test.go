package filtercache

import (
	"fmt"
	"testing"
	"time"

	"github.com/calliso/stylecache/internal/styles/common/clock"
)

func TestGetMissThenHit(t *testing.T) {
	c := New[string, int](10, time.Second, nil)
	if _, found := c.Get("k"); found {
		t.Fatal("expected miss on empty cache")
	}
	c.Put("k", 42)
	got, found := c.Get("k")
	if !found || got != 42 {
		t.Fatalf("expected hit with 42, got (%d, %v)", got, found)
	}
	hits, misses, _ := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit / 1 miss, got %d / %d", hits, misses)
	}
}

func TestHitRefreshesCounterAndTimestamp(t *testing.T) {
	clk := clock.NewMockClock(time.Unix(1000, 0))
	c := New[string, int](10, time.Second, clk)
	c.Put("k", 1)

	prevHits, prevTime, _ := c.hitCount("k")
	for i := 0; i < 3; i++ {
		clk.Advance(time.Second)
		c.Get("k")
		hits, last, found := c.hitCount("k")
		if !found {
			t.Fatal("entry vanished")
		}
		if hits != prevHits+1 {
			t.Errorf("expected hits %d, got %d", prevHits+1, hits)
		}
		if last.Before(prevTime) {
			t.Error("last-hit timestamp went backwards")
		}
		prevHits, prevTime = hits, last
	}
}

func TestEvictionDropsTenthPlusOne(t *testing.T) {
	clk := clock.NewMockClock(time.Unix(1000, 0))
	c := New[int, int](20, time.Second, clk)
	for i := 0; i < 20; i++ {
		c.Put(i, i)
		clk.Advance(time.Millisecond)
	}
	c.evict()
	if c.Len() != 17 { // 20/10+1 = 3 dropped
		t.Errorf("expected 17 entries after eviction, got %d", c.Len())
	}
	_, _, evictions := c.Stats()
	if evictions != 3 {
		t.Errorf("expected 3 evictions, got %d", evictions)
	}
}

func TestEvictionKeepsHotEntries(t *testing.T) {
	clk := clock.NewMockClock(time.Unix(1000, 0))
	c := New[int, int](100, time.Second, clk)
	for i := 0; i < 100; i++ {
		c.Put(i, i)
	}
	// Make entry 0 (oldest by insertion) hot and recent.
	clk.Advance(time.Minute)
	for i := 0; i < 50; i++ {
		c.Get(0)
	}
	c.evict()
	if _, found := c.Get(0); !found {
		t.Error("expected hot entry to survive eviction")
	}
}

func TestOverflowSchedulesSingleDebouncedPass(t *testing.T) {
	c := New[int, int](10, 10*time.Millisecond, nil)
	for i := 0; i < 12; i++ {
		c.Put(i, i) // overflows twice inside the debounce window
	}
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()
	if !pending {
		t.Fatal("expected an eviction pass to be pending")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		c.mu.Lock()
		pending = c.pending
		n := len(c.entries)
		c.mu.Unlock()
		if !pending {
			// 12/10+1 = 2 dropped, exactly once per debounce window.
			if n != 10 {
				t.Errorf("expected 10 entries after single pass, got %d", n)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("eviction pass never ran")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestClear(t *testing.T) {
	c := New[string, int](10, time.Second, nil)
	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after clear, got %d", c.Len())
	}
}

func TestDefaults(t *testing.T) {
	c := New[string, int](0, 0, nil)
	if c.cap != DefaultCap || c.delay != DefaultDelay {
		t.Errorf("expected defaults %d/%v, got %d/%v", DefaultCap, DefaultDelay, c.cap, c.delay)
	}
}
