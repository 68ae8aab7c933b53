package domaincache

import (
	"fmt"
	"reflect"
	"testing"
)

func TestDecomposeCachesResult(t *testing.T) {
	c := New(10)
	want := []string{"a.b.example.com", "b.example.com", "example.com", "com"}

	got := c.Decompose("http://a.b.example.com/x")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Decompose = %v; want %v", got, want)
	}
	// Second call must be a hit returning the same slice.
	again := c.Decompose("http://a.b.example.com/x")
	if len(again) > 0 && len(got) > 0 && &again[0] != &got[0] {
		t.Error("expected cached slice to be returned by reference")
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit / 1 miss, got %d / %d", hits, misses)
	}
}

func TestFIFOEviction(t *testing.T) {
	c := New(3)
	for i := 0; i < 3; i++ {
		c.Decompose(fmt.Sprintf("http://host%d.com/", i))
	}
	// Touch the oldest entry; FIFO must NOT promote it.
	c.Decompose("http://host0.com/")

	// Inserting a fourth distinct key evicts host0 (oldest insertion).
	c.Decompose("http://host3.com/")
	if c.Len() != 3 {
		t.Fatalf("expected len 3, got %d", c.Len())
	}
	_, missesBefore := c.Stats()
	c.Decompose("http://host0.com/")
	_, missesAfter := c.Stats()
	if missesAfter != missesBefore+1 {
		t.Error("expected host0 to have been evicted despite recent hit")
	}
}

func TestPurge(t *testing.T) {
	c := New(0)
	c.Decompose("http://x.com/")
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after purge, got %d", c.Len())
	}
}

func TestDefaultSize(t *testing.T) {
	c := New(-1)
	if c.size != DefaultSize {
		t.Errorf("expected default size %d, got %d", DefaultSize, c.size)
	}
}
