package emptiness

import (
	"strings"
	"testing"
)

func mustNew(t *testing.T) *Cache {
	t.Helper()
	c, err := New(0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestIsEmpty(t *testing.T) {
	c := mustNew(t)
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"empty string", "", true},
		{"whitespace only", "  \n\t ", true},
		{"comment only", "/* nothing here */", true},
		{"commented namespace", "/* @namespace url(http://ns); */", true},
		{"bare namespace", "@namespace url(http://www.w3.org/1999/xhtml);", true},
		{"prefixed namespace", "@namespace svg url(http://www.w3.org/2000/svg);", true},
		{"two namespaces", "@namespace url(http://a); @namespace svg url(http://b);", true},
		{"namespace without semicolon", "@namespace url(http://a)", true},
		{"real rule", ".x{color:red}", false},
		{"rule after namespace", "@namespace url(http://a); .x{color:red}", false},
		{"rule inside comment noise", "/* c */ .x{} /* d */", false},
		{"namespace-like but not url", "@namespace foo bar;", false},
	}
	for _, tt := range tests {
		if got := c.IsEmpty(tt.code); got != tt.want {
			t.Errorf("%s: IsEmpty(%q) = %v; want %v", tt.name, tt.code, got, tt.want)
		}
	}
}

func TestMemoization(t *testing.T) {
	c := mustNew(t)
	c.IsEmpty(".x{}")
	c.IsEmpty("")
	if c.Len() != 2 {
		t.Errorf("expected 2 memoized results, got %d", c.Len())
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after purge, got %d", c.Len())
	}
}

func TestLongCodeBypassesCache(t *testing.T) {
	c := mustNew(t)
	long := ".x{}" + strings.Repeat(" ", BypassLength)
	if c.IsEmpty(long) {
		t.Error("expected long rule code to be non-empty")
	}
	if c.Len() != 0 {
		t.Errorf("expected long code to bypass the cache, got %d entries", c.Len())
	}
}

func TestBoundedSize(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.IsEmpty("a{}")
	c.IsEmpty("b{}")
	c.IsEmpty("c{}")
	if c.Len() != 2 {
		t.Errorf("expected LRU bound of 2, got %d", c.Len())
	}
}
