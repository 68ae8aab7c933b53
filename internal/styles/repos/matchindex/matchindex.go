// Package matchindex maintains a Bloom filter over every domain token
// listed by any style section. A query's decomposed host suffixes are
// probed against it once, letting the matcher skip per-section domain
// intersection when no style can possibly match by domain. False positives
// only cost the full check; there are no false negatives.
//
// Bloom filters do not support deletion, so the index is rebuilt wholesale
// on load and on every reconciliation.
package matchindex

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/calliso/stylecache/internal/styles/domain"
	"github.com/calliso/stylecache/internal/styles/services/engine"
)

// DefaultFPRate is the target false-positive rate for a rebuilt index.
const DefaultFPRate = 0.01

type Index struct {
	mu     sync.RWMutex
	bf     *bitsbloom.BloomFilter
	tokens uint64
	fpRate float64
}

// New returns an empty index. fpRate outside (0,1) selects DefaultFPRate.
func New(fpRate float64) *Index {
	if !(fpRate > 0 && fpRate < 1) {
		fpRate = DefaultFPRate
	}
	return &Index{fpRate: fpRate}
}

// Rebuild replaces the filter with one sized for the styles' current
// domain tokens.
func (ix *Index) Rebuild(styles []*domain.Style) {
	var n uint64
	for _, st := range styles {
		for _, sec := range st.Sections {
			n += uint64(len(sec.Domains))
		}
	}
	m, k := size(n, ix.fpRate)
	bf := bitsbloom.New(uint(m), uint(k))
	for _, st := range styles {
		for _, sec := range st.Sections {
			for _, d := range sec.Domains {
				bf.Add([]byte(d))
			}
		}
	}

	ix.mu.Lock()
	ix.bf = bf
	ix.tokens = n
	ix.mu.Unlock()
}

// MightContainAny reports whether any of the suffixes may be listed as a
// domain condition by some style. Before the first Rebuild it returns true
// so matching stays authoritative.
func (ix *Index) MightContainAny(suffixes []string) bool {
	ix.mu.RLock()
	bf := ix.bf
	ix.mu.RUnlock()
	if bf == nil {
		return true
	}
	for _, s := range suffixes {
		if bf.Test([]byte(s)) {
			return true
		}
	}
	return false
}

// Tokens returns the number of domain tokens indexed by the last rebuild.
func (ix *Index) Tokens() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tokens
}

var _ engine.DomainIndex = (*Index)(nil)
