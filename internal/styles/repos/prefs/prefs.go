// Package prefs provides the process-wide preference store consulted by
// the engine. Only boolean preferences exist today; the engine reads the
// disable-all flag on every map-output query, so values are never cached
// on its side.
package prefs

import (
	"sync"

	"github.com/calliso/stylecache/internal/styles/services/engine"
)

type Store struct {
	mu     sync.RWMutex
	values map[string]bool
}

// New returns an empty preference store.
func New() *Store {
	return &Store{values: make(map[string]bool)}
}

// Get returns the preference value, or def when the key was never set.
func (s *Store) Get(key string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, found := s.values[key]; found {
		return v
	}
	return def
}

// Set stores a preference value.
func (s *Store) Set(key string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

var _ engine.PrefStore = (*Store)(nil)
