package engine

import (
	"context"
	"time"

	"github.com/calliso/stylecache/internal/styles/domain"
)

// StyleStore is the durable storage collaborator. GetAll is expected to
// return styles in initial insertion order; the engine preserves that
// order but does not otherwise rely on it.
type StyleStore interface {
	GetAll(ctx context.Context) ([]*domain.Style, error)
	Get(ctx context.Context, id int64) (*domain.Style, bool, error)
	Put(ctx context.Context, st *domain.Style) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// PrefStore exposes process-wide preferences. The engine only reads the
// disable-all flag, at map-output time, and never caches the value.
type PrefStore interface {
	Get(key string, def bool) bool
}

// Notifier receives structural change events after successful writes.
// The engine does not depend on delivery.
type Notifier interface {
	Broadcast(ev domain.Event)
}

// RegexMatcher evaluates authored URL patterns with permanent
// compilation memoization.
type RegexMatcher interface {
	Matches(pattern, url string, strict bool) bool
	Warm(patterns []string, deadline time.Time) (processed int, done bool)
}

// DomainDecomposer maps a URL to its host's ordered suffix decomposition.
type DomainDecomposer interface {
	Decompose(rawURL string) []string
}

// EmptinessChecker decides whether a section's code block is semantically
// empty.
type EmptinessChecker interface {
	IsEmpty(code string) bool
}

// DomainIndex is the negative filter over all listed domain conditions.
type DomainIndex interface {
	Rebuild(styles []*domain.Style)
	MightContainAny(suffixes []string) bool
}
