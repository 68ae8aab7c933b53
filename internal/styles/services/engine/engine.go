// Package engine is the in-memory style cache and matching core. It owns
// the authoritative style list, coordinates the single allowed bulk load
// from storage, serves filter queries through the weighted filter cache,
// and applies mutations through the change reconciler.
//
// At most one bulk load is ever in flight: concurrent callers arriving
// during a load wait on it and are then answered against the fully
// populated cache. A failed load is surfaced to every waiting caller and
// never cached, so a later query simply retries.
package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/calliso/stylecache/internal/styles/common/clock"
	"github.com/calliso/stylecache/internal/styles/common/log"
	"github.com/calliso/stylecache/internal/styles/common/urlutil"
	"github.com/calliso/stylecache/internal/styles/domain"
	"github.com/calliso/stylecache/internal/styles/repos/filtercache"
)

// PrefDisableAll is the preference key that switches every style off
// globally. Read at call time on map-output queries, never cached.
const PrefDisableAll = "disableAll"

// warmBudget is the cumulative wall-clock budget for post-load regex
// warm-up. Whatever it does not cover compiles lazily on first use.
const warmBudget = 100 * time.Millisecond

// Result is a query's answer. List queries fill Styles; map queries fill
// Sections and DisableAll. Returned slices and maps are shared with the
// cache: callers must not mutate them.
type Result struct {
	Styles     []*domain.Style
	Sections   map[int64][]domain.Section
	DisableAll bool
}

type Engine struct {
	store     StyleStore
	prefs     PrefStore
	notifier  Notifier
	regex     RegexMatcher
	domains   DomainDecomposer
	emptiness EmptinessChecker
	index     DomainIndex
	filters   *filtercache.Cache[domain.CriteriaKey, Result]
	clk       clock.Clock
	logger    log.Logger
	ownScheme string

	mu     sync.RWMutex
	loaded bool
	styles []*domain.Style
	byID   map[int64]*domain.Style

	loadGroup singleflight.Group
}

// Options carries the engine's collaborators. Store, Regex, Domains,
// Emptiness, and Index are required; the rest default to safe
// implementations.
type Options struct {
	Store     StyleStore
	Prefs     PrefStore
	Notifier  Notifier
	Regex     RegexMatcher
	Domains   DomainDecomposer
	Emptiness EmptinessChecker
	Index     DomainIndex
	Filters   *filtercache.Cache[domain.CriteriaKey, Result]
	Clock     clock.Clock
	Logger    log.Logger
	OwnScheme string
}

// New constructs an Engine. No load happens until the first query.
func New(opts Options) *Engine {
	if opts.Prefs == nil {
		opts.Prefs = nopPrefs{}
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Filters == nil {
		opts.Filters = filtercache.New[domain.CriteriaKey, Result](0, 0, opts.Clock)
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Engine{
		store:     opts.Store,
		prefs:     opts.Prefs,
		notifier:  opts.Notifier,
		regex:     opts.Regex,
		domains:   opts.Domains,
		emptiness: opts.Emptiness,
		index:     opts.Index,
		filters:   opts.Filters,
		clk:       opts.Clock,
		logger:    opts.Logger,
		ownScheme: opts.OwnScheme,
	}
}

// nopNotifier discards events when no notifier is wired up.
type nopNotifier struct{}

func (nopNotifier) Broadcast(domain.Event) {}

// nopPrefs answers every preference with its default.
type nopPrefs struct{}

func (nopPrefs) Get(_ string, def bool) bool { return def }

// Query answers a filter query, loading the style collection first if
// needed. Semantics:
//   - the platform web-store page matches nothing, bypassing all caches;
//   - a filterless non-map query returns the live style list by
//     reference, uncached;
//   - everything else is served from the filter cache, computed on miss;
//   - map output carries the disable-all preference read at call time.
func (e *Engine) Query(ctx context.Context, c domain.Criteria) (Result, error) {
	if c.MatchURL != "" && urlutil.IsStorePage(c.MatchURL) {
		return e.finish(emptyResult(c), c), nil
	}

	if err := e.ensureLoaded(ctx); err != nil {
		return Result{}, err
	}

	if !c.HasFilters() && !c.AsMap {
		e.mu.RLock()
		styles := e.styles
		e.mu.RUnlock()
		return Result{Styles: styles}, nil
	}

	key := c.Key()
	if cached, found := e.filters.Get(key); found {
		return e.finish(cached, c), nil
	}

	res := e.compute(c)
	e.filters.Put(key, res)
	return e.finish(res, c), nil
}

// ensureLoaded performs the coordinated bulk load. All concurrent callers
// share one storage fetch; an error is returned to each of them and the
// next call starts a fresh attempt.
func (e *Engine) ensureLoaded(ctx context.Context) error {
	e.mu.RLock()
	loaded := e.loaded
	e.mu.RUnlock()
	if loaded {
		return nil
	}

	// The fetch must outlive any single caller: a canceled first caller
	// must not poison the load its queued peers are waiting on.
	loadCtx := context.WithoutCancel(ctx)
	_, err, _ := e.loadGroup.Do("load", func() (any, error) {
		e.mu.RLock()
		already := e.loaded
		e.mu.RUnlock()
		if already {
			return nil, nil
		}

		styles, err := e.store.GetAll(loadCtx)
		if err != nil {
			e.logger.Error(map[string]any{"error": err}, "bulk style load failed")
			return nil, err
		}

		byID := make(map[int64]*domain.Style, len(styles))
		for _, st := range styles {
			byID[st.ID] = st
		}

		e.mu.Lock()
		e.styles = styles
		e.byID = byID
		e.loaded = true
		e.mu.Unlock()

		e.index.Rebuild(styles)
		e.warmRegexps(styles)

		e.logger.Info(map[string]any{"styles": len(styles)}, "style cache loaded")
		return nil, nil
	})
	return err
}

// warmRegexps precompiles the loaded styles' regex conditions under one
// cumulative wall-clock budget. Whatever the budget does not cover is
// compiled lazily on first use.
func (e *Engine) warmRegexps(styles []*domain.Style) {
	deadline := e.clk.Now().Add(warmBudget)
	warmed := 0
	for _, st := range styles {
		var patterns []string
		for _, sec := range st.Sections {
			patterns = append(patterns, sec.Regexps...)
		}
		processed, done := e.regex.Warm(patterns, deadline)
		warmed += processed
		if !done {
			e.logger.Debug(map[string]any{"warmed": warmed}, "regex warm-up budget exhausted")
			return
		}
	}
}

// compute runs the filtering pass for a cache miss.
func (e *Engine) compute(c domain.Criteria) Result {
	e.mu.RLock()
	defer e.mu.RUnlock()

	res := emptyResult(c)

	candidates := e.styles
	if c.ID != 0 {
		// Unknown ids yield an empty result, never an error: callers may
		// hold stale references.
		st, found := e.byID[c.ID]
		if !found {
			return res
		}
		candidates = []*domain.Style{st}
	}

	for _, st := range candidates {
		if c.Enabled != nil && st.Enabled != *c.Enabled {
			continue
		}
		if c.URL != "" && st.UpdateURL != c.URL {
			continue
		}

		sections := st.Sections
		if c.MatchURL != "" {
			sections = e.applicableSections(st, c.MatchURL, c.StrictRegex, !c.AsMap)
			if len(sections) == 0 {
				continue
			}
		}

		if c.AsMap {
			res.Sections[st.ID] = sections
		} else {
			res.Styles = append(res.Styles, st)
		}
	}
	return res
}

// finish attaches call-time state to a (possibly cached) result. The
// disable-all preference can change independently of styles, so it is
// read fresh on every map-output query.
func (e *Engine) finish(res Result, c domain.Criteria) Result {
	if c.AsMap {
		res.DisableAll = e.prefs.Get(PrefDisableAll, false)
	}
	return res
}

func emptyResult(c domain.Criteria) Result {
	var res Result
	if c.AsMap {
		res.Sections = make(map[int64][]domain.Section)
	}
	return res
}

// InvalidateAll drops the record cache and every derived cache, forcing a
// full reload on the next query. Always safe: a clear only costs
// recomputation.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	e.loaded = false
	e.styles = nil
	e.byID = nil
	e.mu.Unlock()
	e.filters.Clear()
	e.logger.Debug(nil, "style cache invalidated")
}

// Loaded reports whether the bulk load has completed.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// Close tears the engine down. The store is owned by the caller and is
// not closed here.
func (e *Engine) Close() {
	e.InvalidateAll()
}
