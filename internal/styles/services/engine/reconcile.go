package engine

import (
	"context"
	"fmt"

	"github.com/calliso/stylecache/internal/styles/domain"
)

// The change reconciler: every mutation of the loaded style collection
// funnels through OnAdded/OnUpdated/OnDeleted. Each path clears the
// filter cache (any cached result could reference the changed style) and
// rebuilds the domain index. A path that cannot locate the state it
// expects degrades to InvalidateAll rather than risking a partially
// inconsistent cache.

// OnAdded appends a newly stored style to the cache. If the id is already
// present the call is a strict no-op: the notification is an echo of a
// write this process performed itself, and nothing may be invalidated.
func (e *Engine) OnAdded(st *domain.Style) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return
	}
	if _, exists := e.byID[st.ID]; exists {
		e.mu.Unlock()
		return
	}
	e.styles = append(e.styles, st)
	e.byID[st.ID] = st
	styles := e.styles
	e.mu.Unlock()

	e.filters.Clear()
	e.index.Rebuild(styles)
}

// OnUpdated merges the incoming style into the cached one and reports
// whether the sections' matching-relevant structure changed, for the
// benefit of external notification. An update for an unknown id while a
// full record list exists means this cache has drifted; it is invalidated
// wholesale.
func (e *Engine) OnUpdated(st *domain.Style) (codeChanged bool) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return true
	}
	existing, found := e.byID[st.ID]
	if !found {
		e.mu.Unlock()
		e.logger.Warn(map[string]any{"id": st.ID}, "update for unknown style, invalidating cache")
		e.InvalidateAll()
		return true
	}

	equal, ok := domain.SectionsEqual(existing.Sections, st.Sections)
	codeChanged = !(ok && equal)

	existing.Merge(*st)
	styles := e.styles
	e.mu.Unlock()

	e.filters.Clear()
	e.index.Rebuild(styles)
	return codeChanged
}

// OnDeleted removes the style from the cache if present.
func (e *Engine) OnDeleted(id int64) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return
	}
	if _, found := e.byID[id]; found {
		delete(e.byID, id)
		for i, st := range e.styles {
			if st.ID == id {
				e.styles = append(e.styles[:i], e.styles[i+1:]...)
				break
			}
		}
	}
	styles := e.styles
	e.mu.Unlock()

	e.filters.Clear()
	e.index.Rebuild(styles)
}

// Save persists the style, reconciles the in-memory cache, and broadcasts
// the structural change. A zero id stores a new style; the assigned id is
// returned. reason is passed through to subscribers on updates.
func (e *Engine) Save(ctx context.Context, st *domain.Style, reason string) (int64, error) {
	e.mu.RLock()
	_, known := e.byID[st.ID]
	e.mu.RUnlock()

	id, err := e.store.Put(ctx, st)
	if err != nil {
		return 0, fmt.Errorf("storing style: %w", err)
	}
	st.ID = id

	if known {
		codeChanged := e.OnUpdated(st)
		e.notifier.Broadcast(domain.Event{
			Kind:        domain.EventUpdated,
			ID:          id,
			Style:       st,
			CodeChanged: codeChanged,
			Reason:      reason,
		})
	} else {
		e.OnAdded(st)
		e.notifier.Broadcast(domain.Event{Kind: domain.EventAdded, ID: id, Style: st})
	}
	return id, nil
}

// Delete removes the style from storage, reconciles, and broadcasts.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	if err := e.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting style %d: %w", id, err)
	}
	e.OnDeleted(id)
	e.notifier.Broadcast(domain.Event{Kind: domain.EventDeleted, ID: id})
	return nil
}
