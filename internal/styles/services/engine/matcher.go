package engine

import (
	"strings"

	"github.com/calliso/stylecache/internal/styles/common/urlutil"
	"github.com/calliso/stylecache/internal/styles/domain"
)

// applicableSections returns the style's sections that apply to the URL,
// in section order. A section applies when any of its conditions holds
// (or it is global) and its code is not semantically empty. stopOnFirst
// short-circuits after the first applicable section, for callers that
// only need existence.
//
// URLs outside the permitted schemes match nothing, global sections
// included: the host environment will never inject styles there.
func (e *Engine) applicableSections(st *domain.Style, rawURL string, strict, stopOnFirst bool) []domain.Section {
	if !urlutil.AllowedScheme(rawURL, e.ownScheme) {
		return nil
	}

	suffixes := e.domains.Decompose(rawURL)
	// One probe of the domain index answers, for the whole style, whether
	// domain conditions are worth intersecting at all.
	domainsPossible := len(suffixes) > 0 && e.index.MightContainAny(suffixes)

	var matched []domain.Section
	for _, sec := range st.Sections {
		if !e.sectionMatches(sec, rawURL, suffixes, domainsPossible, strict) {
			continue
		}
		if e.emptiness.IsEmpty(sec.Code) {
			continue
		}
		matched = append(matched, sec)
		if stopOnFirst {
			break
		}
	}
	return matched
}

// sectionMatches evaluates the OR of the section's four condition lists.
func (e *Engine) sectionMatches(sec domain.Section, rawURL string, suffixes []string, domainsPossible, strict bool) bool {
	if sec.IsGlobal() {
		return true
	}
	for _, u := range sec.URLs {
		if u == rawURL {
			return true
		}
	}
	for _, p := range sec.URLPrefixes {
		if p != "" && strings.HasPrefix(rawURL, p) {
			return true
		}
	}
	if domainsPossible && len(sec.Domains) > 0 {
		for _, d := range sec.Domains {
			for _, s := range suffixes {
				if d == s {
					return true
				}
			}
		}
	}
	for _, pattern := range sec.Regexps {
		if e.regex.Matches(pattern, rawURL, strict) {
			return true
		}
	}
	return false
}
