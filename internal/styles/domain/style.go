package domain

import (
	"fmt"
)

// Style represents one user-authored rule set. Identifiers are assigned by
// the storage layer on first persist and are stable for the life of the
// record. Once loaded, a Style is owned by the engine's record cache and is
// only ever replaced through reconciliation, never mutated in place.
type Style struct {
	ID             int64     `json:"id" koanf:"id"`
	Enabled        bool      `json:"enabled" koanf:"enabled"`
	Name           string    `json:"name,omitempty" koanf:"name"`
	UpdateURL      string    `json:"update_url,omitempty" koanf:"update_url"`
	Digest         string    `json:"digest,omitempty" koanf:"digest"`
	OriginalDigest string    `json:"original_digest,omitempty" koanf:"original_digest"`
	Sections       []Section `json:"sections" koanf:"sections"`
}

// Section is a style's matching unit: four condition lists plus the code
// block the conditions guard. Condition order is irrelevant to matching.
type Section struct {
	URLs        []string `json:"urls,omitempty" koanf:"urls"`
	URLPrefixes []string `json:"url_prefixes,omitempty" koanf:"url_prefixes"`
	Domains     []string `json:"domains,omitempty" koanf:"domains"`
	Regexps     []string `json:"regexps,omitempty" koanf:"regexps"`
	Code        string   `json:"code" koanf:"code"`
}

// IsGlobal reports whether all four condition lists are empty, in which
// case the section applies to every permitted URL.
func (s Section) IsGlobal() bool {
	return len(s.URLs) == 0 && len(s.URLPrefixes) == 0 && len(s.Domains) == 0 && len(s.Regexps) == 0
}

// Validate checks structural invariants of a style before it is persisted.
// A zero ID is allowed (the store assigns one); a negative ID is not.
func (s Style) Validate() error {
	if s.ID < 0 {
		return fmt.Errorf("style id must not be negative: %d", s.ID)
	}
	if len(s.Sections) == 0 {
		return fmt.Errorf("style must have at least one section")
	}
	return nil
}

// Merge applies src onto dst as a shallow field replacement, preserving
// dst's identifier. A nil Sections slice on src means "sections unchanged";
// empty optional strings likewise leave the existing value in place.
func (dst *Style) Merge(src Style) {
	dst.Enabled = src.Enabled
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.UpdateURL != "" {
		dst.UpdateURL = src.UpdateURL
	}
	if src.Digest != "" {
		dst.Digest = src.Digest
	}
	if src.OriginalDigest != "" {
		dst.OriginalDigest = src.OriginalDigest
	}
	if src.Sections != nil {
		dst.Sections = src.Sections
	}
}

// SectionsEqual decides whether two section lists are structurally equal
// for the purpose of classifying an update as code-changing or
// metadata-only. The second return value is false when either side lacks a
// sections list (nil), in which case no comparison is possible.
//
// Lists are equal when they have the same length and a bijection exists:
// every section on one side matches exactly one not-yet-claimed section on
// the other, where a match means all four condition lists are set-equal
// and the code blocks are identical.
func SectionsEqual(a, b []Section) (equal, ok bool) {
	if a == nil || b == nil {
		return false, false
	}
	if len(a) != len(b) {
		return false, true
	}
	claimed := make([]bool, len(b))
outer:
	for i := range a {
		for j := range b {
			if !claimed[j] && sectionEqual(a[i], b[j]) {
				claimed[j] = true
				continue outer
			}
		}
		return false, true
	}
	return true, true
}

func sectionEqual(a, b Section) bool {
	return a.Code == b.Code &&
		setEqual(a.URLs, b.URLs) &&
		setEqual(a.URLPrefixes, b.URLPrefixes) &&
		setEqual(a.Domains, b.Domains) &&
		setEqual(a.Regexps, b.Regexps)
}

// setEqual compares two string lists as sets: order-independent, exact
// membership, duplicates ignored.
func setEqual(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, found := bs[v]; !found {
			return false
		}
	}
	return true
}
