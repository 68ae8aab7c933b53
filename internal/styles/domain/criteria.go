package domain

// Tri-state values for the canonicalized enabled filter.
const (
	EnabledUnset int8 = -1
	EnabledFalse int8 = 0
	EnabledTrue  int8 = 1
)

// Criteria is the immutable filter specification a caller passes to a
// query. The zero value means "no filters, list output, strict regexes
// off"; use NewCriteria or set StrictRegex explicitly for the default
// strict behavior.
type Criteria struct {
	// Enabled filters by the enabled flag when non-nil.
	Enabled *bool
	// URL filters to styles whose source/update URL equals this value.
	URL string
	// ID filters to a single style id; 0 means unset.
	ID int64
	// MatchURL runs the URL matcher against this target URL.
	MatchURL string
	// AsMap selects map output (id -> matched sections, plus disable-all).
	AsMap bool
	// StrictRegex restricts regex matching to the strict anchoring pass.
	StrictRegex bool
}

// NewCriteria returns a Criteria with the default strict regex mode.
func NewCriteria() Criteria {
	return Criteria{StrictRegex: true}
}

// HasFilters reports whether any of the enabled/url/id/match-url filters
// is set. A filterless non-map query is answered directly from the record
// list and never cached.
func (c Criteria) HasFilters() bool {
	return c.Enabled != nil || c.URL != "" || c.ID != 0 || c.MatchURL != ""
}

// CriteriaKey is the canonical, comparable form of a Criteria used as the
// filter-cache key. A struct key removes the collision risk of
// concatenated string keys.
type CriteriaKey struct {
	Enabled  int8
	URL      string
	ID       int64
	MatchURL string
	AsMap    bool
	Strict   bool
}

// Key canonicalizes the criteria into its cache key: the enabled flag is
// normalized to one of {true, false, unset} and a non-positive id is
// coerced to unset.
func (c Criteria) Key() CriteriaKey {
	enabled := EnabledUnset
	if c.Enabled != nil {
		if *c.Enabled {
			enabled = EnabledTrue
		} else {
			enabled = EnabledFalse
		}
	}
	id := c.ID
	if id < 0 {
		id = 0
	}
	return CriteriaKey{
		Enabled:  enabled,
		URL:      c.URL,
		ID:       id,
		MatchURL: c.MatchURL,
		AsMap:    c.AsMap,
		Strict:   c.StrictRegex,
	}
}
