package domain

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestCriteriaHasFilters(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"zero value", Criteria{}, false},
		{"as-map only", Criteria{AsMap: true}, false},
		{"enabled", Criteria{Enabled: boolPtr(true)}, true},
		{"url", Criteria{URL: "http://x.com"}, true},
		{"id", Criteria{ID: 3}, true},
		{"match url", Criteria{MatchURL: "http://x.com/p"}, true},
	}
	for _, tt := range tests {
		if got := tt.c.HasFilters(); got != tt.want {
			t.Errorf("%s: HasFilters() = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestCriteriaKeyCanonicalization(t *testing.T) {
	k := Criteria{Enabled: boolPtr(true), ID: 3, StrictRegex: true}.Key()
	if k.Enabled != EnabledTrue || k.ID != 3 || !k.Strict {
		t.Errorf("unexpected key %+v", k)
	}

	if k := (Criteria{Enabled: boolPtr(false)}).Key(); k.Enabled != EnabledFalse {
		t.Errorf("expected EnabledFalse, got %d", k.Enabled)
	}
	if k := (Criteria{}).Key(); k.Enabled != EnabledUnset {
		t.Errorf("expected EnabledUnset, got %d", k.Enabled)
	}
	if k := (Criteria{ID: -5}).Key(); k.ID != 0 {
		t.Errorf("expected negative id coerced to unset, got %d", k.ID)
	}

	// Equal criteria must produce identical (comparable) keys.
	a := Criteria{Enabled: boolPtr(true), MatchURL: "http://x.com", StrictRegex: true}.Key()
	b := Criteria{Enabled: boolPtr(true), MatchURL: "http://x.com", StrictRegex: true}.Key()
	if a != b {
		t.Errorf("expected identical keys, got %+v vs %+v", a, b)
	}
}
