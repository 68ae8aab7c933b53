package urlutil

import (
	"reflect"
	"testing"
)

func TestDecomposeHost(t *testing.T) {
	tests := []struct {
		host string
		want []string
	}{
		{"", nil},
		{"com", []string{"com"}},
		{"example.com", []string{"example.com", "com"}},
		{"a.b.c", []string{"a.b.c", "b.c", "c"}},
		{"a.b.example.com", []string{"a.b.example.com", "b.example.com", "example.com", "com"}},
		{"trailing.", []string{"trailing."}},
	}
	for _, tt := range tests {
		got := DecomposeHost(tt.host)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("DecomposeHost(%q) = %v; want %v", tt.host, got, tt.want)
		}
	}
}

func TestDecomposeURL(t *testing.T) {
	got := DecomposeURL("http://a.b.example.com/x")
	want := []string{"a.b.example.com", "b.example.com", "example.com", "com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecomposeURL = %v; want %v", got, want)
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://Example.COM/path", "example.com"},
		{"https://example.com:8080/", "example.com"},
		{"file:///etc/hosts", ""},
		{"http://bücher.de/", "xn--bcher-kva.de"},
		{"::notaurl::", ""},
	}
	for _, tt := range tests {
		if got := Hostname(tt.url); got != tt.want {
			t.Errorf("Hostname(%q) = %q; want %q", tt.url, got, tt.want)
		}
	}
}

func TestAllowedScheme(t *testing.T) {
	tests := []struct {
		url       string
		ownScheme string
		want      bool
	}{
		{"http://x.com/", "", true},
		{"https://x.com/", "", true},
		{"ftp://x.com/", "", true},
		{"file:///tmp/a.css", "", true},
		{"chrome://settings", "", false},
		{"about:blank", "", false},
		{"app://panel/options", "app", true},
		{"app://panel/options", "", false},
	}
	for _, tt := range tests {
		if got := AllowedScheme(tt.url, tt.ownScheme); got != tt.want {
			t.Errorf("AllowedScheme(%q, %q) = %v; want %v", tt.url, tt.ownScheme, got, tt.want)
		}
	}
}

func TestIsStorePage(t *testing.T) {
	if !IsStorePage("https://chrome.google.com/webstore/detail/abc") {
		t.Error("expected web store URL to be detected")
	}
	if IsStorePage("https://example.com/webstore/") {
		t.Error("did not expect non-store URL to be detected")
	}
}
