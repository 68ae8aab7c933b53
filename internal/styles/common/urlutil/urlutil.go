// Package urlutil holds pure URL helpers used by the matching engine:
// scheme filtering, host extraction, and domain decomposition.
package urlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// storePrefixes are browser extension gallery pages. Styling is not
// permitted on these pages by the host platforms, so queries against them
// never match anything.
var storePrefixes = []string{
	"https://chrome.google.com/webstore/",
	"https://chromewebstore.google.com/",
	"https://addons.mozilla.org/",
}

// IsStorePage reports whether the URL points at a browser extension gallery.
func IsStorePage(rawURL string) bool {
	for _, p := range storePrefixes {
		if strings.HasPrefix(rawURL, p) {
			return true
		}
	}
	return false
}

// AllowedScheme reports whether the URL's scheme is one the engine may
// match against. ownScheme optionally names the embedding application's
// origin scheme and may be empty.
func AllowedScheme(rawURL, ownScheme string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp", "file":
		return true
	}
	return ownScheme != "" && u.Scheme == ownScheme
}

// Hostname extracts the URL's host, lowercased and normalized to ASCII
// (punycode) form. Returns "" if the URL does not parse or has no host.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return host
}

// DecomposeHost returns the host and every ancestor suffix in decreasing
// specificity: "a.b.c" yields ["a.b.c", "b.c", "c"]. An empty host yields nil.
func DecomposeHost(host string) []string {
	if host == "" {
		return nil
	}
	var suffixes []string
	for {
		suffixes = append(suffixes, host)
		i := strings.IndexByte(host, '.')
		if i < 0 || i+1 >= len(host) {
			break
		}
		host = host[i+1:]
	}
	return suffixes
}

// DecomposeURL is the composition of Hostname and DecomposeHost.
func DecomposeURL(rawURL string) []string {
	return DecomposeHost(Hostname(rawURL))
}
