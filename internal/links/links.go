// Package links validates token links and derives social handles from them.
package links

import (
	"net/url"
	"strings"
)

// Valid reports whether s parses as a URL with a non-empty scheme and host.
func Valid(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Handle returns the final path segment of a profile URL, e.g.
// "https://x.com/pumpdotfun" -> "pumpdotfun". The segment is not checked for
// plausibility; a bad handle simply fails upstream.
func Handle(profileURL string) string {
	s := strings.TrimSpace(profileURL)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}
