package event

import (
	"regexp"
	"strings"
)

var (
	eventIDPattern   = regexp.MustCompile(`/event/(\d+)`)
	canonicalPattern = regexp.MustCompile(`(?i)(https?://[^/]+/(?:[a-z]{2}/)?event/\d+)`)
)

// CanonicalURL reduces an event URL to scheme + host + event path with no
// query string and no trailing slash. Slug and deeper path segments are
// dropped. URLs without a recognizable event path come back query-stripped
// and slash-trimmed but otherwise untouched.
func CanonicalURL(url string) string {
	url = strings.TrimRight(strings.SplitN(url, "?", 2)[0], "/")
	if m := canonicalPattern.FindString(url); m != "" {
		return m
	}
	return url
}

// IDFromURL returns the digits immediately following the event path marker.
// When the URL carries no event marker the URL itself is returned, so the
// result stays usable as a unique map key.
func IDFromURL(url string) string {
	if m := eventIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return url
}
