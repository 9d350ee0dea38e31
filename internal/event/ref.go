package event

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	eventURLRefPattern = regexp.MustCompile(`(?i)https?://[^\s]*smoothcomp\.com/(?:[^\s]*/)?event/\d+(?:/[^\s?#]+)?`)
	keyedIDPattern     = regexp.MustCompile(`(?i)\bevent\s*id\s*[:#-]?\s*(\d{4,9})\b`)
	yearRefPattern     = regexp.MustCompile(`\b(20\d{2})\b`)
	allDigits          = regexp.MustCompile(`^\d+$`)
)

// MatchEventURL returns the first event URL found in free text, or "".
func MatchEventURL(text string) string {
	return eventURLRefPattern.FindString(text)
}

// MatchEventID returns an event id referenced in free text: either a keyed
// mention ("event id: 12345") anywhere, or the whole trimmed text being a
// 4-9 digit token. Returns "" when neither applies.
func MatchEventID(text string) string {
	if m := keyedIDPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= 4 && len(trimmed) <= 9 && allDigits.MatchString(trimmed) {
		return trimmed
	}
	return ""
}

// MatchYear returns the first 20xx year mentioned in text, or fallback.
func MatchYear(text string, fallback int) int {
	if m := yearRefPattern.FindStringSubmatch(text); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			return year
		}
	}
	return fallback
}
