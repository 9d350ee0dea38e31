package event

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	isoDatePattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	longDatePattern    = regexp.MustCompile(`([A-Za-z]{3,9})\s+(\d{1,2}),\s*(\d{4})`)
	philippinesPattern = regexp.MustCompile(`\bphilippines\b|\bphl\b|\bph\b`)
	nonAlnumSpace      = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// ParseDates extracts every ISO (2006-01-02) and long-form English
// ("January 2, 2006" / "Jan 2, 2006") date found in text and returns them
// parsed and sorted ascending. Fragments that look like dates but fail to
// parse are skipped.
func ParseDates(text string) []time.Time {
	var out []time.Time
	for _, m := range isoDatePattern.FindAllString(text, -1) {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			out = append(out, t)
		}
	}
	for _, m := range longDatePattern.FindAllStringSubmatch(text, -1) {
		candidate := titleMonth(m[1]) + " " + m[2] + ", " + m[3]
		for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
			if t, err := time.Parse(layout, candidate); err == nil {
				out = append(out, t)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// titleMonth normalizes month-name casing so listing text like "MARCH" or
// "march" still parses.
func titleMonth(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// MatchesCountry reports whether text mentions country, case-insensitively.
// The Philippines additionally matches the token-boundary abbreviations
// "phl" and "ph", which listing rows use interchangeably with the full
// name. An empty country matches everything.
func MatchesCountry(text, country string) bool {
	lowered := strings.ToLower(text)
	countryL := strings.ToLower(country)
	if strings.Contains(lowered, countryL) {
		return true
	}
	if countryL == "philippines" {
		return philippinesPattern.MatchString(lowered)
	}
	return false
}

// ExtractLocation returns the leading slice of a context blob when it looks
// location-bearing: it must mention "city", "venue", "location", or the
// country itself. Listing rows put the venue line first, so the head of the
// blob is the best cheap guess.
func ExtractLocation(text, country string) string {
	lowered := strings.ToLower(text)
	tokens := []string{"city", "venue", "location"}
	if c := strings.TrimSpace(strings.ToLower(country)); c != "" {
		tokens = append(tokens, c)
	}
	for _, token := range tokens {
		if strings.Contains(lowered, token) {
			return Clamp(text, 120)
		}
	}
	return ""
}

// NormalizeName lowercases, collapses whitespace, and strips everything
// outside [a-z0-9 ], so fuzzy matching compares bare words.
func NormalizeName(s string) string {
	return nonAlnumSpace.ReplaceAllString(strings.ToLower(CollapseSpace(s)), "")
}

// CollapseSpace reduces every whitespace run to a single space and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Clamp truncates s to at most max runes.
func Clamp(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
