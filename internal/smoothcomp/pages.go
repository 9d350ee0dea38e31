package smoothcomp

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/tourna-events/internal/event"
)

// eventPagesToTry expands an event URL into the deduplicated list of
// sub-page variants competitor data has been observed on. The schedule
// bracket page goes first and the participants page second because they
// carry the densest data; the rest follow in sorted order. Locale-prefixed
// and unprefixed mirrors of the main variants are both tried, since events
// answer on either depending on how the organizer set them up.
func eventPagesToTry(eventURL string) []string {
	base := strings.TrimRight(event.CanonicalURL(eventURL), "/")

	variants := map[string]bool{base: true}
	for _, suffix := range []string{
		"/participants",
		"/participants?page=1",
		"/participants?page=2",
		"/participants?page=3",
		"/participants?page=4",
		"/schedule/brackets",
		"/schedule",
		"/bracket",
		"/brackets",
		"/matches",
		"/registrations",
	} {
		variants[base+suffix] = true
	}

	var alt string
	if strings.Contains(base, "/en/event/") {
		alt = strings.Replace(base, "/en/event/", "/event/", 1)
	} else if strings.Contains(base, "/event/") {
		alt = strings.Replace(base, "/event/", "/en/event/", 1)
	}
	if alt != "" {
		variants[alt] = true
		for _, suffix := range []string{"/participants", "/schedule/brackets", "/schedule", "/bracket", "/matches"} {
			variants[alt+suffix] = true
		}
	}

	ordered := make([]string, 0, len(variants))
	for _, preferred := range []string{base + "/schedule/brackets", base + "/participants"} {
		if variants[preferred] {
			ordered = append(ordered, preferred)
			delete(variants, preferred)
		}
	}
	rest := make([]string, 0, len(variants))
	for url := range variants {
		rest = append(rest, url)
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}
