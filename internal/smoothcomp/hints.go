package smoothcomp

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/tourna-events/internal/event"
)

// PersonHint is one competitor observed during unfiltered extraction,
// surfaced so an operator can recalibrate the affiliate keywords.
type PersonHint struct {
	Name     string `json:"name"`
	Division string `json:"division"`
}

// DetectAffiliates re-runs extraction with no affiliate filter and returns
// the most frequent academy labels, best guesses first. Sentinels and
// strings that look like divisions, times, or page chrome are discarded.
func (c *Client) DetectAffiliates(ev *event.Event, limit int) []string {
	if limit <= 0 {
		limit = 12
	}
	rows := c.FetchCompetitors(ev, nil)

	counts := make(map[string]int)
	for _, row := range rows {
		academy := strings.TrimSpace(row.Academy)
		if academy == "" {
			continue
		}
		switch strings.ToLower(academy) {
		case "tbd", "team match", "unknown":
			continue
		}
		if !isLikelyAffiliateLabel(academy) {
			continue
		}
		counts[academy]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})
	if len(labels) > limit {
		labels = labels[:limit]
	}
	return labels
}

// DetectPeople re-runs extraction with no affiliate filter and returns
// distinct plausible competitor names with their division, in the order
// they were first observed.
func (c *Client) DetectPeople(ev *event.Event, limit int) []PersonHint {
	if limit <= 0 {
		limit = 15
	}
	rows := c.FetchCompetitors(ev, nil)

	var out []PersonHint
	seen := make(map[string]bool)
	for _, row := range rows {
		name := strings.TrimSpace(row.CompetitorName)
		if !isPlausiblePersonName(name) {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		division := strings.TrimSpace(row.Division)
		if division == "" {
			division = event.UnknownField
		}
		out = append(out, PersonHint{Name: name, Division: division})
		if len(out) >= limit {
			break
		}
	}
	return out
}
