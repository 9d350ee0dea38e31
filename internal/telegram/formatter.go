package telegram

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/smoothcomp"
)

const eventDateFormat = "Jan 02, 2006"

// FormatEvents renders a discovered-events list. The numbering lines up
// with the inline keyboard built alongside it.
func FormatEvents(events []*event.Event) string {
	if len(events) == 0 {
		return "No events found for your filter."
	}

	lines := []string{"<b>Events found</b>", "Select one from the buttons below:"}
	for idx, ev := range events {
		date := "TBD"
		if ev.StartDate != nil && ev.EndDate != nil {
			date = ev.StartDate.Format(eventDateFormat) + " - " + ev.EndDate.Format(eventDateFormat)
		} else if ev.StartDate != nil {
			date = ev.StartDate.Format(eventDateFormat)
		}

		loc := strings.Trim(ev.Location+", "+ev.Country, ", ")
		if loc == "" {
			loc = "TBD"
		}
		lines = append(lines, fmt.Sprintf(
			"%d. <b>%s</b>\n   Date: %s\n   Location: %s",
			idx+1, html.EscapeString(ev.Name), html.EscapeString(date), html.EscapeString(loc),
		))
	}
	return strings.Join(lines, "\n")
}

// FormatCompetitors renders the roster report for one event: schedule rows
// grouped per competitor, then a compact per-division bracket view.
func FormatCompetitors(ev *event.Event, rows []*event.CompetitorSchedule, affiliateKeywords []string) string {
	if len(rows) == 0 {
		return fmt.Sprintf(
			"<b>%s</b>\nNo team competitors found for this event with your current affiliate filters.",
			html.EscapeString(ev.Name),
		)
	}

	lines := []string{
		fmt.Sprintf("<b>%s</b>", html.EscapeString(ev.Name)),
		"",
		fmt.Sprintf("Affiliate filter: <code>%s</code>", html.EscapeString(strings.Join(affiliateKeywords, ", "))),
		"",
		"<b>Team competitors and schedules</b>",
	}

	byName := make(map[string][]*event.CompetitorSchedule)
	for _, row := range rows {
		byName[row.CompetitorName] = append(byName[row.CompetitorName], row)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		grouped := byName[name]
		academy := grouped[0].Academy
		if academy == "" {
			academy = "TBD"
		}
		lines = append(lines, fmt.Sprintf("\n<b>%s</b> (%s)", html.EscapeString(name), html.EscapeString(academy)))
		for _, row := range grouped {
			division := row.Division
			if division == "" {
				division = "TBD"
			}
			lines = append(lines, fmt.Sprintf(
				"- Division: %s | Time: %s | Mat: %s | Opponent: %s",
				html.EscapeString(division), html.EscapeString(row.MatchTime),
				html.EscapeString(row.Mat), html.EscapeString(row.Opponent),
			))
		}
	}

	lines = append(lines, "\n<b>Quick bracket view</b>")
	lines = append(lines, BuildBracketLines(rows)...)

	return strings.Join(lines, "\n")
}

// BuildBracketLines lays schedule rows out per division, one matchup per
// line, sorted so repeated runs against the same event render identically.
func BuildBracketLines(rows []*event.CompetitorSchedule) []string {
	byDivision := make(map[string][]*event.CompetitorSchedule)
	for _, row := range rows {
		division := row.Division
		if division == "" {
			division = "Unspecified division"
		}
		byDivision[division] = append(byDivision[division], row)
	}

	divisions := make([]string, 0, len(byDivision))
	for division := range byDivision {
		divisions = append(divisions, division)
	}
	sort.Strings(divisions)

	var out []string
	for _, division := range divisions {
		out = append(out, "\n"+html.EscapeString(division))
		grouped := byDivision[division]
		sort.SliceStable(grouped, func(i, j int) bool {
			return grouped[i].CompetitorName < grouped[j].CompetitorName
		})
		for _, row := range grouped {
			out = append(out, fmt.Sprintf(
				"%s vs %s (Mat %s, %s)",
				html.EscapeString(row.CompetitorName), html.EscapeString(row.Opponent),
				html.EscapeString(row.Mat), html.EscapeString(row.MatchTime),
			))
		}
	}
	return out
}

// FormatAffiliateHints renders academy labels seen on an event that
// produced no roster rows, so the user can widen their keyword filter.
func FormatAffiliateHints(affiliates []string) string {
	if len(affiliates) == 0 {
		return ""
	}
	hintLines := make([]string, len(affiliates))
	for i, name := range affiliates {
		hintLines[i] = "- " + html.EscapeString(name)
	}
	return "\n\n<b>Detected affiliate labels on this event</b>\n" +
		"Try adding one of these to <code>TEAM_AFFILIATE_KEYWORDS</code>:\n" +
		strings.Join(hintLines, "\n")
}

// FormatPeopleHints renders competitor names seen on an event that matched
// nothing in the user's team filter.
func FormatPeopleHints(people []smoothcomp.PersonHint) string {
	if len(people) == 0 {
		return ""
	}
	peopleLines := make([]string, len(people))
	for i, p := range people {
		peopleLines[i] = fmt.Sprintf("- %s (%s)", html.EscapeString(p.Name), html.EscapeString(p.Division))
	}
	return "\n\n<b>Detected competitors on this event</b>\n" +
		"These names were found, but none matched your team filter:\n" +
		strings.Join(peopleLines, "\n")
}
