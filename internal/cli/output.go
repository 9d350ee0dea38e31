package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pfrederiksen/tourna-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

const textDateFormat = "Jan 02, 2006"

// WriteEvents writes a discovered-events list in the specified format. An
// empty list is a normal outcome, not an error.
func WriteEvents(w io.Writer, events []*event.Event, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, events)
	}

	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	for i, ev := range events {
		fmt.Fprintf(w, "%d. %s\n", i+1, ev.Name)
		fmt.Fprintf(w, "   ID: %s\n", ev.ID)
		fmt.Fprintf(w, "   Date: %s\n", formatDateRange(ev))
		if loc := formatLocation(ev); loc != "" {
			fmt.Fprintf(w, "   Location: %s\n", loc)
		}
		fmt.Fprintf(w, "   URL: %s\n", ev.URL)
	}
	fmt.Fprintf(w, "\nTotal: %d events\n", len(events))
	return nil
}

// rosterOutput is the JSON shape of a roster report.
type rosterOutput struct {
	Event    *event.Event                `json:"event"`
	Keywords []string                    `json:"keywords,omitempty"`
	Rows     []*event.CompetitorSchedule `json:"rows"`
}

// WriteRoster writes the competitor schedule for one event.
func WriteRoster(w io.Writer, ev *event.Event, rows []*event.CompetitorSchedule, keywords []string, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, &rosterOutput{Event: ev, Keywords: keywords, Rows: rows})
	}

	fmt.Fprintf(w, "%s (%s)\n", ev.Name, ev.URL)
	if len(keywords) > 0 {
		fmt.Fprintf(w, "Affiliate filter: %s\n", strings.Join(keywords, ", "))
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "\nNo team competitors found for this event.")
		return nil
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
		fmt.Fprintf(w, "\n%s (%s)\n", name, grouped[0].Academy)
		for _, row := range grouped {
			fmt.Fprintf(w, "  Division: %s | Time: %s | Mat: %s | Opponent: %s\n",
				row.Division, row.MatchTime, row.Mat, row.Opponent)
		}
	}
	fmt.Fprintf(w, "\nTotal: %d rows across %d competitors\n", len(rows), len(names))
	return nil
}

func formatDateRange(ev *event.Event) string {
	switch {
	case ev.StartDate != nil && ev.EndDate != nil:
		return ev.StartDate.Format(textDateFormat) + " - " + ev.EndDate.Format(textDateFormat)
	case ev.StartDate != nil:
		return ev.StartDate.Format(textDateFormat)
	default:
		return "TBD"
	}
}

func formatLocation(ev *event.Event) string {
	return strings.Trim(ev.Location+", "+ev.Country, ", ")
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
