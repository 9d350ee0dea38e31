// Package calendar generates iCalendar (.ics) exports for discovered
// tournaments. Events are written as all-day entries; RFC 5545 wants the
// end date exclusive, so a one-day event ends the following day.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/event"
)

const icsDateFormat = "20060102"

// GenerateICS renders events as one VCALENDAR with a VEVENT per dated
// event. Events without a parsed start date are omitted; there is nothing
// to put them on the calendar with.
func GenerateICS(events []*event.Event, calendarName string) string {
	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:-//tourna-events//tourna-events//EN")
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	if calendarName != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(calendarName))
	}

	stamp := formatICSTime(time.Now().UTC())
	for _, evt := range events {
		if evt.StartDate == nil {
			continue
		}
		writeEvent(&ics, evt, stamp)
	}

	writeLine(&ics, "END:VCALENDAR")

	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, stamp string) {
	start := *evt.StartDate
	end := start
	if evt.EndDate != nil {
		end = *evt.EndDate
	}
	// Exclusive end date.
	end = end.AddDate(0, 0, 1)

	writeLine(ics, "BEGIN:VEVENT")
	writeLine(ics, fmt.Sprintf("UID:%s@tourna-events", evt.ID))
	writeLine(ics, "DTSTAMP:"+stamp)
	writeLine(ics, "DTSTART;VALUE=DATE:"+start.Format(icsDateFormat))
	writeLine(ics, "DTEND;VALUE=DATE:"+end.Format(icsDateFormat))
	writeLine(ics, "SUMMARY:"+escapeICS(evt.Name))

	location := strings.Trim(evt.Location+", "+evt.Country, ", ")
	if location != "" {
		writeLine(ics, "LOCATION:"+escapeICS(location))
	}
	if evt.URL != "" {
		writeLine(ics, "URL:"+evt.URL)
	}

	writeLine(ics, "STATUS:CONFIRMED")
	writeLine(ics, "TRANSP:TRANSPARENT")
	writeLine(ics, "END:VEVENT")
}

// writeLine writes one content line, folded at 75 octets with a
// space-prefixed continuation as RFC 5545 requires.
func writeLine(ics *strings.Builder, line string) {
	for len(line) > 75 {
		ics.WriteString(line[:75])
		ics.WriteString("\r\n")
		line = " " + line[75:]
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
