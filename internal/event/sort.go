package event

import (
	"sort"
	"strings"
	"time"
)

var maxDate = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// StartOrMax returns the start date, or a far-future sentinel when the
// start date is unknown, so date-ascending orderings push undated events
// to the end.
func (e *Event) StartOrMax() time.Time {
	if e.StartDate == nil {
		return maxDate
	}
	return *e.StartDate
}

// SortByStart orders events by start date ascending (undated events last),
// breaking ties by case-insensitive name.
func SortByStart(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := events[i].StartOrMax(), events[j].StartOrMax()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return strings.ToLower(events[i].Name) < strings.ToLower(events[j].Name)
	})
}
