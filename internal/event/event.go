package event

import "time"

// Event represents one tournament discovered on the listing site or
// resolved from a direct reference. Dates are nil when the surrounding
// markup never yielded a parseable date.
type Event struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	Location  string     `json:"location,omitempty"`
	Country   string     `json:"country,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// New builds an Event for url, deriving the identifier from the URL.
func New(name, url string) *Event {
	return &Event{
		ID:   IDFromURL(url),
		Name: name,
		URL:  url,
	}
}

// HasDates reports whether the event carries at least a start date.
func (e *Event) HasDates() bool {
	return e.StartDate != nil
}

// Year returns the start year, or 0 when the start date is unknown.
func (e *Event) Year() int {
	if e.StartDate == nil {
		return 0
	}
	return e.StartDate.Year()
}

// IsPast reports whether the event starts strictly before today, at day
// granularity. Events without a start date are never considered past.
func (e *Event) IsPast(today time.Time) bool {
	if e.StartDate == nil {
		return false
	}
	return dateOnly(*e.StartDate).Before(dateOnly(today))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Sentinel values used for unknown schedule fields. Extraction strategies
// write them on construction and overwrite them when a page yields better
// data; formatters render them as-is.
const (
	UnknownField     = "TBD"
	UnknownAffiliate = "Unknown"
	TeamMatch        = "Team match"
)

// CompetitorSchedule is one extracted roster or bracket row: a competitor,
// where they fight, and against whom, as far as the pages revealed.
type CompetitorSchedule struct {
	CompetitorName string   `json:"competitor_name"`
	Academy        string   `json:"academy"`
	Division       string   `json:"division"`
	Bracket        string   `json:"bracket,omitempty"`
	Opponent       string   `json:"opponent"`
	MatchTime      string   `json:"match_time"`
	Mat            string   `json:"mat"`
	SourceURL      string   `json:"source_url,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// NewSchedule builds a schedule row for name with every other field at its
// sentinel value.
func NewSchedule(name string) *CompetitorSchedule {
	return &CompetitorSchedule{
		CompetitorName: name,
		Academy:        UnknownAffiliate,
		Division:       UnknownField,
		Opponent:       UnknownField,
		MatchTime:      UnknownField,
		Mat:            UnknownField,
	}
}

// Key is the deduplication identity of a schedule row: competitor name,
// division, match time, and mat. Two rows with equal keys describe the same
// observation even when they were extracted by different strategies. Rows
// for distinct real matches that share all four fields also collapse; the
// fields available in loosely structured markup cannot tell them apart.
func (c *CompetitorSchedule) Key() [4]string {
	return [4]string{c.CompetitorName, c.Division, c.MatchTime, c.Mat}
}
