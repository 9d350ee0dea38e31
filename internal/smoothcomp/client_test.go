package smoothcomp

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/event"
)

// rowPad keeps listing rows far enough apart in the raw markup that the
// context window around one event URL cannot pick up a neighbor's date or
// country text.
var rowPad = strings.Repeat("<!-- pad -->", 60)

func listingRow(href, name, details string) string {
	return `<div class="event-row"><a href="` + href + `">` + name + `</a> <span>` + details + `</span></div>` + rowPad
}

func newPageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		inCountry bool
		eventYear int
		wantYear  int
		expected  tier
	}{
		{"country and year", true, 2026, 2026, tierCountryYear},
		{"country without date", true, 0, 2026, tierCountryNoYear},
		{"country other year", true, 2027, 2026, tierCountryOtherYear},
		{"year only", false, 2026, 2026, tierYearOnly},
		{"no date no country", false, 0, 2026, tierNoYear},
		{"neither", false, 2027, 2026, tierRest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.inCountry, tt.eventYear, tt.wantYear); got != tt.expected {
				t.Errorf("classify(%v, %d, %d) = %d, want %d", tt.inCountry, tt.eventYear, tt.wantYear, got, tt.expected)
			}
		})
	}
}

func TestFetchEventsPrefersCountryYearTiers(t *testing.T) {
	nextYear := time.Now().Year() + 1
	html := "<html><body>" +
		listingRow("/en/event/101/manila-open", "Manila Open", fmt.Sprintf("Manila, Philippines · March 14, %d", nextYear)) +
		listingRow("/en/event/102/davao-challenge", "Davao Challenge", "Davao City, Philippines · dates to be announced") +
		listingRow("/en/event/103/iloilo-cup", "Iloilo Cup", fmt.Sprintf("Iloilo, Philippines · March 14, %d", nextYear+1)) +
		listingRow("/en/event/104/tokyo-grand-slam", "Tokyo Grand Slam", fmt.Sprintf("Tokyo, Japan · March 14, %d", nextYear)) +
		"</body></html>"
	srv := newPageServer(t, html)

	client := New(srv.URL, srv.URL, 0)
	events, err := client.FetchEvents(nextYear, "Philippines")
	if err != nil {
		t.Fatalf("FetchEvents() error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), eventNames(events))
	}
	if events[0].Name != "Manila Open" {
		t.Errorf("events[0].Name = %q, want %q", events[0].Name, "Manila Open")
	}
	if events[1].Name != "Davao Challenge" {
		t.Errorf("events[1].Name = %q, want %q (undated country events follow dated ones)", events[1].Name, "Davao Challenge")
	}
	if events[0].ID != "101" {
		t.Errorf("events[0].ID = %q, want %q", events[0].ID, "101")
	}
	if events[0].Country != "Philippines" {
		t.Errorf("events[0].Country = %q, want %q", events[0].Country, "Philippines")
	}
	if events[0].StartDate == nil || events[0].StartDate.Year() != nextYear {
		t.Errorf("events[0].StartDate = %v, want year %d", events[0].StartDate, nextYear)
	}
	if events[1].StartDate != nil {
		t.Errorf("events[1].StartDate = %v, want nil", events[1].StartDate)
	}
}

func TestFetchEventsFallsBackToCountryOtherYear(t *testing.T) {
	nextYear := time.Now().Year() + 1
	html := "<html><body>" +
		listingRow("/en/event/103/iloilo-cup", "Iloilo Cup", fmt.Sprintf("Iloilo, Philippines · March 14, %d", nextYear+1)) +
		listingRow("/en/event/104/tokyo-grand-slam", "Tokyo Grand Slam", fmt.Sprintf("Tokyo, Japan · March 14, %d", nextYear)) +
		"</body></html>"
	srv := newPageServer(t, html)

	client := New(srv.URL, srv.URL, 0)
	events, err := client.FetchEvents(nextYear, "Philippines")
	if err != nil {
		t.Fatalf("FetchEvents() error: %v", err)
	}

	if len(events) != 1 || events[0].Name != "Iloilo Cup" {
		t.Fatalf("got %v, want just Iloilo Cup", eventNames(events))
	}
}

func TestFetchEventsFallsBackToYearOnly(t *testing.T) {
	nextYear := time.Now().Year() + 1
	html := "<html><body>" +
		listingRow("/en/event/104/tokyo-grand-slam", "Tokyo Grand Slam", fmt.Sprintf("Tokyo, Japan · March 14, %d", nextYear)) +
		"</body></html>"
	srv := newPageServer(t, html)

	client := New(srv.URL, srv.URL, 0)
	events, err := client.FetchEvents(nextYear, "Philippines")
	if err != nil {
		t.Fatalf("FetchEvents() error: %v", err)
	}

	if len(events) != 1 || events[0].Name != "Tokyo Grand Slam" {
		t.Fatalf("got %v, want just Tokyo Grand Slam", eventNames(events))
	}
	if events[0].Country != "" {
		t.Errorf("Country = %q, want empty for non-country match", events[0].Country)
	}
}

func TestFetchEventsFallsBackToMirror(t *testing.T) {
	nextYear := time.Now().Year() + 1
	primary := newPageServer(t, "<html><body><p>Nothing here.</p></body></html>")
	mirror := newPageServer(t, fmt.Sprintf(`<html><body><table>
<tr><td><a href="/en/event/321/cebu-cup">Cebu Grappling Cup</a></td><td>Cebu, Philippines</td><td>March 14, %d</td></tr>
</table></body></html>`, nextYear))

	client := New(primary.URL, mirror.URL, 0)
	events, err := client.FetchEvents(nextYear, "Philippines")
	if err != nil {
		t.Fatalf("FetchEvents() error: %v", err)
	}

	if len(events) != 1 || events[0].Name != "Cebu Grappling Cup" {
		t.Fatalf("got %v, want just Cebu Grappling Cup from the mirror", eventNames(events))
	}
	if events[0].ID != "321" {
		t.Errorf("ID = %q, want %q", events[0].ID, "321")
	}
}

func TestFetchEventsListingFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping retry-backoff test in short mode")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, srv.URL, 0)
	if _, err := client.FetchEvents(2026, "Philippines"); err == nil {
		t.Fatal("expected error when the listing page cannot be fetched")
	}
}

func TestFetchEventsFromMirrorSearchModeSkipsDateFilter(t *testing.T) {
	past := time.Now().AddDate(0, 0, -15)
	year := past.Year()
	html := `<html><body><table>
<tr><td><a href="/en/event/401/undated-cup">Manila Undated Cup</a></td><td>Manila, Philippines</td><td>TBA</td></tr>
<tr><td><a href="/en/event/402/finished-cup">Manila Finished Cup</a></td><td>Manila, Philippines</td><td>` + past.Format("January 2, 2006") + `</td></tr>
</table></body></html>`
	srv := newPageServer(t, html)
	client := New(srv.URL, srv.URL, 0)

	strict, err := client.fetchEventsFromMirror(year, "Philippines", false)
	if err != nil {
		t.Fatalf("fetchEventsFromMirror(strict) error: %v", err)
	}
	if len(strict) != 1 || strict[0].Name != "Manila Undated Cup" {
		t.Errorf("strict mode got %v, want only the undated upcoming event", eventNames(strict))
	}

	search, err := client.fetchEventsFromMirror(year, "Philippines", true)
	if err != nil {
		t.Fatalf("fetchEventsFromMirror(search) error: %v", err)
	}
	if len(search) != 1 || search[0].Name != "Manila Finished Cup" {
		t.Errorf("search mode got %v, want the country+year event regardless of date", eventNames(search))
	}
}

func TestFetchEventByURL(t *testing.T) {
	nextYear := time.Now().Year() + 1
	mux := http.NewServeMux()
	mux.HandleFunc("/en/event/777", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>Visayas Open | Smoothcomp</title></head>
<body><h1>Visayas Open</h1><p>Cebu City, Philippines</p><p>March 14, %d</p></body></html>`, nextYear)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := New(srv.URL, srv.URL, 0)
	ev, err := client.FetchEventByURL(srv.URL+"/en/event/777?tab=info", "Philippines")
	if err != nil {
		t.Fatalf("FetchEventByURL() error: %v", err)
	}
	if ev == nil {
		t.Fatal("FetchEventByURL() = nil, want event")
	}
	if ev.ID != "777" {
		t.Errorf("ID = %q, want %q", ev.ID, "777")
	}
	if ev.Name != "Visayas Open" {
		t.Errorf("Name = %q, want %q", ev.Name, "Visayas Open")
	}
	if ev.URL != srv.URL+"/en/event/777" {
		t.Errorf("URL = %q, want canonical %q", ev.URL, srv.URL+"/en/event/777")
	}
	if ev.Country != "Philippines" {
		t.Errorf("Country = %q, want %q", ev.Country, "Philippines")
	}
	if ev.StartDate == nil || ev.StartDate.Year() != nextYear {
		t.Errorf("StartDate = %v, want year %d", ev.StartDate, nextYear)
	}
	if ev.Location == "" {
		t.Error("Location should be filled from the page text")
	}
}

func TestFetchEventByURLFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	client := New(srv.URL, srv.URL, 0)
	ev, err := client.FetchEventByURL(srv.URL+"/en/event/1", "Philippines")
	if err != nil {
		t.Fatalf("FetchEventByURL() error: %v, want nil", err)
	}
	if ev != nil {
		t.Fatalf("FetchEventByURL() = %+v, want nil for unfetchable page", ev)
	}
}

func TestFetchEventByID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/ph/event/888/visayas-open">Visayas Open</a></body></html>`)
	})
	mux.HandleFunc("/ph/event/888/visayas-open", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Visayas Open</h1><p>Cebu City, Philippines</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := New(srv.URL+"/listing", srv.URL+"/mirror", 0)
	ev, err := client.FetchEventByID("888", "Philippines")
	if err != nil {
		t.Fatalf("FetchEventByID() error: %v", err)
	}
	if ev == nil {
		t.Fatal("FetchEventByID() = nil, want event resolved via listing scan")
	}
	if ev.ID != "888" {
		t.Errorf("ID = %q, want %q", ev.ID, "888")
	}
	if ev.Name != "Visayas Open" {
		t.Errorf("Name = %q, want %q", ev.Name, "Visayas Open")
	}
}

func TestFetchEventByIDUnknown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/en/event/101/manila-open">Manila Open</a></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := New(srv.URL+"/listing", srv.URL+"/mirror", 0)
	ev, err := client.FetchEventByID("999", "Philippines")
	if err != nil {
		t.Fatalf("FetchEventByID() error: %v", err)
	}
	if ev != nil {
		t.Fatalf("FetchEventByID() = %+v, want nil for unknown id", ev)
	}
}

func TestSearchEventsByName(t *testing.T) {
	nextYear := time.Now().Year() + 1
	html := "<html><body>" +
		listingRow("/en/event/201/hyperfly-asian-open", fmt.Sprintf("Hyperfly Asian Open %d", nextYear), fmt.Sprintf("Manila, Philippines · March 14, %d", nextYear)) +
		listingRow("/en/event/202/hyper-open", "Hyper Open", fmt.Sprintf("Quezon City, Philippines · April 2, %d", nextYear)) +
		"</body></html>"
	primary := newPageServer(t, html)
	mirror := newPageServer(t, "<html><body></body></html>")

	client := New(primary.URL, mirror.URL, 0)
	events, err := client.SearchEventsByName("Hyperfly Asian Open", nextYear, "Philippines", 10)
	if err != nil {
		t.Fatalf("SearchEventsByName() error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(events), eventNames(events))
	}
	if events[0].ID != "201" {
		t.Errorf("top result = %q (%s), want the full-phrase match first", events[0].Name, events[0].ID)
	}
}

func TestSearchEventsByNameLimit(t *testing.T) {
	nextYear := time.Now().Year() + 1
	html := "<html><body>" +
		listingRow("/en/event/201/manila-open-one", "Manila Open One", fmt.Sprintf("Manila, Philippines · March 14, %d", nextYear)) +
		listingRow("/en/event/202/manila-open-two", "Manila Open Two", fmt.Sprintf("Manila, Philippines · March 15, %d", nextYear)) +
		listingRow("/en/event/203/manila-open-three", "Manila Open Three", fmt.Sprintf("Manila, Philippines · March 16, %d", nextYear)) +
		"</body></html>"
	primary := newPageServer(t, html)
	mirror := newPageServer(t, "<html><body></body></html>")

	client := New(primary.URL, mirror.URL, 0)
	events, err := client.SearchEventsByName("Manila Open", nextYear, "Philippines", 2)
	if err != nil {
		t.Fatalf("SearchEventsByName() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d results, want limit of 2", len(events))
	}
}

func TestScoreEvents(t *testing.T) {
	exact := &event.Event{Name: "Manila Open"}
	contains := &event.Event{Name: "Manila Open Championship 2026"}
	partial := &event.Event{Name: "Open"}
	unrelated := &event.Event{Name: "Tokyo Grand Slam"}

	got := scoreEvents([]*event.Event{unrelated, partial, contains, exact}, "manila open", 2026)

	want := []string{"Manila Open", "Manila Open Championship 2026", "Open"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", eventNames(got), want)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("got[%d].Name = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestScoreEventsTieBreaksByDate(t *testing.T) {
	early := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	a := &event.Event{Name: "Manila Open A", StartDate: &late}
	b := &event.Event{Name: "Manila Open B", StartDate: &early}

	got := scoreEvents([]*event.Event{a, b}, "manila open", 2027)
	if len(got) != 2 || got[0].Name != "Manila Open B" {
		t.Fatalf("got %v, want the earlier-dated event first", eventNames(got))
	}
}

func TestDebugDiscovery(t *testing.T) {
	nextYear := time.Now().Year() + 1
	html := "<html><body>" +
		listingRow("/en/event/101/manila-open", "Manila Open", fmt.Sprintf("Manila, Philippines · March 14, %d", nextYear)) +
		"</body></html>"
	primary := newPageServer(t, html)
	mirror := newPageServer(t, "<html><body></body></html>")

	client := New(primary.URL, mirror.URL, 0)
	report, err := client.DebugDiscovery(nextYear, "Philippines")
	if err != nil {
		t.Fatalf("DebugDiscovery() error: %v", err)
	}

	for _, want := range []string{
		"Unique candidates: 1",
		"Country hits (Philippines): 1",
		fmt.Sprintf("Year hits (%d): 1", nextYear),
		"https://smoothcomp.com/en/event/101/manila-open",
		"Mirror source",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func eventNames(events []*event.Event) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	return names
}
