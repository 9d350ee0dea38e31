package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/config"
	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/storage"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"yaml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := parseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestWriteEventsText(t *testing.T) {
	events := []*event.Event{
		{
			ID: "123", Name: "Manila Open", URL: "https://smoothcomp.com/en/event/123",
			Location: "Manila", Country: "Philippines",
			StartDate: datePtr(2026, time.March, 14), EndDate: datePtr(2026, time.March, 15),
		},
		{ID: "456", Name: "Mystery Event", URL: "https://smoothcomp.com/en/event/456"},
	}

	var buf bytes.Buffer
	if err := WriteEvents(&buf, events, FormatText); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"1. Manila Open",
		"   ID: 123",
		"   Date: Mar 14, 2026 - Mar 15, 2026",
		"   Location: Manila, Philippines",
		"2. Mystery Event",
		"   Date: TBD",
		"Total: 2 events",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q:\n%s", line, out)
		}
	}
}

func TestWriteEventsTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, nil, FormatText); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}
	if got := buf.String(); got != "No events found.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriteEventsJSON(t *testing.T) {
	events := []*event.Event{
		{ID: "123", Name: "Manila Open", URL: "https://smoothcomp.com/en/event/123"},
	}

	var buf bytes.Buffer
	if err := WriteEvents(&buf, events, FormatJSON); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}

	var decoded []*event.Event
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 || decoded[0].Name != "Manila Open" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteRosterText(t *testing.T) {
	ev := &event.Event{ID: "500", Name: "Visayas Open", URL: "https://smoothcomp.com/en/event/500"}
	rows := []*event.CompetitorSchedule{
		{CompetitorName: "Jane Cruz", Academy: "Alpha BJJ", Division: "Adult -57kg", MatchTime: "11:45", Mat: "3", Opponent: "Mia Reyes"},
		{CompetitorName: "Alice Santos", Academy: "Alpha BJJ", Division: "Adult -64kg", MatchTime: "10:30", Mat: "2", Opponent: "TBD"},
	}

	var buf bytes.Buffer
	if err := WriteRoster(&buf, ev, rows, []string{"alpha"}, FormatText); err != nil {
		t.Fatalf("WriteRoster() error = %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"Visayas Open (https://smoothcomp.com/en/event/500)",
		"Affiliate filter: alpha",
		"Alice Santos (Alpha BJJ)",
		"  Division: Adult -64kg | Time: 10:30 | Mat: 2 | Opponent: TBD",
		"Total: 2 rows across 2 competitors",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q:\n%s", line, out)
		}
	}

	// Competitors render in name order.
	if strings.Index(out, "Alice Santos") > strings.Index(out, "Jane Cruz") {
		t.Error("competitors out of order")
	}
}

func TestWriteRosterTextEmpty(t *testing.T) {
	ev := &event.Event{ID: "500", Name: "Visayas Open", URL: "https://smoothcomp.com/en/event/500"}

	var buf bytes.Buffer
	if err := WriteRoster(&buf, ev, nil, nil, FormatText); err != nil {
		t.Fatalf("WriteRoster() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No team competitors found for this event.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestResolveEventFromSnapshot(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	want := &event.Event{ID: "12345", Name: "Manila Open", URL: "https://smoothcomp.com/en/event/12345"}
	if err := store.SaveEvents([]*event.Event{want}); err != nil {
		t.Fatalf("SaveEvents() error = %v", err)
	}

	// The client's endpoints are never contacted on a snapshot hit.
	settings := config.Default()
	settings.EventsURL = "http://127.0.0.1:1/events"
	settings.MirrorEventsURL = "http://127.0.0.1:1/mirror"
	client := newEngine(settings)

	got, err := resolveEvent(client, store, settings, "12345")
	if err != nil {
		t.Fatalf("resolveEvent() error = %v", err)
	}
	if got.Name != "Manila Open" || got.ID != "12345" {
		t.Errorf("resolveEvent() = %+v", got)
	}
}

func TestResolveEventByNameQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div>
			<a href="/en/event/201/manila-open">Manila Open 2026</a>
		</div></body></html>`))
	})
	mux.HandleFunc("/mirror", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	settings := config.Default()
	settings.EventsURL = srv.URL + "/events"
	settings.MirrorEventsURL = srv.URL + "/mirror"
	client := newEngine(settings)

	got, err := resolveEvent(client, nil, settings, "Manila Open 2026")
	if err != nil {
		t.Fatalf("resolveEvent() error = %v", err)
	}
	if got.ID != "201" {
		t.Errorf("resolved event ID = %q, want 201", got.ID)
	}
	if got.Name != "Manila Open 2026" {
		t.Errorf("resolved event name = %q", got.Name)
	}
}

func TestRootCmdHasSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"discover", "search", "roster", "hints"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}
