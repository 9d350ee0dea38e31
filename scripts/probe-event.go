//go:build ignore

// Manual probe for live extraction runs:
//
//	go run scripts/probe-event.go "https://smoothcomp.com/en/event/26935"
//	go run scripts/probe-event.go 26935
//	go run scripts/probe-event.go "Hyperfly Asian Open 2026"
//
// Resolves the reference, runs competitor extraction with the keywords from
// TEAM_AFFILIATE_KEYWORDS (unfiltered when unset), and dumps the rows and
// detection hints. Development aid only.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/config"
	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/smoothcomp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/probe-event.go <event URL | id | name query>")
		os.Exit(1)
	}
	ref := strings.Join(os.Args[1:], " ")

	settings := config.FromEnv()
	client := smoothcomp.New(settings.EventsURL, settings.MirrorEventsURL, settings.Timeout())

	ev, err := resolve(client, settings, ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Event:    %s (id %s)\n", ev.Name, ev.ID)
	fmt.Printf("URL:      %s\n", ev.URL)
	fmt.Printf("Country:  %s\n", ev.Country)
	fmt.Printf("Location: %s\n", ev.Location)
	if ev.StartDate != nil {
		fmt.Printf("Start:    %s\n", ev.StartDate.Format("2006-01-02"))
	}
	if ev.EndDate != nil {
		fmt.Printf("End:      %s\n", ev.EndDate.Format("2006-01-02"))
	}

	fmt.Printf("\nKeywords: %v\n", settings.AffiliateKeywords)
	rows := client.FetchCompetitors(ev, settings.AffiliateKeywords)
	fmt.Printf("Rows:     %d\n\n", len(rows))
	for _, row := range rows {
		fmt.Printf("  %-28s | %-14s | %-40s | %-8s | %-8s | %s\n",
			row.CompetitorName, row.Academy, row.Division, row.MatchTime, row.Mat, row.Opponent)
	}

	fmt.Println("\nAffiliate hints:")
	for _, name := range client.DetectAffiliates(ev, 12) {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("\nPerson hints:")
	for _, p := range client.DetectPeople(ev, 15) {
		fmt.Printf("  %s (%s)\n", p.Name, p.Division)
	}
}

func resolve(client *smoothcomp.Client, settings *config.Settings, ref string) (*event.Event, error) {
	if url := event.MatchEventURL(ref); url != "" {
		ev, err := client.FetchEventByURL(url, settings.DefaultCountry)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, fmt.Errorf("could not load %s", url)
		}
		return ev, nil
	}
	if id := event.MatchEventID(ref); id != "" {
		ev, err := client.FetchEventByID(id, settings.DefaultCountry)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, fmt.Errorf("no event found for id %s", id)
		}
		return ev, nil
	}
	matches, err := client.SearchEventsByName(ref, event.MatchYear(ref, time.Now().Year()), settings.DefaultCountry, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no event matched %q", ref)
	}
	return matches[0], nil
}
