package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/config"
	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/logger"
	"github.com/pfrederiksen/tourna-events/internal/smoothcomp"
	"github.com/pfrederiksen/tourna-events/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tourna-events",
		Short: "Discover tournaments and extract team competitor schedules",
		Long: `A CLI for discovering tournaments on the Smoothcomp listing site and
extracting your team's competitor schedules from loosely structured event
pages. Discovery results are snapshotted locally so roster lookups by id
can skip the network.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for snapshots (default from config)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newDiscoverCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newRosterCmd())
	cmd.AddCommand(newHintsCmd())

	return cmd
}

// loadSettings builds effective settings for one command run.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		settings.DataDir = flagDataDir
	}

	level := logger.ParseLevel(settings.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	return settings, nil
}

// newEngine builds the scraping client from settings.
func newEngine(settings *config.Settings) *smoothcomp.Client {
	return smoothcomp.New(settings.EventsURL, settings.MirrorEventsURL, settings.Timeout())
}

// resolveEvent turns an event reference (URL, id, or name query) into a
// resolved event. Ids are served from the local snapshot when possible;
// everything else goes through the engine.
func resolveEvent(client *smoothcomp.Client, store *storage.Store, settings *config.Settings, ref string) (*event.Event, error) {
	if url := event.MatchEventURL(ref); url != "" {
		ev, err := client.FetchEventByURL(url, settings.DefaultCountry)
		if err != nil {
			return nil, fmt.Errorf("resolving event URL: %w", err)
		}
		if ev == nil {
			return nil, fmt.Errorf("could not load event page %s", url)
		}
		return ev, nil
	}

	if id := event.MatchEventID(ref); id != "" {
		if store != nil {
			if ev, err := store.GetEventByID(id); err == nil && ev != nil {
				logger.Debug("event served from snapshot", logger.Fields{"event_id": id})
				return ev, nil
			}
		}
		ev, err := client.FetchEventByID(id, settings.DefaultCountry)
		if err != nil {
			return nil, fmt.Errorf("resolving event id: %w", err)
		}
		if ev == nil {
			return nil, fmt.Errorf("no event found for id %s", id)
		}
		return ev, nil
	}

	year := event.MatchYear(ref, time.Now().Year())
	events, err := client.SearchEventsByName(ref, year, settings.DefaultCountry, 1)
	if err != nil {
		return nil, fmt.Errorf("searching events: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no event matched %q", ref)
	}
	return events[0], nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
