package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/storage"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		flagYear   int
		flagLimit  int
		flagFormat string
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Fuzzy-match events by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			format, err := parseFormat(flagFormat)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			year := flagYear
			if year == 0 {
				year = event.MatchYear(query, time.Now().Year())
			}

			client := newEngine(settings)
			events, err := client.SearchEventsByName(query, year, settings.DefaultCountry, flagLimit)
			if err != nil {
				return fmt.Errorf("searching events: %w", err)
			}

			if store, err := storage.New(settings.DataDir); err == nil {
				store.SaveEvents(events)
			}

			return WriteEvents(cmd.OutOrStdout(), events, format)
		},
	}

	cmd.Flags().IntVar(&flagYear, "year", 0, "Target year (default: year in the query, else current year)")
	cmd.Flags().IntVar(&flagLimit, "limit", 10, "Maximum number of matches")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	return cmd
}
