package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/calendar"
	"github.com/pfrederiksen/tourna-events/internal/logger"
	"github.com/pfrederiksen/tourna-events/internal/storage"
	"github.com/spf13/cobra"
)

func newDiscoverCmd() *cobra.Command {
	var (
		flagYear    int
		flagCountry string
		flagFormat  string
		flagICS     string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run the tiered discovery cascade over the listing site",
		Long: `Discover upcoming tournaments, preferring events matching the requested
country and year and widening the net tier by tier when nothing matches.
Results are saved to the local snapshot for later roster lookups by id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			format, err := parseFormat(flagFormat)
			if err != nil {
				return err
			}

			year := flagYear
			if year == 0 {
				year = time.Now().Year()
			}
			country := flagCountry
			if country == "" {
				country = settings.DefaultCountry
			}

			client := newEngine(settings)
			events, err := client.FetchEvents(year, country)
			if err != nil {
				return fmt.Errorf("fetching events: %w", err)
			}

			store, err := storage.New(settings.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}
			if err := store.SaveEvents(events); err != nil {
				logger.Warn("saving snapshot failed", logger.Fields{"error": err.Error()})
			}

			if flagICS != "" {
				ics := calendar.GenerateICS(events, fmt.Sprintf("Tournaments %d", year))
				if err := os.WriteFile(flagICS, []byte(ics), 0644); err != nil {
					return fmt.Errorf("writing calendar file: %w", err)
				}
			}

			return WriteEvents(cmd.OutOrStdout(), events, format)
		},
	}

	cmd.Flags().IntVar(&flagYear, "year", 0, "Target year (default: current year)")
	cmd.Flags().StringVar(&flagCountry, "country", "", "Target country (default from config)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Write discovered events to an .ics file")

	return cmd
}
