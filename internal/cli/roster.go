package cli

import (
	"strings"

	"github.com/pfrederiksen/tourna-events/internal/storage"
	"github.com/spf13/cobra"
)

func newRosterCmd() *cobra.Command {
	var (
		flagKeywords []string
		flagFormat   string
	)

	cmd := &cobra.Command{
		Use:   "roster EVENT",
		Short: "Extract team competitor schedules for one event",
		Long: `Resolve EVENT (an event URL, a numeric id, or a name query) and print the
merged, deduplicated competitor schedule for athletes matching the affiliate
keyword filter. Ids are served from the local discovery snapshot when
available. With no keywords configured, every extracted row is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			format, err := parseFormat(flagFormat)
			if err != nil {
				return err
			}

			keywords := settings.AffiliateKeywords
			if len(flagKeywords) > 0 {
				keywords = nil
				for _, kw := range flagKeywords {
					kw = strings.ToLower(strings.TrimSpace(kw))
					if kw != "" {
						keywords = append(keywords, kw)
					}
				}
			}

			client := newEngine(settings)
			store, _ := storage.New(settings.DataDir)

			ev, err := resolveEvent(client, store, settings, strings.Join(args, " "))
			if err != nil {
				return err
			}

			rows := client.FetchCompetitors(ev, keywords)
			return WriteRoster(cmd.OutOrStdout(), ev, rows, keywords, format)
		},
	}

	cmd.Flags().StringArrayVar(&flagKeywords, "keyword", nil, "Affiliate keyword filter (repeatable; overrides config)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	return cmd
}
