package cli

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/tourna-events/internal/storage"
	"github.com/spf13/cobra"
)

const (
	affiliateHintLimit = 12
	personHintLimit    = 15
)

func newHintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hints EVENT",
		Short: "Show affiliate labels and competitors detected on an event",
		Long: `Run extraction with no keyword filter and report the academy labels and
competitor names seen on the event's pages, for calibrating the affiliate
keyword filter.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			client := newEngine(settings)
			store, _ := storage.New(settings.DataDir)

			ev, err := resolveEvent(client, store, settings, strings.Join(args, " "))
			if err != nil {
				return err
			}

			affiliates := client.DetectAffiliates(ev, affiliateHintLimit)
			people := client.DetectPeople(ev, personHintLimit)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", ev.Name, ev.URL)

			if len(affiliates) == 0 && len(people) == 0 {
				fmt.Fprintln(out, "\nNothing detected on this event's pages.")
				return nil
			}

			if len(affiliates) > 0 {
				fmt.Fprintln(out, "\nDetected affiliate labels:")
				for _, name := range affiliates {
					fmt.Fprintf(out, "  %s\n", name)
				}
			}
			if len(people) > 0 {
				fmt.Fprintln(out, "\nDetected competitors:")
				for _, p := range people {
					fmt.Fprintf(out, "  %s (%s)\n", p.Name, p.Division)
				}
			}
			return nil
		},
	}

	return cmd
}
