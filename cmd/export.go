package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calendar-assistant/internal/calendar"
)

// maxExportResults is the largest page the Calendar API returns.
const maxExportResults = 2500

func newExportCmd() *cobra.Command {
	var (
		days       int
		output     string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export upcoming events as iCalendar",
		Long: `Write the upcoming events of the configured calendar as an iCalendar
(.ics) file, or to stdout when --output is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			if maxResults < 1 || maxResults > maxExportResults {
				return fmt.Errorf("--max-results must be between 1 and %d", maxExportResults)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			svc, err := newServiceFactory(ctx, cfg, slog.Default(), nil)(ctx)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			events, err := svc.ListEvents(ctx, calendar.ListOptions{
				CalendarID: cfg.CalendarID,
				TimeMin:    now,
				TimeMax:    now.AddDate(0, 0, days),
				MaxResults: maxResults,
			})
			if err != nil {
				return err
			}

			if len(events) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "No events in the next %d days, nothing exported.\n", days)
				return nil
			}

			if output == "" || output == "-" {
				return calendar.EncodeICS(cmd.OutOrStdout(), events)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := calendar.EncodeICS(f, events); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "✅ Exported %d events to %s\n", len(events), output)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Number of days ahead to export")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVar(&maxResults, "max-results", 250, "Maximum number of events to export")

	return cmd
}
