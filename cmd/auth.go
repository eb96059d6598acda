package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calendar-assistant/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		port      string
		noBrowser bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Run the OAuth consent flow for the configured credentials file and
store the resulting token in the configured token file.

A temporary callback server listens on localhost while the browser
completes the consent screen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			conf, err := google.LoadOAuthConfig(cfg.CredentialsFile, google.CalendarScopes...)
			if err != nil {
				return withAuthHint(err)
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			flow := &google.LocalServerFlow{
				Config:  conf,
				Port:    port,
				Out:     cmd.ErrOrStderr(),
				Timeout: timeout,
			}
			if noBrowser {
				flow.OpenBrowser = func(string) error { return fmt.Errorf("browser disabled") }
			}

			tok, err := flow.Run(ctx)
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			if err := google.WriteToken(cfg.TokenFile, tok); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Token saved to %s\n", cfg.TokenFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", google.DefaultRedirectPort, "Local port for the OAuth callback")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for the authorization")

	return cmd
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
