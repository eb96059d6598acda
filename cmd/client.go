package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teemow/calendar-assistant/internal/calendar"
	"github.com/teemow/calendar-assistant/internal/config"
	"github.com/teemow/calendar-assistant/internal/google"
	"github.com/teemow/calendar-assistant/internal/instrumentation"
	"github.com/teemow/calendar-assistant/internal/logging"
	"github.com/teemow/calendar-assistant/internal/server"
	"github.com/teemow/calendar-assistant/internal/tools/calendar_tools"
)

// newServiceFactory returns a factory building the Google Calendar client
// from the configured credential files. The client is bound to baseCtx
// because its token source refreshes long after the triggering call ends.
func newServiceFactory(baseCtx context.Context, cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) server.ServiceFactory {
	return func(context.Context) (calendar.EventService, error) {
		client, err := calendar.NewClientFromFiles(baseCtx, cfg.CredentialsFile, cfg.TokenFile,
			calendar.WithLogger(logging.NewSlogAdapter(logger)),
			calendar.WithDefaultCalendar(cfg.CalendarID),
			calendar.WithDefaultTimeZone(cfg.TimeZone),
			calendar.WithTimeout(cfg.RequestTimeout),
			calendar.WithMetrics(metrics),
		)
		if err != nil {
			return nil, withAuthHint(err)
		}
		return client, nil
	}
}

// withAuthHint points the user at the command that fixes a missing setup.
func withAuthHint(err error) error {
	switch {
	case errors.Is(err, google.ErrNoCredentials):
		return fmt.Errorf("%w: download an OAuth client (Desktop app) from the Google Cloud console", err)
	case errors.Is(err, google.ErrNoToken):
		return fmt.Errorf("%w: run 'calendar-assistant auth' first", err)
	default:
		return err
	}
}

// dispatcherOptions maps the configuration onto the tool dispatcher.
func dispatcherOptions(cfg *config.Config, logger *slog.Logger) ([]calendar_tools.Option, error) {
	loc, err := calendar.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.TimeZone, err)
	}
	return []calendar_tools.Option{
		calendar_tools.WithLogger(logger),
		calendar_tools.WithDefaultCalendar(cfg.CalendarID),
		calendar_tools.WithLocation(loc),
	}, nil
}
