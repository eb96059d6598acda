package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/calendar-assistant/internal/server"
	"github.com/teemow/calendar-assistant/internal/tools/calendar_tools"
)

// errToolFailed is returned after a tool reported a provider failure; its
// message has already been printed.
var errToolFailed = errors.New("tool call failed")

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool> [key=value ...]",
		Short: "Invoke a calendar tool once and print its result",
		Long: `Invoke one of the calendar tools without an MCP client and print the
text it returns.

Arguments are given as key=value pairs. Values starting with [ or { are
decoded as JSON, everything else is passed as a string.

Examples:
  calendar-assistant call get_today_events
  calendar-assistant call list_events days_ahead=3 max_results=5
  calendar-assistant call create_event summary=Standup \
      start_time=2024-01-15T10:00:00 end_time=2024-01-15T10:15:00 \
      'attendees=["a@example.com","b@example.com"]'`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, kind := range calendar_tools.Kinds() {
				names = append(names, kind.Name())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseCallArgs(args[1:])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			logger := slog.Default()
			sc := server.NewServerContext(ctx, newServiceFactory(ctx, cfg, logger, nil))
			defer func() { _ = sc.Shutdown() }()

			opts, err := dispatcherOptions(cfg, logger)
			if err != nil {
				return err
			}
			d := calendar_tools.NewDispatcher(sc, opts...)

			res, err := d.Invoke(ctx, args[0], toolArgs)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			if res.Failed {
				return errToolFailed
			}
			return nil
		},
	}

	return cmd
}

// parseCallArgs turns key=value pairs into a tool argument map.
func parseCallArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}
		if _, dup := args[key]; dup {
			return nil, fmt.Errorf("argument %q given more than once", key)
		}

		if strings.HasPrefix(value, "[") || strings.HasPrefix(value, "{") {
			var decoded any
			if err := json.Unmarshal([]byte(value), &decoded); err != nil {
				return nil, fmt.Errorf("invalid JSON for %s: %w", key, err)
			}
			args[key] = decoded
			continue
		}
		args[key] = value
	}
	return args, nil
}
