package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/calendar-assistant/internal/config"
	"github.com/teemow/calendar-assistant/internal/logging"
)

// serverName is the MCP implementation name announced to clients.
const serverName = "google-calendar-assistant"

var (
	// v holds the layered configuration shared by all commands.
	v = viper.New()

	cfgFile string
	envFile string
)

// rootCmd represents the base command for the calendar-assistant application
var rootCmd = &cobra.Command{
	Use:   "calendar-assistant",
	Short: "Google Calendar tools for AI assistants over MCP",
	Long: `calendar-assistant exposes Google Calendar operations (list, search,
create, update and delete events, free/busy checks) as MCP tools.

It can run as:
  - An MCP server over stdio or streamable HTTP (default: serve)
  - A CLI to authorize access, verify the setup, call a tool or export events

Settings are read from flags, CALENDAR_ASSISTANT_* environment variables,
an optional config file and an optional .env file, in that order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(ver string) {
	version = ver
	rootCmd.Version = ver
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calendar-assistant version %s\n" .Version}}`)

	// If no subcommand is provided, run the MCP server by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/calendar-assistant/config.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before anything else")
	flags.String("credentials-file", "credentials.json", "OAuth client credentials file downloaded from the Google Cloud console")
	flags.String("token-file", "token.json", "File holding the persisted OAuth token")
	flags.String("calendar-id", "primary", "Calendar used when a tool call does not name one")
	flags.String("timezone", "UTC", "IANA time zone for times given without an offset")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")

	bindFlags(flags, map[string]string{
		config.KeyCredentialsFile: "credentials-file",
		config.KeyTokenFile:       "token-file",
		config.KeyCalendarID:      "calendar-id",
		config.KeyTimeZone:        "timezone",
		config.KeyLogLevel:        "log-level",
		config.KeyLogFormat:       "log-format",
	})

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newCallCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// bindFlags binds config keys to the named flags so that an explicitly set
// flag wins over environment variables and the config file.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// initConfig loads the .env file and the config file, then installs the
// default logger. Logs go to stderr; stdout carries the stdio transport.
func initConfig() error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	used, err := config.Init(v, cfgFile)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:  v.GetString(config.KeyLogLevel),
		Format: v.GetString(config.KeyLogFormat),
		Writer: os.Stderr,
	})
	slog.SetDefault(logger)

	if used != "" {
		logger.Debug("loaded config file", "path", used)
	}
	return nil
}

// loadConfig resolves and validates the configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
