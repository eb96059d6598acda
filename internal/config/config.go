// Package config resolves the server's settings from flags, environment,
// an optional config file and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read through viper,
// e.g. CALENDAR_ASSISTANT_CALENDAR_ID.
const EnvPrefix = "CALENDAR_ASSISTANT"

// Configuration keys.
const (
	KeyCredentialsFile = "credentials_file"
	KeyTokenFile       = "token_file"
	KeyCalendarID      = "calendar_id"
	KeyTimeZone        = "timezone"
	KeyRequestTimeout  = "request_timeout"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyTransport       = "transport"
	KeyHTTPAddr        = "http_addr"
	KeyReadOnly        = "read_only"
	KeyMetricsEnabled  = "metrics_enabled"
	KeyMetricsAddr     = "metrics_addr"
	KeyInferenceURL    = "inference_url"
	KeyInferenceModel  = "inference_model"
)

// Supported MCP transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config is the resolved configuration.
type Config struct {
	CredentialsFile string
	TokenFile       string
	CalendarID      string
	TimeZone        string
	RequestTimeout  time.Duration

	LogLevel  string
	LogFormat string

	Transport string
	HTTPAddr  string
	ReadOnly  bool

	MetricsEnabled bool
	MetricsAddr    string

	// InferenceURL and InferenceModel are only checked by the verify command.
	InferenceURL   string
	InferenceModel string
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCredentialsFile, "credentials.json")
	v.SetDefault(KeyTokenFile, "token.json")
	v.SetDefault(KeyCalendarID, "primary")
	v.SetDefault(KeyTimeZone, "UTC")
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyTransport, TransportStdio)
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyReadOnly, false)
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyMetricsAddr, ":9090")
	v.SetDefault(KeyInferenceURL, "http://localhost:11434")
	v.SetDefault(KeyInferenceModel, "llama3.2:3b")
}

// Init prepares v: defaults, environment binding and the config file.
// An explicit configFile must exist; the default location is optional.
// It returns the config file used, if any.
func Init(v *viper.Viper, configFile string) (string, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return "", nil
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load reads the resolved settings from v and validates them.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		CredentialsFile: ExpandPath(v.GetString(KeyCredentialsFile)),
		TokenFile:       ExpandPath(v.GetString(KeyTokenFile)),
		CalendarID:      v.GetString(KeyCalendarID),
		TimeZone:        v.GetString(KeyTimeZone),
		RequestTimeout:  v.GetDuration(KeyRequestTimeout),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		Transport:       v.GetString(KeyTransport),
		HTTPAddr:        v.GetString(KeyHTTPAddr),
		ReadOnly:        v.GetBool(KeyReadOnly),
		MetricsEnabled:  v.GetBool(KeyMetricsEnabled),
		MetricsAddr:     v.GetString(KeyMetricsAddr),
		InferenceURL:    v.GetString(KeyInferenceURL),
		InferenceModel:  v.GetString(KeyInferenceModel),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyRequestTimeout, c.RequestTimeout)
	}
	switch c.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport %q, must be one of: %s, %s", c.Transport, TransportStdio, TransportStreamableHTTP)
	}
	if c.CalendarID == "" {
		return fmt.Errorf("%s must not be empty", KeyCalendarID)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid %s %q: %w", KeyTimeZone, c.TimeZone, err)
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ConfigDir returns the directory holding config.yaml,
// $XDG_CONFIG_HOME/calendar-assistant or its platform equivalent.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "calendar-assistant"), nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
