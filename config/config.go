package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (l LogLevel) ToSlog() slog.Level {
	switch LogLevel(strings.ToUpper(string(l))) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type LogFormat string

const (
	LogFormatPlaintext LogFormat = "plaintext"
	LogFormatJSON      LogFormat = "json"
)

type AppEnv string

const (
	AppEnvDev        AppEnv = "dev"
	AppEnvProduction AppEnv = "production"
)

type Config struct {
	App       AppConfig
	Sentry    SentryConfig
	Log       LogConfig
	Templates TemplatesConfig
	Assets    AssetsConfig
}

type AppConfig struct {
	Debug           bool
	SSL             bool
	Port            uint32
	ProxyPort       uint32
	Host            string
	URL             string
	Name            string
	ShutdownTimeout int32 // in seconds
	Env             AppEnv
	Version         string
	RequestTimeout  uint32 // in seconds
}

type SentryConfig struct {
	Enabled    bool
	DSN        string
	SampleRate float64
	TracesRate float64
}

type LogConfig struct {
	Format  LogFormat
	Level   LogLevel
	Verbose bool
}

type TemplatesConfig struct {
	// Directory that is scanned (non-recursively) for templates
	Dir string
	// Reload the template set whenever a file in Dir changes
	Watch bool
	// Debounce timer between a file change and the resulting reload, in milliseconds
	Debounce int32
}

type AssetsConfig struct {
	// Flat directory served under /assets/js/
	Scripts string
}

// Defaults holds every value that is used when neither config.toml nor the environment set it.
var Defaults = map[string]any{
	"app_debug":           false,
	"app_ssl":             false,
	"app_url":             "",
	"app_proxyport":       0,
	"app_host":            "0.0.0.0",
	"app_port":            3000,
	"app_name":            "hermes",
	"app_env":             string(AppEnvProduction),
	"app_version":         "dev",
	"app_shutdowntimeout": 2,
	"app_requesttimeout":  30,
	"log_format":          string(LogFormatJSON),
	"log_level":           string(LogLevelInfo),
	"log_verbose":         false,
	"templates_watch":     false,
	"templates_dir":       "templates",
	"templates_debounce":  200,
	"assets_scripts":      "assets/js",
	"sentry_enabled":      false,
	"sentry_dsn":          "",
	"sentry_samplerate":   1.0,
	"sentry_tracesrate":   0.0,
}

func (c Config) BaseURL() string {
	url := c.App.URL
	// If no url was specified, build one from the host and port values
	if len(c.App.URL) == 0 {
		port := c.App.Port
		if c.App.ProxyPort > 0 {
			port = c.App.ProxyPort
		}
		url = fmt.Sprintf("%v:%v", c.App.Host, port)
	}
	protocol := "http"
	if c.App.SSL {
		protocol = "https"
	}
	return fmt.Sprintf(
		"%s://%s",
		protocol,
		url,
	)
}

// Address returns the host:port pair the server listens on.
func (c Config) Address() string {
	return fmt.Sprintf("%v:%v", c.App.Host, c.App.Port)
}

// WatchTemplates reports whether the template directory should be watched for changes.
// Watching is always on in debug mode.
func (c Config) WatchTemplates() bool {
	return c.Templates.Watch || c.App.Debug
}

func (c *Config) IsTest() bool {
	return flag.Lookup("test.v") != nil || strings.HasSuffix(os.Args[0], ".test") ||
		strings.Contains(os.Args[0], "/_test/")
}

// Load the configuration file from the specified filesystem.
// You can specify additional .env files to load, by default this only checks for ".env" in the
// current working directory.
// A missing config.toml is not an error, the defaults and the environment are used instead.
func Load(configFS fs.FS, dotenvFiles ...string) (*Config, error) {
	reader := viper.NewWithOptions(viper.KeyDelimiter("_"))
	reader.SetConfigType("toml")
	for key, value := range Defaults {
		reader.SetDefault(key, value)
	}

	file, err := configFS.Open("config.toml")
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("No config.toml found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("could not open config.toml: %w", err)
	default:
		defer file.Close()
		if err = reader.ReadConfig(file); err != nil {
			return nil, fmt.Errorf("could not load the app configuration: %w", err)
		}
	}

	// Environment override
	err = godotenv.Load(dotenvFiles...)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No .env file found, continuing...")
	} else if err != nil {
		return nil, fmt.Errorf(".env file found, but could not load it: %w", err)
	}
	reader.AutomaticEnv()

	var config Config
	if err := reader.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("invalid config format: %w", err)
	}

	if config.App.Debug && !config.IsTest() {
		slog.Warn("APP_DEBUG is turned on, do not run this mode in production!")
	}

	return &config, nil
}
