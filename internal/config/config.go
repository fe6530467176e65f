// Package config loads the application configuration and builds the logger.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/philipparndt/gowp/internal/prefs"
	"github.com/spf13/viper"
)

// Config is the application configuration
type Config struct {
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	PrefsPath     string        `mapstructure:"prefs_path"`
	WatchPrefs    bool          `mapstructure:"watch_prefs"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	Model         string        `mapstructure:"model"` // STL file loaded at start
	ServerName    string        `mapstructure:"server_name"`
}

// DefaultConfig returns the configuration used without file or environment
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		PrefsPath:     prefs.DefaultPath(),
		WatchPrefs:    true,
		WatchDebounce: 200 * time.Millisecond,
		ServerName:    "gowp",
	}
}

// Load reads gowp.yaml from the working directory or $HOME/.gowp, then
// applies GOWP_* environment variables and bound flags.
func Load() (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("gowp")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.gowp/")

	viper.SetEnvPrefix("GOWP")
	viper.AutomaticEnv()

	viper.SetDefault("log_level", config.LogLevel)
	viper.SetDefault("log_format", config.LogFormat)
	viper.SetDefault("prefs_path", config.PrefsPath)
	viper.SetDefault("watch_prefs", config.WatchPrefs)
	viper.SetDefault("watch_debounce", config.WatchDebounce)
	viper.SetDefault("model", config.Model)
	viper.SetDefault("server_name", config.ServerName)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func validate(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validLogFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validLogFormats[config.LogFormat] {
		return fmt.Errorf("invalid log format: %s", config.LogFormat)
	}

	if config.PrefsPath == "" {
		return fmt.Errorf("the preferences path cannot be empty")
	}
	if config.WatchDebounce < 0 {
		return fmt.Errorf("the watch debounce must not be negative")
	}
	return nil
}

// NewLogger builds the slog logger writing to stderr
func NewLogger(config *Config) *slog.Logger {
	var level slog.Level
	switch config.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if config.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
