// Package config provides application settings for the keyrun host using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Settings come from .keyrun.yml, KEYRUN_-prefixed environment variables,
// and flags, in flag > env > file precedence. This covers host behavior
// only; the commands document itself is the loader package's concern.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Commands CommandsConfig `yaml:"commands"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
}

// CommandsConfig locates the commands document.
type CommandsConfig struct {
	File string `yaml:"file"`
}

// ServerConfig controls the localhost control server.
type ServerConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	MaxConns       int      `yaml:"max_conns"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WatchConfig controls commands-document watching.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// HistoryConfig controls the launch-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// LogConfig controls host logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds the configuration from the already-initialized viper state
// and validates it.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Viper's Unmarshal matches on field names, so snake_case and typed
	// keys are picked up explicitly.
	if viper.IsSet("commands.file") {
		config.Commands.File = viper.GetString("commands.file")
	}
	if viper.IsSet("server.max_conns") {
		config.Server.MaxConns = viper.GetInt("server.max_conns")
	}
	if viper.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}
	if viper.IsSet("watch.debounce") {
		config.Watch.Debounce = viper.GetDuration("watch.debounce")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Commands.File == "" {
		config.Commands.File = "commands.yml"
	}
	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 7345
	}
	if config.Server.MaxConns == 0 {
		config.Server.MaxConns = 32
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 250 * time.Millisecond
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateWatchConfig(&config.Watch); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if strings.TrimSpace(config.Commands.File) == "" {
		return fmt.Errorf("commands config: file must not be empty")
	}
	return nil
}

// validateServerConfig checks listener values before they reach the OS.
func validateServerConfig(config *ServerConfig) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		// No characters that could smuggle a second command if the host
		// string ever reaches a shell.
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	if config.MaxConns < 1 {
		return fmt.Errorf("max_conns %d must be at least 1", config.MaxConns)
	}

	return nil
}

func validateWatchConfig(config *WatchConfig) error {
	if config.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if config.Debounce > time.Minute {
		return fmt.Errorf("debounce %s is longer than a minute; reloads would look broken", config.Debounce)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch config.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.Level)
	}
	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.Format)
	}
	return nil
}
