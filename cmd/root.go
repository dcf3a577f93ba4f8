// Package cmd provides the command-line interface for keyrun with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --commands-file, etc.) - highest priority
//	2. KEYRUN_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (KEYRUN_SERVER_PORT, etc.)
//	4. Configuration files (.keyrun.yml) - lowest priority
//
// Environment Variables:
//
//	KEYRUN_CONFIG_FILE: Path to custom configuration file
//	KEYRUN_COMMANDS_FILE: Override commands document path
//	KEYRUN_SERVER_PORT: Override control server port
//	KEYRUN_WATCH_ENABLED: Enable/disable commands-document watching
//	And more following the KEYRUN_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "keyrun",
	Short: "A keyboard-driven command launcher",
	Long: `Keyrun maps short names to URLs, files, and programs, and launches them
from a couple of keystrokes. Commands live in a plain YAML, TOML, or JSON
document that reloads without restarting anything.

Key Features:
  • Named launch targets with prefix completion
  • Raw URL and file-path launching without registration
  • Live reload of the commands document
  • Localhost control API with a WebSocket event stream
  • Launch history

Quick Start:
  keyrun serve                    Start the launcher host
  keyrun interactive              Launch commands from a prompt
  keyrun run "mail"               Resolve and launch one input
  keyrun list                     Show registered commands
  keyrun validate                 Check the commands document

Command Aliases (for faster typing):
  serve (s), interactive (i), run (r), list (l), validate (v)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .keyrun.yml, can also use KEYRUN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system with support for multiple
// config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. KEYRUN_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .keyrun.yml in current directory
//
// A .env file in the working directory is loaded first when present, so
// KEYRUN_* variables can live there instead of the shell profile.
func initConfig() {
	// Ingest .env before env binding; missing files are fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("KEYRUN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".keyrun")
	}

	// Enable automatic environment variable binding with KEYRUN_ prefix
	// Examples: KEYRUN_SERVER_PORT, KEYRUN_COMMANDS_FILE, KEYRUN_WATCH_ENABLED
	viper.SetEnvPrefix("KEYRUN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable config file falls back to defaults.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the host logger from loaded settings. Logs go to stderr
// so command output stays pipeable.
func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}
