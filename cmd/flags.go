package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags
	Port int    `flag:"port,p" desc:"Control server port" default:"7345"`
	Host string `flag:"host" desc:"Control server host" default:"127.0.0.1"`

	// Commands-document flags
	CommandsFile string `flag:"commands-file,c" desc:"Commands document path" default:""`

	// Output flags
	Format  string `flag:"format,f" desc:"Output format (table|json|yaml)" default:"table"`
	Verbose bool   `flag:"verbose,v" desc:"Enable verbose output" default:"false"`
	Quiet   bool   `flag:"quiet,q" desc:"Suppress output" default:"false"`
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "commands":
			addCommandsFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 7345, "Control server port")
	cmd.Flags().StringVar(&flags.Host, "host", "127.0.0.1", "Control server host")
}

func addCommandsFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.CommandsFile, "commands-file", "c", "", "Commands document path (overrides config)")
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Port < 0 || f.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", f.Port)
	}

	if f.Format != "" {
		if err := ValidateFormat(f.Format, []string{"table", "json", "yaml"}); err != nil {
			return err
		}
	}

	// Quiet and verbose are mutually exclusive
	if f.Quiet && f.Verbose {
		return fmt.Errorf("cannot specify both --quiet and --verbose")
	}

	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	originalSet := flag.Value.Set

	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidatePort checks that a flag value is a usable TCP port.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}

	return nil
}

// ValidateFileExists rejects paths that do not point at an existing file.
// Empty is valid for optional files.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}

// ValidateFormat checks an output format against the allowed set and
// suggests the closest match on a miss.
func ValidateFormat(format string, allowed []string) error {
	lowered := strings.ToLower(format)
	for _, candidate := range allowed {
		if lowered == candidate {
			return nil
		}
	}

	for _, candidate := range allowed {
		if strings.HasPrefix(candidate, lowered) {
			return fmt.Errorf("invalid format %q, did you mean %q? (supported: %s)",
				format, candidate, strings.Join(allowed, ", "))
		}
	}

	return fmt.Errorf("invalid format %q, must be one of: %s", format, strings.Join(allowed, ", "))
}
