package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/executor"
	"github.com/keyrun-app/keyrun/internal/loader"
	"github.com/keyrun-app/keyrun/internal/registry"
)

var validateCmd = &cobra.Command{
	Use:     "validate [file]",
	Aliases: []string{"v"},
	Short:   "Check a commands document without loading it",
	Long: `Parse and validate a commands document, reporting parse positions on
failure and duplicate names that would collapse into one entry. The file
argument defaults to the configured commands document; YAML, TOML, and
JSON are detected by extension.

Examples:
  keyrun validate                  # Validate the configured document
  keyrun validate commands.toml    # Validate a specific file`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		path = cfg.Commands.File
	}

	commands, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s: %v\n", path, err)
		return err
	}

	fmt.Printf("✅ %s: %d commands (%s)\n", path, len(commands), loader.DetectFormat(path))

	// Duplicate names collapse to the last entry when loaded; surface them.
	seen := make(map[string]string, len(commands))
	duplicates := 0
	for _, command := range commands {
		key := registry.Fold(command.Name)
		if prior, ok := seen[key]; ok {
			duplicates++
			fmt.Printf("⚠️  duplicate name %q (also defined as %q); the last entry wins\n",
				command.Name, prior)
		}
		seen[key] = command.Name
	}

	for _, command := range commands {
		fmt.Printf("   %-16s %-10s %s\n",
			command.Name, executor.Classify(command.Target), command.Target)
	}

	if duplicates > 0 {
		fmt.Printf("\n%d duplicate name(s); the registry keeps the last definition of each.\n", duplicates)
	}
	return nil
}
