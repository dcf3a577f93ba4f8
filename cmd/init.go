package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create starter commands and settings documents",
	Long: `Create a starter commands document and settings file. If no directory is
provided, initializes in the current directory.

Existing files are never overwritten.

Examples:
  keyrun init                # commands.yml + .keyrun.yml in the current directory
  keyrun init ~/launcher     # Initialize a new directory
  keyrun init --minimal      # Settings file only, no example commands`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initMinimal bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "Skip the example commands document")
}

func runInit(cmd *cobra.Command, args []string) error {
	var targetDir string

	if len(args) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		targetDir = cwd
	} else {
		targetDir = args[0]
		if err := os.MkdirAll(targetDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	fmt.Printf("Initializing keyrun in %s\n", targetDir)

	if err := createSettingsFile(targetDir); err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}

	if !initMinimal {
		if err := createCommandsDocument(targetDir); err != nil {
			return fmt.Errorf("failed to create commands document: %w", err)
		}
	}

	fmt.Println("✓ Initialized successfully!")
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit commands.yml with your own commands")
	fmt.Println("  2. keyrun validate")
	fmt.Println("  3. keyrun serve")

	return nil
}

func createSettingsFile(targetDir string) error {
	settingsPath := filepath.Join(targetDir, ".keyrun.yml")

	if _, err := os.Stat(settingsPath); err == nil {
		fmt.Println("⚠ Settings file already exists, skipping")
		return nil
	}

	settings := `# keyrun settings. Environment variables with a KEYRUN_ prefix override
# these values, e.g. KEYRUN_SERVER_PORT=9000.

commands:
  file: commands.yml

server:
  enabled: true
  host: 127.0.0.1
  port: 7345
  # allowed_origins:
  #   - http://localhost:5173

watch:
  enabled: true
  debounce: 250ms

history:
  enabled: false
  # file: ~/.keyrun/launches.db

log:
  level: info
  format: text
`

	if err := os.WriteFile(settingsPath, []byte(settings), 0644); err != nil {
		return err
	}
	fmt.Println("✓ Created .keyrun.yml")
	return nil
}

func createCommandsDocument(targetDir string) error {
	commandsPath := filepath.Join(targetDir, "commands.yml")

	if _, err := os.Stat(commandsPath); err == nil {
		fmt.Println("⚠ Commands document already exists, skipping")
		return nil
	}

	document := `# keyrun commands. Each entry maps a short name to a target: a URL to
# open, a file or directory path, or an executable with optional arguments.

commands:
  - name: mail
    target: https://mail.google.com
    description: Web mail

  - name: cal
    target: https://calendar.google.com
    description: Calendar

  - name: notes
    target: ~/notes
    description: Notes directory

  - name: top
    target: htop
    description: Process monitor
`

	if err := os.WriteFile(commandsPath, []byte(document), 0644); err != nil {
		return err
	}
	fmt.Println("✓ Created commands.yml with example commands")
	return nil
}
