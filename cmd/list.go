package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/executor"
	"github.com/keyrun-app/keyrun/internal/logging"
	"github.com/keyrun-app/keyrun/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List registered commands",
	Long: `List the commands in the commands document with their resolved target
types.

Examples:
  keyrun list                     # Table output
  keyrun list -f json             # Output as JSON
  keyrun list -f yaml             # Output as YAML
  keyrun list -c work.toml        # List a specific document`,
	RunE: runList,
}

var listFlags *StandardFlags

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output", "commands")

	AddFlagValidation(listCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"table", "json", "yaml"})
	})
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyCommandsFileFlag(cmd, cfg)

	session := openSession(context.Background(), cfg, nil, logging.NewNop())
	commands := session.Commands()

	if len(commands) == 0 {
		fmt.Println("No commands registered.")
		return nil
	}

	if err := listFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	switch strings.ToLower(listFlags.Format) {
	case "json":
		return outputListJSON(commands)
	case "yaml":
		return outputListYAML(commands)
	case "table":
		return outputListTable(commands)
	default:
		return fmt.Errorf("unsupported format: %s", listFlags.Format)
	}
}

func outputListJSON(commands []types.Command) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]interface{}{
		"commands": commands,
		"count":    len(commands),
	})
}

func outputListYAML(commands []types.Command) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(map[string]interface{}{
		"commands": commands,
		"count":    len(commands),
	})
}

func outputListTable(commands []types.Command) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tTYPE\tTARGET\tDESCRIPTION")
	fmt.Fprintln(w, "----\t----\t------\t-----------")

	titler := cases.Title(language.English)
	for _, command := range commands {
		kind := titler.String(string(executor.Classify(command.Target)))
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			command.Name, kind, command.Target, command.Description)
	}

	fmt.Fprintf(w, "\nTotal: %d commands\n", len(commands))
	return nil
}
