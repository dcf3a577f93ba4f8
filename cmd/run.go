package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyrun-app/keyrun/internal/app"
	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/input"
)

var runFormat string

var runCmd = &cobra.Command{
	Use:     "run <input>",
	Aliases: []string{"r"},
	Short:   "Resolve and launch one input line",
	Long: `Resolve one input line exactly as the launcher would and start the
resulting process. The input can be a registered command name with extra
arguments, a raw URL, or a file path.

Examples:
  keyrun run mail                      # Launch a registered command
  keyrun run "gg main.go"              # Registered command with arguments
  keyrun run https://example.com       # Raw URL, no registration needed
  keyrun run ~/notes/todo.md           # Raw path
  keyrun run '!reload' --format json   # Specials work too`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFormat, "format", "f", "text", "Output format (text|json)")
	runCmd.Flags().StringP("commands-file", "c", "commands.yml", "Commands document path")

	AddFlagValidation(runCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"text", "json"})
	})
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyCommandsFileFlag(cmd, cfg)

	log := newLogger(cfg)
	ctx := context.Background()

	store := openHistory(ctx, cfg, log)
	if store != nil {
		defer store.Close()
	}

	session := openSession(ctx, cfg, store, log)

	result, err := session.Dispatch(ctx, args[0])
	if err != nil {
		return err
	}

	if runFormat == "json" {
		return outputRunJSON(result, session.CommandCount())
	}

	switch result.Kind {
	case input.Normal:
		fmt.Printf("Launched %s (pid %d)\n", result.Launch.Spec.Target, result.Launch.PID)
	case input.Reload:
		fmt.Printf("Reloaded: %d commands\n", session.CommandCount())
	case input.Version:
		fmt.Println(result.Version)
	case input.Exit:
		fmt.Println("Nothing to exit: run is one-shot. Use !exit inside 'keyrun interactive'.")
	}

	return nil
}

func outputRunJSON(result *app.Result, commandCount int) error {
	payload := map[string]interface{}{
		"kind": result.Kind.String(),
	}
	switch result.Kind {
	case input.Normal:
		payload["launch"] = result.Launch
	case input.Reload:
		payload["commands"] = commandCount
	case input.Version:
		payload["version"] = result.Version
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
