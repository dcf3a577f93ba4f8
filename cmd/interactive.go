package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/keyrun-app/keyrun/internal/app"
	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/input"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Launch commands from an interactive prompt",
	Long: `Start a prompt that resolves and launches each line the way the
launcher UI would. Tab completes registered command names, arrow keys
navigate prompt history, and special commands work:

  !reload    Re-read the commands document
  !version   Show build information
  !exit      Leave the prompt (Ctrl-C and Ctrl-D work too)

Examples:
  keyrun interactive
  keyrun interactive -c work-commands.toml`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)

	interactiveCmd.Flags().StringP("commands-file", "c", "commands.yml", "Commands document path")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyCommandsFileFlag(cmd, cfg)

	log := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := openHistory(ctx, cfg, log)
	if store != nil {
		defer store.Close()
	}

	session := openSession(ctx, cfg, store, log)

	if docWatcher := startWatcher(ctx, cfg, session, log); docWatcher != nil {
		defer docWatcher.Stop()
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	// Complete the command-name head of the line; once arguments start,
	// completion stays out of the way.
	line.SetCompleter(func(prefix string) []string {
		if strings.ContainsAny(prefix, " \t") {
			return nil
		}
		return session.Suggest(prefix)
	})

	historyFile := promptHistoryPath()
	loadPromptHistory(line, historyFile)
	defer savePromptHistory(line, historyFile)

	fmt.Printf("%d commands loaded from %s. Tab completes, !exit leaves.\n",
		session.CommandCount(), cfg.Commands.File)

	for {
		text, err := line.Prompt("keyrun> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)

		result, err := session.Dispatch(ctx, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		if done := printResult(result, session); done {
			return nil
		}
	}
}

// printResult renders one dispatch outcome and reports whether the prompt
// should end.
func printResult(result *app.Result, session *app.Session) bool {
	switch result.Kind {
	case input.Normal:
		fmt.Printf("launched %s (pid %d)\n", result.Launch.Spec.Target, result.Launch.PID)
	case input.Reload:
		fmt.Printf("reloaded: %d commands\n", session.CommandCount())
	case input.Version:
		fmt.Println(result.Version)
	case input.Exit:
		return true
	}
	return false
}

// promptHistoryPath places prompt history next to the other keyrun state
// under the home directory, falling back to the temp dir.
func promptHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "keyrun_prompt_history")
	}
	return filepath.Join(home, ".keyrun", "prompt_history")
}

func loadPromptHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
}

func savePromptHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
