package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/history"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent launches",
	Long: `Show the most recent launches recorded in the history store, newest
first.

Examples:
  keyrun history                  # Last 20 launches
  keyrun history -n 5             # Last 5 launches
  keyrun history -f json          # Output as JSON`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of launches to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "table", "Output format (table|json)")

	AddFlagValidation(historyCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"table", "json"})
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cfg.History.Enabled {
		fmt.Println("Launch history is disabled (history.enabled: false).")
		return nil
	}

	path := cfg.History.File
	if path == "" {
		path, err = history.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving history path: %w", err)
		}
	}

	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	entries, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if strings.ToLower(historyFormat) == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"launches": entries,
			"count":    len(entries),
		})
	}

	if len(entries) == 0 {
		fmt.Println("No launches recorded yet.")
		return nil
	}

	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting history: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "STARTED\tINPUT\tTARGET\tKIND\tPID")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			entry.StartedAt.Local().Format("2006-01-02 15:04:05"),
			entry.Input, entry.Target, entry.Kind, entry.PID)
	}
	fmt.Fprintf(w, "\nShowing %d of %d launches\n", len(entries), total)

	return nil
}
