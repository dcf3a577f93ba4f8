package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/keyrun-app/keyrun/internal/app"
	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/history"
	"github.com/keyrun-app/keyrun/internal/logging"
	"github.com/keyrun-app/keyrun/internal/watcher"
)

// applyCommandsFileFlag lets an explicit --commands-file beat the config
// file and environment. Several commands define the flag, so the override
// happens here instead of a shared viper binding.
func applyCommandsFileFlag(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("commands-file") {
		if file, err := cmd.Flags().GetString("commands-file"); err == nil && file != "" {
			cfg.Commands.File = file
		}
	}
}

// openHistory opens the configured launch-history store. Returns nil when
// history is disabled or the store cannot be opened; unavailability is
// logged, never fatal.
func openHistory(ctx context.Context, cfg *config.Config, log logging.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}

	path := cfg.History.File
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			log.Warn(ctx, err, "history store unavailable, continuing without it")
			return nil
		}
	}

	store, err := history.Open(path)
	if err != nil {
		log.Warn(ctx, err, "history store unavailable, continuing without it", "path", path)
		return nil
	}
	return store
}

// openSession builds a session from settings and performs the initial load.
// A load failure leaves the session empty and logged; raw URL and path
// launching still works without a commands table.
func openSession(ctx context.Context, cfg *config.Config, store *history.Store, log logging.Logger) *app.Session {
	session := app.NewSession(app.Options{
		CommandsFile: cfg.Commands.File,
		History:      store,
		Logger:       log,
	})

	if err := session.Load(ctx); err != nil {
		log.Warn(ctx, err, "initial commands load failed, starting empty", "file", cfg.Commands.File)
	}
	return session
}

// startWatcher begins watching the commands document and funnels change
// batches into Session.Reload. Returns nil when watching is disabled or the
// watcher cannot start.
func startWatcher(ctx context.Context, cfg *config.Config, session *app.Session, log logging.Logger) *watcher.DocumentWatcher {
	if !cfg.Watch.Enabled {
		return nil
	}

	docWatcher, err := watcher.NewDocumentWatcher(cfg.Commands.File, cfg.Watch.Debounce, log)
	if err != nil {
		log.Warn(ctx, err, "commands document watching unavailable", "file", cfg.Commands.File)
		return nil
	}

	docWatcher.AddHandler(func([]watcher.ChangeEvent) {
		// Reload logs and publishes its own outcome; a bad document keeps
		// the previous table.
		_ = session.Reload(ctx)
	})
	docWatcher.Start(ctx)
	return docWatcher
}
