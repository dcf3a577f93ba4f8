package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the launcher host",
	Long: `Start the launcher host: loads the commands document, watches it for
changes, and serves the localhost control API with a WebSocket event stream.

Runs until SIGINT/SIGTERM.

Examples:
  keyrun serve                             # Defaults from .keyrun.yml
  keyrun serve --port 9000                 # Override the control port
  keyrun serve -c work-commands.toml       # Serve a specific document
  keyrun serve --no-watch                  # Disable auto-reload`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 7345, "Control server port")
	serveCmd.Flags().String("host", "127.0.0.1", "Control server host")
	serveCmd.Flags().StringP("commands-file", "c", "commands.yml", "Commands document path")
	serveCmd.Flags().Bool("no-watch", false, "Don't watch the commands document for changes")
	serveCmd.Flags().Bool("no-server", false, "Don't start the control server")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))

	AddFlagValidation(serveCmd, "port", ValidatePort)
}

func runServe(cmd *cobra.Command, args []string) error {
	// serve is the long-running host: the watcher and control server are on
	// unless the settings document or a flag turns them off.
	viper.SetDefault("watch.enabled", true)
	viper.SetDefault("server.enabled", true)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyCommandsFileFlag(cmd, cfg)
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.Watch.Enabled = false
	}
	if noServer, _ := cmd.Flags().GetBool("no-server"); noServer {
		cfg.Server.Enabled = false
	}

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

	var ctrl *server.ControlServer
	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		ctrl = server.New(cfg, session, log)
		go func() { serverErr <- ctrl.Start(ctx) }()
		fmt.Printf("Control API at http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Serving %d commands from %s\n", session.CommandCount(), cfg.Commands.File)

	select {
	case sig := <-sigChan:
		log.Info(ctx, "signal received, shutting down", "signal", sig.String())
	case <-session.ExitRequested():
		log.Info(ctx, "exit requested, shutting down")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	if ctrl != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := ctrl.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, err, "control server shutdown")
		}
	}

	return nil
}
