package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"menuboard/internal/auth"
	"menuboard/internal/config"
	"menuboard/internal/engine"
	"menuboard/internal/server"
	"menuboard/internal/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the schedule engine",
		Long: `Start the menuboard service.

Loads configuration, opens the JSON snapshot store (creating empty
snapshot files on first run), ensures an initial admin account exists,
starts the schedule engine tick loop, and serves the HTTP API until
interrupted.

Example:
  menuboard serve
  menuboard serve --config /etc/menuboard/menuboard.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, rootOpts)
		},
	}
	return cmd
}

func serve(cmd *cobra.Command, rootOpts *RootOptions) error {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	log := newLogger(cfg, rootOpts.Verbose)
	slog.SetDefault(log)

	log.Info("opening store", "dir", cfg.Data.Dir)
	st, err := store.Open(cfg.Data.Dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}

	if err := auth.EnsureDefaultAdmin(st, cfg.Admin.Username, cfg.Admin.Password, log); err != nil {
		return WrapExitError(ExitCommandError, "failed to ensure admin account", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eng := engine.New(st,
		engine.WithInterval(cfg.Engine.TickInterval),
		engine.WithLogger(log),
	)
	eng.Start(ctx)
	defer eng.Stop()

	sessions := auth.NewSessionManager(cfg.Session.TTL)
	srv := server.New(st, sessions, log, cfg.Data.StaticDir)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Addr())
		fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", cfg.Addr())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "http server error", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "http server shutdown", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// newLogger builds the slog logger from config. --verbose forces debug
// level regardless of the configured level.
func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
