// Package main implements the tasktracker command: the HTTP API server, the
// migration runner and the one-shot reminder job.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	// Time zone database for reminder.timezone on hosts without one.
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/phrazzld/tasktracker/internal/config"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
)

// migrateCommands are the goose commands exposed by `tasktracker migrate`.
var migrateCommands = []string{"up", "down", "status", "version", "reset"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root command serves the API.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Multi-user task tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a YAML config file (default: ./config.yaml if present)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down|status|version|reset]",
			Short:     "Run database migrations",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: migrateCommands,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), configPath, args[0])
			},
		},
		&cobra.Command{
			Use:   "remind",
			Short: "Email owners of pending tasks that expire today, then exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRemind(cmd.Context(), configPath)
			},
		},
	)

	return root
}

// loadAppConfig loads the configuration and sets up the default logger.
func loadAppConfig(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"reminders_enabled", cfg.Reminder.Enabled)
	l.Debug("auth configuration", "jwt_secret_present", cfg.Auth.JWTSecret != "")

	return cfg, l, nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, l, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	return app.Run(ctx)
}

func runMigrate(ctx context.Context, configPath, command string) error {
	cfg, l, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("error closing database connection", "error", err)
		}
	}()

	return runMigrations(ctx, db, command, l)
}

func runRemind(ctx context.Context, configPath string) error {
	cfg, l, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer app.cleanup()

	return app.remindOnce(ctx)
}
