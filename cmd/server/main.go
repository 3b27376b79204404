package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/rentline-server/internal/app"
	"github.com/vovakirdan/rentline-server/internal/config"
	rlog "github.com/vovakirdan/rentline-server/internal/log"
	"github.com/vovakirdan/rentline-server/internal/store/sqlite"
)

type rootFlags struct {
	configPath string
	logLevel   string
	overrides  config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "rentline-server",
		Short:         "Realtime chat and notifications for the Rentline marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.overrides.DatabasePath, "db", "", "SQLite database path")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	serve.Flags().StringVar(&flags.overrides.Addr, "addr", "", "HTTP listen address")
	serve.Flags().DurationVar(&flags.overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	serve.Flags().DurationVar(&flags.overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	root.AddCommand(serve, newMigrateCmd(flags))
	return root
}

// loadConfig resolves configuration and builds the logger.
func loadConfig(flags *rootFlags) (*config.Config, *zerolog.Logger, error) {
	bootLog := rlog.New(flags.logLevel)

	cfg, path, err := config.Load(bootLog, flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	flags.overrides.LogLevel = flags.logLevel
	cfg.UpdateFrom(flags.overrides)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logger := rlog.New(cfg.LogLevel)
	logger.Debug().Str("config_path", path).Msg("configuration loaded")
	return &cfg, logger, nil
}

func runServe(ctx context.Context, flags *rootFlags) error {
	cfg, logger, err := loadConfig(flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting rentline server")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withStore := func(fn func(st *sqlite.SQLiteStore, logger *zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(*cobra.Command, []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()
			return fn(st, logger)
		}
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withStore(func(st *sqlite.SQLiteStore, logger *zerolog.Logger) error {
				if err := sqlite.Migrate(st.DB()); err != nil {
					return err
				}
				return logVersion(st, logger, "migrations applied")
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: withStore(func(st *sqlite.SQLiteStore, logger *zerolog.Logger) error {
				if err := sqlite.MigrateDown(st.DB()); err != nil {
					return err
				}
				return logVersion(st, logger, "migrations rolled back")
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: withStore(func(st *sqlite.SQLiteStore, logger *zerolog.Logger) error {
				return logVersion(st, logger, "schema version")
			}),
		},
	)
	return migrateCmd
}

func logVersion(st *sqlite.SQLiteStore, logger *zerolog.Logger, msg string) error {
	version, dirty, err := sqlite.SchemaVersion(st.DB())
	if err != nil {
		return err
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg(msg)
	return nil
}
