// Package cmd provides the CLI commands for changetrack.
package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/changetrack/config"
	"github.com/viant/changetrack/engine"
	"github.com/viant/changetrack/logging"
	"github.com/viant/changetrack/tracker"
)

// app holds what a single command invocation needs.
type app struct {
	cfg     *config.Config
	dialect engine.Dialect
	db      *sql.DB
	store   *tracker.SQLStore
	tracker *tracker.Tracker
	log     *logging.Logger
}

// NewRootCmd creates the root command for the changetrack CLI.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	a := &app{}

	cmd := &cobra.Command{
		Use:   "changetrack",
		Short: "Record first/last indexed metadata for pipeline records",
		Long: `changetrack maintains per-record lifecycle metadata (first indexed,
last indexed, last source change, deleted) in a SQL table keyed by
(namespace, id).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), configPath, logLevel)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(newInitCmd(a))
	cmd.AddCommand(newObserveCmd(a))
	cmd.AddCommand(newDeleteCmd(a))
	cmd.AddCommand(newShowCmd(a))
	return cmd
}

func (a *app) open(ctx context.Context, configPath, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	a.cfg = cfg

	a.log, err = logging.New().FromPath(cfg.Log.Path).WithLevel(cfg.Log.Level).Make()
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if a.dialect, err = cfg.Dialect(); err != nil {
		return err
	}
	if a.db, err = engine.OpenDialect(a.dialect, cfg.DSN); err != nil {
		return fmt.Errorf("open %s: %w", a.dialect, err)
	}
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", a.dialect, err)
	}
	a.store, err = tracker.NewSQLStore(a.db, tracker.WithDialect(a.dialect), tracker.WithTable(cfg.Table))
	if err != nil {
		return err
	}
	a.tracker, err = tracker.New(a.store, tracker.WithLogger(a.log.Logger))
	if err != nil {
		return err
	}
	a.log.Debug().Str("driver", a.dialect.String()).Str("table", cfg.Table).Msg("storage opened")
	return nil
}

func (a *app) close() error {
	var err error
	if a.db != nil {
		err = a.db.Close()
		a.db = nil
	}
	if a.log != nil {
		if cerr := a.log.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
