package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bjaus/dispatch/internal/config"
	"github.com/bjaus/dispatch/internal/store"
)

type rootOptions struct {
	configPath string
	database   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "eventcompass",
		Short:         "EventCompass festival planning backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./eventcompass.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.database, "database", "", "SQLite database path (overrides config)")

	cmd.AddCommand(
		newServeCmd(opts),
		newRoutesCmd(),
		newSeedCmd(opts),
		newResetCmd(opts),
	)
	return cmd
}

// load reads the configuration and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.database != "" {
		cfg.Database = o.database
	}
	return cfg, nil
}

// openStore loads the configuration and opens the database it names.
func (o *rootOptions) openStore(cmd *cobra.Command) (*config.Config, *store.Store, *slog.Logger, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cfg.Log.Logger(cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, st, logger, nil
}
