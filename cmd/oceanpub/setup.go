package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/odbtw/oceanpub/internal/config"
	"github.com/odbtw/oceanpub/internal/crossref"
	"github.com/odbtw/oceanpub/internal/logging"
	"github.com/odbtw/oceanpub/internal/store"
)

// loadConfig loads the configuration or exits with ExitConfigError.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newLogger builds the run logger from config.
func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format)
}

// newClient builds the Crossref client from config.
func newClient(cfg *config.Config) *crossref.Client {
	opts := []crossref.ClientOption{
		crossref.WithRateLimit(cfg.Crossref.RateLimit),
		crossref.WithRows(cfg.Crossref.Rows),
		crossref.WithRetryPolicy(crossref.RetryPolicy{
			MaxAttempts: cfg.Crossref.MaxAttempts,
			Backoff:     cfg.Crossref.Backoff.Std(),
		}),
	}
	if cfg.Crossref.Mailto != "" {
		opts = append(opts, crossref.WithMailto(cfg.Crossref.Mailto))
	}
	return crossref.NewClient(opts...)
}

// openStore opens the configured publication store or exits with
// ExitStoreError. Unrecoverable store-connection failure halts the run.
func openStore(ctx context.Context, cfg *config.Config, policy store.ConflictPolicy, logger zerolog.Logger) store.Store {
	var (
		st  store.Store
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		st, err = store.NewSQLite(cfg.Database.Path, cfg.Database.Table, policy, logger)
	default:
		st, err = store.NewPostgres(ctx, cfg.Database.DSN(), cfg.Database.Table, policy, logger)
	}
	if err != nil {
		exitWithError(ExitStoreError, "opening store: %v", err)
	}
	return st
}
