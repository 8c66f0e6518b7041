package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/odbtw/oceanpub/internal/store"
)

func init() {
	rootCmd.AddCommand(initdbCmd)
}

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the publications table if it does not exist",
	Long: `Create the publications table if it does not exist.

Idempotent: running it against an initialized database is a no-op. The
ingest command also ensures the schema, so initdb is only needed to
prepare a database ahead of time or to verify connectivity.`,
	Args: cobra.NoArgs,
	RunE: runInitdb,
}

// InitdbResponse is the JSON output for the initdb command.
type InitdbResponse struct {
	Status string `json:"status"`
	Driver string `json:"driver"`
	Table  string `json:"table"`
}

func runInitdb(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)
	ctx := context.Background()

	st := openStore(ctx, cfg, store.Upsert, logger)
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		exitWithError(ExitStoreError, "%v", err)
	}

	if humanOutput {
		outputHuman("Table %s ready (%s)\n", cfg.Database.Table, cfg.Database.Driver)
	} else {
		outputJSON(InitdbResponse{
			Status: "ready",
			Driver: cfg.Database.Driver,
			Table:  cfg.Database.Table,
		})
	}
	return nil
}
