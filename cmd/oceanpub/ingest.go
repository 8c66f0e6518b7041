package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/odbtw/oceanpub/internal/ingest"
	"github.com/odbtw/oceanpub/internal/store"
)

var (
	ingestBatchSize    int
	ingestSkipExisting bool
	ingestDryRun       bool
	ingestLimit        int
)

func init() {
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", ingest.DefaultBatchSize, "Records per transaction")
	ingestCmd.Flags().BoolVar(&ingestSkipExisting, "skip-existing", false, "Append-only mode: never overwrite stored DOIs")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Resolve and transform without writing")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "Stop after N rows (0 = all)")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.csv>",
	Short: "Resolve a spreadsheet of references and archive the matches",
	Long: `Resolve a spreadsheet of references and archive the matches.

Each row's citation text is parsed for a title, which is looked up on
Crossref; the first candidate whose normalized title matches exactly is
transformed and persisted. Rows that fail extraction, lookup, or lack a
DOI are logged and skipped; the run continues.

By default an already-stored DOI is overwritten: descriptive fields take
the new values and vessel/center flags are merged so a set flag is never
unset. Pass --skip-existing for append-only behavior.

Example:
  oceanpub ingest papers.csv --batch-size 10 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)
	ctx := context.Background()

	rows, err := ingest.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	policy := store.Upsert
	if ingestSkipExisting {
		policy = store.InsertIgnore
	}
	st := openStore(ctx, cfg, policy, logger)
	defer st.Close()

	pipeline := ingest.New(newClient(cfg), st, logger, ingest.Options{
		BatchSize:    ingestBatchSize,
		SkipExisting: ingestSkipExisting,
		DryRun:       ingestDryRun,
		Limit:        ingestLimit,
	})

	summary, err := pipeline.Run(ctx, rows)
	if err != nil {
		exitWithError(ExitStoreError, "ingest failed after %d rows: %v", summary.Rows, err)
	}

	if humanOutput {
		outputHuman("Processed %d rows: %d resolved, %d persisted\n",
			summary.Rows, summary.Resolved, summary.Persisted)
		outputHuman("Skipped: %d unusable title, %d no match, %d missing DOI, %d already stored\n",
			summary.SkippedNoTitle, summary.SkippedNoMatch, summary.SkippedNoDOI, summary.SkippedExisting)
	} else {
		outputJSON(summary)
	}
	return nil
}
