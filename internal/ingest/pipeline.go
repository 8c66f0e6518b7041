package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/odbtw/oceanpub/internal/citation"
	"github.com/odbtw/oceanpub/internal/crossref"
	"github.com/odbtw/oceanpub/internal/publication"
	"github.com/odbtw/oceanpub/internal/store"
)

// DefaultBatchSize balances insert round-trips against the work lost if a
// run dies mid-batch.
const DefaultBatchSize = 5

// Resolver resolves a title to a catalog record. *crossref.Client satisfies
// it; tests substitute fakes.
type Resolver interface {
	ResolveByTitle(ctx context.Context, title string) (*crossref.Work, error)
}

// Options configure a pipeline run.
type Options struct {
	// BatchSize is how many records accumulate before a flush.
	BatchSize int

	// SkipExisting selects the append-only variant: DOIs already stored are
	// skipped instead of overwritten.
	SkipExisting bool

	// DryRun resolves and transforms but never writes.
	DryRun bool

	// Limit stops after this many rows when positive.
	Limit int
}

// Summary reports what one run did, with skips broken down by reason.
type Summary struct {
	Rows            int `json:"rows"`
	Resolved        int `json:"resolved"`
	Persisted       int `json:"persisted"`
	SkippedNoTitle  int `json:"skipped_no_title"`
	SkippedNoMatch  int `json:"skipped_no_match"`
	SkippedNoDOI    int `json:"skipped_no_doi"`
	SkippedExisting int `json:"skipped_existing"`
}

// Pipeline processes source rows strictly sequentially: extract, resolve,
// transform, persist. Row failures are logged and skipped; only store
// failures abort a run.
type Pipeline struct {
	resolver Resolver
	store    store.Store
	logger   zerolog.Logger
	opts     Options
}

// New creates a pipeline.
func New(resolver Resolver, st store.Store, logger zerolog.Logger, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Pipeline{resolver: resolver, store: st, logger: logger, opts: opts}
}

// Run processes every source row and returns the run summary. The returned
// error is non-nil only for store failures or context cancellation; partial
// progress up to the failed batch is already committed.
func (p *Pipeline) Run(ctx context.Context, rows []SourceRow) (Summary, error) {
	var sum Summary

	if err := p.store.EnsureSchema(ctx); err != nil {
		return sum, fmt.Errorf("ensuring schema: %w", err)
	}

	batch := make([]publication.Publication, 0, p.opts.BatchSize)
	batched := make(map[string]bool, p.opts.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if !p.opts.DryRun {
			if err := p.store.UpsertBatch(ctx, batch); err != nil {
				return err
			}
		}
		sum.Persisted += len(batch)
		batch = batch[:0]
		clear(batched)
		return nil
	}

	for i, row := range rows {
		if p.opts.Limit > 0 && i >= p.opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Rows++

		title, matched := citation.Extract(row.Citation)
		if !matched {
			p.logger.Debug().Str("citation", row.Citation).
				Msg("no year anchor found, falling back to full citation")
		}
		if title == "" || strings.Contains(title, "http") {
			p.logger.Warn().Str("title", title).Msg("skipping row: unusable title")
			sum.SkippedNoTitle++
			continue
		}

		work, err := p.resolver.ResolveByTitle(ctx, title)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			if crossref.IsNoMatch(err) {
				p.logger.Info().Str("title", title).Msg("no confident match")
			} else {
				p.logger.Warn().Err(err).Str("title", title).Msg("lookup failed")
			}
			sum.SkippedNoMatch++
			continue
		}
		sum.Resolved++

		if work.DOI == "" {
			p.logger.Warn().Str("title", title).Msg("skipping row: matched work has no DOI")
			sum.SkippedNoDOI++
			continue
		}

		if p.opts.SkipExisting {
			exists, err := p.store.Exists(ctx, work.DOI)
			if err != nil {
				return sum, fmt.Errorf("checking DOI %s: %w", work.DOI, err)
			}
			if exists {
				p.logger.Info().Str("doi", work.DOI).Msg("skipping duplicate DOI")
				sum.SkippedExisting++
				continue
			}
		}

		// Two rows can resolve to the same DOI inside one batch; flush so
		// the conflict policy applies in the store instead of the insert
		// hitting the same key twice in a single statement batch.
		if batched[work.DOI] {
			if err := flush(); err != nil {
				return sum, err
			}
		}

		pub := Transform(row, work)
		batch = append(batch, pub)
		batched[work.DOI] = true

		p.logger.Info().
			Str("doi", pub.DOI).
			Str("title", pub.Title).
			Str("published_date", pub.PublishedDate).
			Msg("resolved")

		if len(batch) >= p.opts.BatchSize {
			if err := flush(); err != nil {
				return sum, err
			}
		}
	}

	if err := flush(); err != nil {
		return sum, err
	}

	return sum, nil
}
