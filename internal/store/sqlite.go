package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/odbtw/oceanpub/internal/publication"
)

// SQLite is the SQLite publication store, used for local and dev runs.
type SQLite struct {
	db     *sql.DB
	table  string
	policy ConflictPolicy
	logger zerolog.Logger
}

// NewSQLite opens or creates a SQLite database at the given path.
// Use ":memory:" for an ephemeral store.
func NewSQLite(path, table string, policy ConflictPolicy, logger zerolog.Logger) (*SQLite, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	return &SQLite{db: db, table: table, policy: policy, logger: logger}, nil
}

// EnsureSchema creates the publications table if it does not exist.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL(s.table)); err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return nil
}

// Exists reports whether a publication with the given DOI is stored.
func (s *SQLite) Exists(ctx context.Context, doi string) (bool, error) {
	var one int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE doi = ?", s.table)
	err := s.db.QueryRowContext(ctx, query, doi).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking DOI %s: %w", doi, err)
	}
	return true, nil
}

// UpsertBatch writes a batch inside a single transaction.
func (s *SQLite) UpsertBatch(ctx context.Context, pubs []publication.Publication) error {
	if len(pubs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := insertSQL(s.table, s.policy, false)
	for _, p := range pubs {
		if _, err := tx.ExecContext(ctx, query, insertArgs(p)...); err != nil {
			return fmt.Errorf("inserting DOI %s: %w", p.DOI, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}

	s.logger.Debug().Int("rows", len(pubs)).Msg("batch committed")
	return nil
}

// Close closes the database.
func (s *SQLite) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("closing database")
	}
}
