package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/odbtw/oceanpub/internal/publication"
)

// PgxPool is the subset of pgxpool.Pool the store uses. Mock pools satisfy
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Compile-time check that the real pool satisfies the interface.
var _ PgxPool = (*pgxpool.Pool)(nil)

// Postgres is the PostgreSQL publication store.
type Postgres struct {
	pool   PgxPool
	table  string
	policy ConflictPolicy
	logger zerolog.Logger
}

// NewPostgres opens a connection pool against the given DSN and verifies it
// with a ping.
func NewPostgres(ctx context.Context, dsn, table string, policy ConflictPolicy, logger zerolog.Logger) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s, err := NewPostgresFromPool(pool, table, policy, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info().
		Str("table", s.table).
		Msg("database connection pool established")

	return s, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests to inject mocks.
func NewPostgresFromPool(pool PgxPool, table string, policy ConflictPolicy, logger zerolog.Logger) (*Postgres, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	return &Postgres{pool: pool, table: table, policy: policy, logger: logger}, nil
}

// EnsureSchema creates the publications table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL(s.table)); err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return nil
}

// Exists reports whether a publication with the given DOI is stored.
func (s *Postgres) Exists(ctx context.Context, doi string) (bool, error) {
	var one int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE doi = $1", s.table)
	err := s.pool.QueryRow(ctx, query, doi).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking DOI %s: %w", doi, err)
	}
	return true, nil
}

// UpsertBatch writes a batch inside a single transaction.
func (s *Postgres) UpsertBatch(ctx context.Context, pubs []publication.Publication) error {
	if len(pubs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := insertSQL(s.table, s.policy, true)
	for _, p := range pubs {
		if _, err := tx.Exec(ctx, query, insertArgs(p)...); err != nil {
			return fmt.Errorf("inserting DOI %s: %w", p.DOI, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}

	s.logger.Debug().Int("rows", len(pubs)).Msg("batch committed")
	return nil
}

// Close closes the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}
