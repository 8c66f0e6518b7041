package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"

	"github.com/odbtw/oceanpub/internal/publication"
)

func newMockPostgres(t *testing.T, policy ConflictPolicy) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() error = %v", err)
	}
	t.Cleanup(mock.Close)

	s, err := NewPostgresFromPool(mock, "", policy, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPostgresFromPool() error = %v", err)
	}
	return s, mock
}

func TestNewPostgresFromPool_RejectsBadTableName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	if _, err := NewPostgresFromPool(mock, "pubs;drop", Upsert, zerolog.Nop()); err == nil {
		t.Fatal("NewPostgresFromPool() accepted an unsafe table name")
	}
}

func TestPostgres_EnsureSchema(t *testing.T) {
	s, mock := newMockPostgres(t, Upsert)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS publications").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgres_Exists(t *testing.T) {
	s, mock := newMockPostgres(t, Upsert)

	mock.ExpectQuery("SELECT 1 FROM publications").
		WithArgs("10.1/x").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	exists, err := s.Exists(context.Background(), "10.1/x")
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true, nil", exists, err)
	}

	mock.ExpectQuery("SELECT 1 FROM publications").
		WithArgs("10.1/missing").
		WillReturnError(pgx.ErrNoRows)
	exists, err = s.Exists(context.Background(), "10.1/missing")
	if err != nil || exists {
		t.Fatalf("Exists() = %v, %v; want false, nil", exists, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgres_UpsertBatch(t *testing.T) {
	s, mock := newMockPostgres(t, Upsert)
	pubs := []publication.Publication{testPub("10.1/a", "OR1"), testPub("10.1/b")}

	mock.ExpectBegin()
	for _, p := range pubs {
		mock.ExpectExec("INSERT INTO publications").
			WithArgs(insertArgs(p)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	if err := s.UpsertBatch(context.Background(), pubs); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgres_UpsertBatchEmpty(t *testing.T) {
	s, mock := newMockPostgres(t, Upsert)

	// No expectations: an empty batch must not touch the pool.
	if err := s.UpsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("UpsertBatch(nil) error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgres_UpsertBatchRollsBackOnError(t *testing.T) {
	s, mock := newMockPostgres(t, Upsert)
	pub := testPub("10.1/a")
	execErr := errors.New("deadlock detected")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO publications").
		WithArgs(insertArgs(pub)...).
		WillReturnError(execErr)
	mock.ExpectRollback()

	err := s.UpsertBatch(context.Background(), []publication.Publication{pub})
	if !errors.Is(err, execErr) {
		t.Fatalf("UpsertBatch() error = %v, want wrapped exec error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
