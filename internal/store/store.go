// Package store persists resolved publications into a DOI-keyed relational
// table, with PostgreSQL for deployments and SQLite for local runs.
package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/odbtw/oceanpub/internal/publication"
)

// ConflictPolicy selects what an insert does when the DOI already exists.
type ConflictPolicy int

const (
	// Upsert overwrites the descriptive fields with the incoming values and
	// OR-merges the vessel/center flags, so a row lacking a flag never
	// unsets one already stored.
	Upsert ConflictPolicy = iota

	// InsertIgnore leaves the existing row untouched (append-only).
	InsertIgnore
)

// DefaultTable is the publications table name when none is configured.
const DefaultTable = "publications"

// Store is a DOI-keyed publication store.
type Store interface {
	// EnsureSchema creates the publications table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// Exists reports whether a publication with the given DOI is stored.
	Exists(ctx context.Context, doi string) (bool, error)

	// UpsertBatch writes a batch atomically under the configured conflict
	// policy. Either every row commits or none do.
	UpsertBatch(ctx context.Context, pubs []publication.Publication) error

	// Close releases the underlying connections.
	Close()
}

// descriptiveColumns are the non-flag columns, in insert order after doi.
var descriptiveColumns = []string{
	"title", "first_author", "authors", "publisher", "journal",
	"published_year", "published_date", "abstract", "url",
	"affiliation_tw", "corresponding_tw",
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTableName rejects table names that cannot be embedded safely in
// DDL and DML statements.
func ValidateTableName(name string) error {
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// columnList returns all column names in insert order: doi, the descriptive
// columns, then the flag columns.
func columnList() []string {
	cols := make([]string, 0, 1+len(descriptiveColumns)+len(publication.FlagNames))
	cols = append(cols, "doi")
	cols = append(cols, descriptiveColumns...)
	for _, f := range publication.FlagNames {
		cols = append(cols, strings.ToLower(f))
	}
	return cols
}

// insertArgs returns the insert arguments for a publication, matching
// columnList order. A nil year becomes SQL NULL.
func insertArgs(p publication.Publication) []any {
	var year any
	if p.PublishedYear != nil {
		year = *p.PublishedYear
	}

	args := []any{
		p.DOI,
		p.Title, p.FirstAuthor, p.Authors, p.Publisher, p.Journal,
		year, p.PublishedDate, p.Abstract, p.URL,
		p.AffiliationTW, p.CorrespondingTW,
	}
	for _, f := range publication.FlagNames {
		args = append(args, p.Flag(f))
	}
	return args
}

// schemaSQL builds the fixed publications DDL for the given table. The
// column types are portable across PostgreSQL and SQLite.
func schemaSQL(table string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	b.WriteString("\tdoi TEXT PRIMARY KEY,\n")
	b.WriteString("\ttitle TEXT,\n")
	b.WriteString("\tfirst_author TEXT,\n")
	b.WriteString("\tauthors TEXT,\n")
	b.WriteString("\tpublisher TEXT,\n")
	b.WriteString("\tjournal TEXT,\n")
	b.WriteString("\tpublished_year INTEGER,\n")
	b.WriteString("\tpublished_date TEXT,\n")
	b.WriteString("\tabstract TEXT,\n")
	b.WriteString("\turl TEXT,\n")
	b.WriteString("\taffiliation_tw TEXT,\n")
	b.WriteString("\tcorresponding_tw TEXT,\n")
	for i, f := range publication.FlagNames {
		fmt.Fprintf(&b, "\t%s BOOLEAN NOT NULL DEFAULT FALSE", strings.ToLower(f))
		if i < len(publication.FlagNames)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// insertSQL builds the parameterized insert statement for one publication.
// numbered selects $1..$n placeholders (PostgreSQL) over ? (SQLite).
func insertSQL(table string, policy ConflictPolicy, numbered bool) string {
	cols := columnList()
	placeholders := make([]string, len(cols))
	for i := range cols {
		if numbered {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		conflictClause(table, policy),
	)
}

// conflictClause builds the ON CONFLICT clause for the given policy.
// Under Upsert the descriptive fields take the incoming values and every
// flag is OR-merged with the stored one.
func conflictClause(table string, policy ConflictPolicy) string {
	if policy == InsertIgnore {
		return "ON CONFLICT (doi) DO NOTHING"
	}

	sets := make([]string, 0, len(descriptiveColumns)+len(publication.FlagNames))
	for _, col := range descriptiveColumns {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	for _, f := range publication.FlagNames {
		col := strings.ToLower(f)
		sets = append(sets, fmt.Sprintf("%s = %s.%s OR EXCLUDED.%s", col, table, col, col))
	}
	return "ON CONFLICT (doi) DO UPDATE SET " + strings.Join(sets, ", ")
}
