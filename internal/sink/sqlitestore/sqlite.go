// Package sqlitestore implements EntrySink against SQLite via
// github.com/mattn/go-sqlite3, for local development and the default
// config driver (spec.md's Non-goals exclude a production deployment
// story for this core, but a zero-setup sink is what lets someone run the
// importer without standing up PostgreSQL first).
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chartlydata/offimport/internal/normalize"
	"github.com/chartlydata/offimport/internal/sink/entrycols"
)

// Store is a SQLite-backed EntrySink, structurally identical to
// relational.Store apart from placeholder syntax (SQLite's driver wants
// positional "?", not "$n") and the upsert clause (INSERT OR REPLACE
// instead of ON CONFLICT DO UPDATE — simpler, and sufficient since the
// whole row is always rewritten).
type Store struct {
	db    *sql.DB
	table string

	staged []normalize.ProductEntry
}

func Open(path string, table string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	return NewStore(db, table)
}

func NewStore(db *sql.DB, table string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlitestore: db is nil")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		table = "products"
	}
	if err := validateTableName(table); err != nil {
		return nil, fmt.Errorf("sqlitestore: invalid table name %q", table)
	}
	return &Store{db: db, table: table}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	cols := make([]string, len(entrycols.Columns))
	for i, c := range entrycols.Columns {
		typ := "REAL"
		switch c {
		case "code", "name", "localized_names", "brands", "unit":
			typ = "TEXT"
		case "created", "last_updated":
			typ = "DATETIME"
		}
		constraint := ""
		if c == "code" {
			constraint = " PRIMARY KEY"
		}
		cols[i] = fmt.Sprintf("%s %s%s", c, typ, constraint)
	}
	q := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.table, strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("sqlitestore: ensure schema: %w", err)
	}
	return nil
}

func (s *Store) PutAll(_ context.Context, batch []normalize.ProductEntry) error {
	s.staged = append(s.staged, batch...)
	return nil
}

func (s *Store) Commit(ctx context.Context) error {
	if len(s.staged) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin: %w", err)
	}

	q := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		s.table,
		strings.Join(entrycols.Columns, ", "),
		placeholders(len(entrycols.Columns)),
	)
	for _, e := range s.staged {
		if _, err := tx.ExecContext(ctx, q, entrycols.Args(e)...); err != nil {
			_ = tx.Rollback()
			s.staged = nil
			return fmt.Errorf("sqlitestore: upsert %s: %w", e.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.staged = nil
		return fmt.Errorf("sqlitestore: commit: %w", err)
	}
	s.staged = nil
	return nil
}

func (s *Store) Rollback(_ context.Context) error {
	s.staged = nil
	return nil
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ", ")
}

func validateTableName(name string) error {
	for i, r := range name {
		switch {
		case i == 0 && (r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')):
		case i > 0 && (r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')):
		default:
			return fmt.Errorf("disallowed character %q", r)
		}
	}
	return nil
}
