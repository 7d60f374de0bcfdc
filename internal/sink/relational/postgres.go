// Package relational implements EntrySink against PostgreSQL via
// database/sql, with the lib/pq driver registered by the caller (a blank
// import of github.com/lib/pq, per that driver's usual wiring). It is
// adapted from the teacher repo's object-store pattern: an upsert on
// conflict and a validated table name. The localized-names field is stored
// as its comma-separated "lang:name" string in a TEXT column.
package relational

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chartlydata/offimport/internal/normalize"
	"github.com/chartlydata/offimport/internal/sink/entrycols"
)

// Store is a PostgreSQL-backed EntrySink. Entries staged by PutAll are
// held in memory until Commit runs them inside one transaction, matching
// the "atomic per batch" invariant in spec.md §3.
type Store struct {
	db    *sql.DB
	table string

	staged []normalize.ProductEntry
	tx     *sql.Tx
}

// NewStore validates table (default "products") and returns a ready Store.
// No network I/O happens until EnsureSchema/PutAll/Commit.
func NewStore(db *sql.DB, table string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("relational: db is nil")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		table = "products"
	}
	if err := validateTableName(table); err != nil {
		return nil, fmt.Errorf("relational: invalid table name %q", table)
	}
	return &Store{db: db, table: table}, nil
}

// EnsureSchema creates the backing table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  code             TEXT PRIMARY KEY,
  created          TIMESTAMPTZ NOT NULL,
  last_updated     TIMESTAMPTZ NOT NULL,
  name             TEXT NOT NULL,
  localized_names  TEXT,
  brands           TEXT,
  quantity         DOUBLE PRECISION,
  unit             TEXT NOT NULL,
  serving_quantity DOUBLE PRECISION,
  alcohol             DOUBLE PRECISION, energy              DOUBLE PRECISION,
  bicarbonate         DOUBLE PRECISION, caffeine            DOUBLE PRECISION,
  calcium             DOUBLE PRECISION, carbohydrates       DOUBLE PRECISION,
  chloride            DOUBLE PRECISION, cholesterol         DOUBLE PRECISION,
  chromium            DOUBLE PRECISION, copper              DOUBLE PRECISION,
  fat                 DOUBLE PRECISION, fiber               DOUBLE PRECISION,
  fluoride            DOUBLE PRECISION, iodine              DOUBLE PRECISION,
  iron                DOUBLE PRECISION, lactose             DOUBLE PRECISION,
  magnesium           DOUBLE PRECISION, manganese           DOUBLE PRECISION,
  molybdenum          DOUBLE PRECISION, monounsaturated_fat DOUBLE PRECISION,
  omega_3_fat         DOUBLE PRECISION, omega_6_fat         DOUBLE PRECISION,
  phosphorus          DOUBLE PRECISION, polyunsaturated_fat DOUBLE PRECISION,
  potassium           DOUBLE PRECISION, proteins            DOUBLE PRECISION,
  salt                DOUBLE PRECISION, saturated_fat       DOUBLE PRECISION,
  selenium            DOUBLE PRECISION, sodium              DOUBLE PRECISION,
  starch              DOUBLE PRECISION, sugars              DOUBLE PRECISION,
  taurine             DOUBLE PRECISION, trans_fat           DOUBLE PRECISION,
  vitamin_a           DOUBLE PRECISION, vitamin_b1          DOUBLE PRECISION,
  vitamin_b2          DOUBLE PRECISION, vitamin_b3          DOUBLE PRECISION,
  vitamin_b5          DOUBLE PRECISION, vitamin_b6          DOUBLE PRECISION,
  vitamin_b7          DOUBLE PRECISION, vitamin_b9          DOUBLE PRECISION,
  vitamin_b12         DOUBLE PRECISION, vitamin_c           DOUBLE PRECISION,
  vitamin_d           DOUBLE PRECISION, vitamin_e           DOUBLE PRECISION,
  vitamin_k           DOUBLE PRECISION, vitamin_k1          DOUBLE PRECISION,
  zinc                DOUBLE PRECISION
);`, s.table)

	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("relational: ensure schema: %w", err)
	}
	return nil
}

// PutAll stages a batch in memory; nothing is written until Commit.
func (s *Store) PutAll(_ context.Context, batch []normalize.ProductEntry) error {
	s.staged = append(s.staged, batch...)
	return nil
}

// Commit opens a transaction, upserts every staged entry by code, and
// commits — or rolls back and returns the error, leaving nothing staged
// either way.
func (s *Store) Commit(ctx context.Context) error {
	if len(s.staged) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("relational: begin: %w", err)
	}
	s.tx = tx

	q := upsertQuery(s.table)
	for _, e := range s.staged {
		if _, err := tx.ExecContext(ctx, q, upsertArgs(e)...); err != nil {
			_ = tx.Rollback()
			s.tx = nil
			s.staged = nil
			return fmt.Errorf("relational: upsert %s: %w", e.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.tx = nil
		s.staged = nil
		return fmt.Errorf("relational: commit: %w", err)
	}
	s.tx = nil
	s.staged = nil
	return nil
}

// Rollback discards whatever PutAll staged without touching the database
// (the transaction, if any, is only opened inside Commit).
func (s *Store) Rollback(_ context.Context) error {
	s.staged = nil
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return nil
}

// upsertQuery builds a parameterized INSERT ... ON CONFLICT (code) DO
// UPDATE statement over entrycols.Columns, using $1..$N placeholders.
func upsertQuery(table string) string {
	cols := entrycols.Columns
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols)-1)
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c != "code" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (code) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

func upsertArgs(e normalize.ProductEntry) []any {
	return entrycols.Args(e)
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
