// Package sink implements the EntrySink contract (spec.md §6) and the
// BatchCommitter (spec.md §4.5) that buffers ProductEntry values in front
// of it.
package sink

import (
	"context"

	"github.com/chartlydata/offimport/internal/normalize"
)

// EntrySink accepts batches of entries and commits them atomically,
// upserting by ProductEntry.Code. A sink is considered transactional: once
// Commit returns an error the staged batch is treated as already rolled
// back by the implementation.
type EntrySink interface {
	PutAll(ctx context.Context, batch []normalize.ProductEntry) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// CountingSink is a no-op EntrySink used for -dry-run: it records how many
// entries and commits would have occurred without touching storage.
type CountingSink struct {
	Entries int
	Commits int
	staged  int
}

func NewCountingSink() *CountingSink { return &CountingSink{} }

func (s *CountingSink) PutAll(_ context.Context, batch []normalize.ProductEntry) error {
	s.staged += len(batch)
	return nil
}

func (s *CountingSink) Commit(_ context.Context) error {
	s.Entries += s.staged
	s.staged = 0
	s.Commits++
	return nil
}

func (s *CountingSink) Rollback(_ context.Context) error {
	s.staged = 0
	return nil
}
