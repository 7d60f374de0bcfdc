package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/chartlydata/offimport/internal/normalize"
)

type recordingSink struct {
	putAllCalls [][]normalize.ProductEntry
	commits     int
	rollbacks   int
	commitErr   error
}

func (s *recordingSink) PutAll(_ context.Context, batch []normalize.ProductEntry) error {
	cp := append([]normalize.ProductEntry(nil), batch...)
	s.putAllCalls = append(s.putAllCalls, cp)
	return nil
}

func (s *recordingSink) Commit(_ context.Context) error {
	s.commits++
	return s.commitErr
}

func (s *recordingSink) Rollback(_ context.Context) error {
	s.rollbacks++
	return nil
}

func TestBatchCommitter_FlushesAtCommitInterval(t *testing.T) {
	rs := &recordingSink{}
	c := NewBatchCommitter(rs, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := c.Add(ctx, normalize.ProductEntry{Code: string(rune('a' + i))}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if rs.commits != 2 {
		t.Fatalf("commits = %d, want 2 (two full batches of 2)", rs.commits)
	}
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if rs.commits != 3 {
		t.Fatalf("commits after final flush = %d, want 3", rs.commits)
	}
	if len(rs.putAllCalls) != 3 || len(rs.putAllCalls[2]) != 1 {
		t.Fatalf("final batch should hold the one leftover entry: %v", rs.putAllCalls)
	}
}

func TestBatchCommitter_EmptyFlushIsNoOp(t *testing.T) {
	rs := &recordingSink{}
	c := NewBatchCommitter(rs, 10)
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if rs.commits != 0 {
		t.Fatalf("expected no commits, got %d", rs.commits)
	}
}

func TestBatchCommitter_CommitFailurePropagates(t *testing.T) {
	wantErr := errors.New("boom")
	rs := &recordingSink{commitErr: wantErr}
	c := NewBatchCommitter(rs, 1)

	err := c.Add(context.Background(), normalize.ProductEntry{Code: "x"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Add error = %v, want %v", err, wantErr)
	}
}

func TestCountingSink_TracksEntriesAndCommits(t *testing.T) {
	cs := NewCountingSink()
	ctx := context.Background()
	_ = cs.PutAll(ctx, []normalize.ProductEntry{{Code: "a"}, {Code: "b"}})
	_ = cs.Commit(ctx)
	_ = cs.PutAll(ctx, []normalize.ProductEntry{{Code: "c"}})
	_ = cs.Commit(ctx)

	if cs.Entries != 3 {
		t.Fatalf("Entries = %d, want 3", cs.Entries)
	}
	if cs.Commits != 2 {
		t.Fatalf("Commits = %d, want 2", cs.Commits)
	}
}
