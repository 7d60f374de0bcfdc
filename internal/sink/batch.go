package sink

import (
	"context"

	"github.com/chartlydata/offimport/internal/normalize"
)

// BatchCommitter buffers accepted entries and flushes them to an EntrySink
// every commitInterval records and once more at end of stream (spec.md
// §4.5). A commit failure is not retried: the sink is assumed to have
// already rolled back its staged batch, and the error propagates to the
// caller as fatal.
type BatchCommitter struct {
	sink          EntrySink
	commitInterval int
	buf           []normalize.ProductEntry

	commits int
}

func NewBatchCommitter(s EntrySink, commitInterval int) *BatchCommitter {
	if commitInterval <= 0 {
		commitInterval = 1
	}
	return &BatchCommitter{sink: s, commitInterval: commitInterval}
}

// Add stages one entry, flushing automatically once the buffer reaches
// commitInterval.
func (c *BatchCommitter) Add(ctx context.Context, entry normalize.ProductEntry) error {
	c.buf = append(c.buf, entry)
	if len(c.buf) >= c.commitInterval {
		return c.flush(ctx)
	}
	return nil
}

// Flush commits any remaining buffered entries. Safe to call when the
// buffer is empty (no-op).
func (c *BatchCommitter) Flush(ctx context.Context) error {
	if len(c.buf) == 0 {
		return nil
	}
	return c.flush(ctx)
}

// Commits reports how many commit calls have succeeded so far.
func (c *BatchCommitter) Commits() int { return c.commits }

func (c *BatchCommitter) flush(ctx context.Context) error {
	if err := c.sink.PutAll(ctx, c.buf); err != nil {
		_ = c.sink.Rollback(ctx)
		return err
	}
	if err := c.sink.Commit(ctx); err != nil {
		return err
	}
	c.commits++
	c.buf = c.buf[:0]
	return nil
}
