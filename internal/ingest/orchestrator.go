// Package ingest implements the OrchestratorLoop (spec.md §4.6): it threads
// the source, framer, parser, and normalizer together, tracks totals and a
// reject-reason histogram, and drives the BatchCommitter, honoring
// cooperative cancellation.
package ingest

import (
	"context"
	"io"

	"github.com/chartlydata/offimport/internal/framer"
	"github.com/chartlydata/offimport/internal/ingesterr"
	"github.com/chartlydata/offimport/internal/normalize"
	"github.com/chartlydata/offimport/internal/parser"
	"github.com/chartlydata/offimport/internal/progress"
	"github.com/chartlydata/offimport/internal/sink"
	"github.com/chartlydata/offimport/pkg/logging"
)

// Result is the end-of-run summary spec.md §4.6 requires: counts plus a
// histogram of why records were rejected, for the import-run observability
// spec.md's Supplemented Features call for.
type Result struct {
	Total        int64
	Valid        int64
	RejectCounts map[string]int64
}

// Line is anything that can hand back decompressed NDJSON lines with
// progress attached — satisfied by *framer.Framer, and by test stand-ins.
type Line interface {
	Next(ctx context.Context) (framer.Line, error)
}

// Run pulls lines from f until exhaustion or a fatal error, parses and
// normalizes each, and feeds accepted entries to committer. It returns a
// Result on normal completion (fatal *ingesterr.DownloadError aside).
// On cancellation or fatal error, the current batch is flushed before
// returning. workers controls how many lines' parse+normalize steps run
// concurrently (spec.md §5); workers <= 1 runs the single-goroutine path.
func Run(ctx context.Context, f Line, committer *sink.BatchCommitter, log *logging.Logger, prog *progress.Server, workers int) (Result, error) {
	if workers <= 1 {
		return runSequential(ctx, f, committer, log, prog)
	}
	return runParallel(ctx, f, committer, log, prog, workers)
}

func runSequential(ctx context.Context, f Line, committer *sink.BatchCommitter, log *logging.Logger, prog *progress.Server) (Result, error) {
	res := Result{RejectCounts: make(map[string]int64)}

	for {
		select {
		case <-ctx.Done():
			_ = committer.Flush(context.WithoutCancel(ctx))
			return res, ctx.Err()
		default:
		}

		line, err := f.Next(ctx)
		if err == io.EOF {
			if ferr := committer.Flush(ctx); ferr != nil {
				return res, ferr
			}
			if prog != nil {
				prog.Update(progress.Snapshot{Progress: 1.0, Total: res.Total, Valid: res.Valid, RejectCounts: res.RejectCounts, Done: true})
			}
			return res, nil
		}
		if err != nil {
			_ = committer.Flush(ctx)
			if log != nil {
				log.Error("ingest_fatal", map[string]any{"error": err.Error()})
			}
			return res, err
		}

		res.Total++

		rec, perr := parser.Parse(line.Data)
		if perr == nil {
			var entry normalize.ProductEntry
			entry, perr = normalize.Normalize(rec)
			if perr == nil {
				if cerr := committer.Add(ctx, entry); cerr != nil {
					return res, cerr
				}
				res.Valid++
			}
		}
		if perr != nil {
			if !ingesterr.IsInvalidData(perr) {
				// parser/normalize only ever emit InvalidDataError; anything
				// else is unexpected and treated as fatal rather than a
				// silent per-record skip.
				_ = committer.Flush(ctx)
				return res, perr
			}
			reason := perr.Error()
			res.RejectCounts[reason]++
			if log != nil {
				log.Warn("record_rejected", map[string]any{"reason": reason})
			}
		}

		if prog != nil && line.HasProgress {
			prog.Update(progress.Snapshot{Progress: line.Progress, Total: res.Total, Valid: res.Valid, RejectCounts: res.RejectCounts})
		}
	}
}

// runParallel fans the parse+normalize step for each line across a bounded
// transformPool, but keeps result consumption — committer.Add, Result
// bookkeeping, and progress updates — on this single goroutine, since none
// of those are safe to call concurrently. Line order, and therefore commit
// batch contents and progress, is identical to runSequential.
func runParallel(ctx context.Context, f Line, committer *sink.BatchCommitter, log *logging.Logger, prog *progress.Server, workers int) (Result, error) {
	res := Result{RejectCounts: make(map[string]int64)}

	pool := runTransformPool(ctx, f, workers)
	defer pool.stop()

	for {
		select {
		case <-ctx.Done():
			pool.stop()
			_ = committer.Flush(context.WithoutCancel(ctx))
			return res, ctx.Err()
		case t, ok := <-pool.out:
			if !ok {
				_ = committer.Flush(context.WithoutCancel(ctx))
				return res, ctx.Err()
			}
			if t.err == io.EOF {
				if ferr := committer.Flush(ctx); ferr != nil {
					return res, ferr
				}
				if prog != nil {
					prog.Update(progress.Snapshot{Progress: 1.0, Total: res.Total, Valid: res.Valid, RejectCounts: res.RejectCounts, Done: true})
				}
				return res, nil
			}
			if t.err != nil && !ingesterr.IsInvalidData(t.err) {
				_ = committer.Flush(ctx)
				if log != nil {
					log.Error("ingest_fatal", map[string]any{"error": t.err.Error()})
				}
				return res, t.err
			}

			res.Total++

			if t.err == nil {
				if cerr := committer.Add(ctx, t.entry); cerr != nil {
					return res, cerr
				}
				res.Valid++
			} else {
				reason := t.err.Error()
				res.RejectCounts[reason]++
				if log != nil {
					log.Warn("record_rejected", map[string]any{"reason": reason})
				}
			}

			if prog != nil && t.line.HasProgress {
				prog.Update(progress.Snapshot{Progress: t.line.Progress, Total: res.Total, Valid: res.Valid, RejectCounts: res.RejectCounts})
			}
		}
	}
}
