package ingest

import (
	"context"

	"github.com/chartlydata/offimport/internal/framer"
	"github.com/chartlydata/offimport/internal/normalize"
	"github.com/chartlydata/offimport/internal/parser"
)

// transformed is one line's parse+normalize outcome, carried back to the
// single consuming goroutine that owns the committer and Result counters.
type transformed struct {
	line  framer.Line
	entry normalize.ProductEntry
	err   error
}

// transformPool parallelizes the parse+normalize stage across a bounded
// number of goroutines (spec.md §5's "MAY parallelize the record transform"
// clause), while keeping the output in the same order f produced the lines
// — so progress and commit-batch contents are identical to the sequential
// path regardless of worker count. Modeled on the pack's semaphore-bounded
// worker pools (e.g. orchestrator/internal/coordinator's Pool), trimmed to
// this package's single-stage, ordered-output need: a dispatcher goroutine
// reads lines and launches one worker per line (bounded by a semaphore), and
// a separate forwarder drains each worker's result in dispatch order.
type transformPool struct {
	out  chan transformed
	done chan struct{}
}

// runTransformPool starts the dispatcher, workers, and forwarder, and
// returns a pool whose out channel yields one transformed value per line
// from f, in the same order f produced them, until f is exhausted (the
// final value carries io.EOF) or ctx/stop ends the run early.
func runTransformPool(ctx context.Context, f Line, workers int) *transformPool {
	if workers < 1 {
		workers = 1
	}

	p := &transformPool{
		out:  make(chan transformed),
		done: make(chan struct{}),
	}

	// futures is the ordered queue of in-flight results: bounded to
	// workers so the dispatcher never gets more than one pool-width ahead
	// of the forwarder, which is what keeps memory bounded under a slow
	// sink.
	futures := make(chan chan transformed, workers)
	sem := make(chan struct{}, workers)

	go func() { // dispatcher
		defer close(futures)
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.done:
				return
			default:
			}

			line, err := f.Next(ctx)
			if err != nil {
				resCh := make(chan transformed, 1)
				resCh <- transformed{err: err}
				select {
				case futures <- resCh:
				case <-p.done:
				}
				return
			}

			select {
			case sem <- struct{}{}:
			case <-p.done:
				return
			}

			resCh := make(chan transformed, 1)
			select {
			case futures <- resCh:
			case <-p.done:
				<-sem
				return
			}

			go func(l framer.Line) {
				defer func() { <-sem }()
				rec, perr := parser.Parse(l.Data)
				if perr != nil {
					resCh <- transformed{line: l, err: perr}
					return
				}
				entry, nerr := normalize.Normalize(rec)
				resCh <- transformed{line: l, entry: entry, err: nerr}
			}(line)
		}
	}()

	go func() { // forwarder
		defer close(p.out)
		for resCh := range futures {
			select {
			case res := <-resCh:
				select {
				case p.out <- res:
				case <-p.done:
					return
				}
			case <-p.done:
				return
			}
		}
	}()

	return p
}

// stop signals the dispatcher and forwarder to exit early, for
// cancellation and fatal errors. Safe to call more than once.
func (p *transformPool) stop() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}
