// Command offimport runs one OpenFoodFacts dump ingestion pass: it fetches
// the feed named by the first argument, streams it through decompression,
// parsing, and normalization, and commits accepted entries to the
// configured sink.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/chartlydata/offimport/internal/framer"
	"github.com/chartlydata/offimport/internal/ingest"
	"github.com/chartlydata/offimport/internal/ingestconfig"
	"github.com/chartlydata/offimport/internal/ingesterr"
	"github.com/chartlydata/offimport/internal/progress"
	"github.com/chartlydata/offimport/internal/sink"
	"github.com/chartlydata/offimport/internal/sink/relational"
	"github.com/chartlydata/offimport/internal/sink/sqlitestore"
	"github.com/chartlydata/offimport/internal/source"
	"github.com/chartlydata/offimport/pkg/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file")
	dryRun := flag.Bool("dry-run", false, "run the full pipeline but do not write to the sink")
	flag.Parse()

	feedURL := flag.Arg(0)

	log := logging.New(os.Stderr)

	cfg, err := ingestconfig.Load(*configPath, feedURL)
	if err != nil {
		log.Error("config_load_failed", map[string]any{"error": err.Error()})
		return 1
	}
	if *dryRun {
		cfg.DryRun = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var prog *progress.Server
	if cfg.ProgressAddr != "" {
		prog = progress.NewServer()
		srv := &http.Server{Addr: cfg.ProgressAddr, Handler: prog.Router(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("progress_server_failed", map[string]any{"error": err.Error()})
			}
		}()
		defer srv.Close()
	}

	entrySink, closeSink, err := openSink(cfg)
	if err != nil {
		log.Error("sink_open_failed", map[string]any{"error": err.Error()})
		return 1
	}
	defer closeSink()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.Retry.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.Retry.MaxRedirects)
			}
			return nil
		},
	}

	src := source.New(cfg, client)
	f := framer.New(src)
	committer := sink.NewBatchCommitter(entrySink, cfg.CommitInterval)

	runID := uuid.NewString()
	log.Info("ingest_started", map[string]any{"run_id": runID, "feed_url": cfg.FeedURL, "sink_driver": cfg.SinkDriver, "dry_run": cfg.DryRun})

	result, err := ingest.Run(ctx, f, committer, log, prog, cfg.Workers)
	if err != nil {
		if ingesterr.IsDownload(err) {
			log.Error("ingest_failed", map[string]any{"run_id": runID, "error": err.Error()})
			return 1
		}
		if errors.Is(err, context.Canceled) {
			log.Info("ingest_cancelled", map[string]any{"run_id": runID, "total": result.Total, "valid": result.Valid})
			return 0
		}
		log.Error("ingest_failed", map[string]any{"run_id": runID, "error": err.Error()})
		return 1
	}

	log.Info("ingest_completed", map[string]any{
		"run_id":        runID,
		"total":         result.Total,
		"valid":         result.Valid,
		"reject_counts": result.RejectCounts,
	})
	return 0
}

// openSink builds the EntrySink named by cfg.SinkDriver, or a
// sink.CountingSink when cfg.DryRun is set.
func openSink(cfg ingestconfig.Config) (sink.EntrySink, func(), error) {
	if cfg.DryRun {
		return sink.NewCountingSink(), func() {}, nil
	}

	switch cfg.SinkDriver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.SinkDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		store, err := relational.NewStore(db, "products")
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil
	case "sqlite":
		store, err := sqlitestore.Open(cfg.SinkDSN, "products")
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported sink driver %q", cfg.SinkDriver)
	}
}
