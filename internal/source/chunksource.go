// Package source implements ChunkSource (spec.md §4.1): a lazy, pull-based
// sequence of (bytes, progress) pairs fetched over HTTP. Two strategies are
// provided, as the spec allows either: Streaming (one GET, read in
// chunkSize pieces) and Ranged (HEAD for Content-Length, then successive
// ranged GETs), both retried with exponential backoff on transient
// failures.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/chartlydata/offimport/internal/ingestconfig"
	"github.com/chartlydata/offimport/internal/ingesterr"
)

// Chunk is one piece of the compressed feed plus its overall progress.
// HasProgress is false when total length is unknown (streaming strategy
// against a server without Content-Length).
type Chunk struct {
	Data        []byte
	Progress    float64
	HasProgress bool
}

// Source is a finite, pull-based sequence of chunks. Next returns io.EOF
// itself (unwrapped) once the transfer completes normally; any other error is a
// *ingesterr.DownloadError and is fatal to the run.
type Source interface {
	Next(ctx context.Context) (Chunk, error)
}

// New picks a strategy per cfg.UseRangedSource and returns a ready Source.
// It performs no network I/O until the first Next call.
func New(cfg ingestconfig.Config, client *http.Client) Source {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.UseRangedSource {
		return NewRangedSource(cfg.FeedURL, cfg.ChunkSize, cfg.Retry, cfg.RatePerSecond, client)
	}
	return NewStreamingSource(cfg.FeedURL, cfg.ChunkSize, cfg.Retry, client)
}

// ---------------------------------------------------------------------
// Strategy A: streaming GET
// ---------------------------------------------------------------------

// StreamingSource issues a single GET and reads the body in fixed-size
// pieces, reporting progress from Content-Length when the server sends
// one.
type StreamingSource struct {
	url       string
	chunkSize int
	retry     ingestconfig.RetryPolicy
	client    *http.Client

	body          io.ReadCloser
	contentLength int64
	bytesRead     int64
	started       bool
	done          bool
}

func NewStreamingSource(url string, chunkSize int, retry ingestconfig.RetryPolicy, client *http.Client) *StreamingSource {
	return &StreamingSource{url: url, chunkSize: chunkSize, retry: retry, client: client}
}

func (s *StreamingSource) Next(ctx context.Context) (Chunk, error) {
	if s.done {
		return Chunk{}, io.EOF
	}
	if !s.started {
		if err := s.open(ctx); err != nil {
			return Chunk{}, err
		}
		s.started = true
	}

	buf := make([]byte, s.chunkSize)
	n, err := s.body.Read(buf)
	if n > 0 {
		s.bytesRead += int64(n)
		chunk := Chunk{Data: buf[:n]}
		if s.contentLength > 0 {
			chunk.HasProgress = true
			chunk.Progress = float64(s.bytesRead) / float64(s.contentLength)
			if chunk.Progress > 1.0 {
				chunk.Progress = 1.0
			}
		}
		if err == io.EOF {
			s.done = true
			_ = s.body.Close()
			if chunk.HasProgress {
				chunk.Progress = 1.0
			}
		}
		return chunk, nil
	}
	if err != nil {
		s.done = true
		_ = s.body.Close()
		if err == io.EOF {
			return Chunk{}, io.EOF
		}
		return Chunk{}, ingesterr.NewDownloadError("transfer aborted", err)
	}
	return Chunk{}, nil
}

func (s *StreamingSource) open(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return ingesterr.NewDownloadError("build request failed", err)
	}

	res, err := doWithRetry(ctx, s.client, req, s.retry)
	if err != nil {
		return err
	}

	s.body = res.Body
	s.contentLength = res.ContentLength
	return nil
}

// ---------------------------------------------------------------------
// Strategy B: ranged GET
// ---------------------------------------------------------------------

// RangedSource issues a HEAD to learn Content-Length, then loops issuing
// `Range: bytes=a-b` GETs of chunkSize, retried with backoff and
// optionally throttled to ratePerSecond ranges/sec.
type RangedSource struct {
	url       string
	chunkSize int
	retry     ingestconfig.RetryPolicy
	client    *http.Client
	limiter   *rate.Limiter

	contentLength int64
	pos           int64
	started       bool
	done          bool
}

func NewRangedSource(url string, chunkSize int, retry ingestconfig.RetryPolicy, ratePerSecond float64, client *http.Client) *RangedSource {
	var lim *rate.Limiter
	if ratePerSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return &RangedSource{url: url, chunkSize: chunkSize, retry: retry, client: client, limiter: lim}
}

func (s *RangedSource) Next(ctx context.Context) (Chunk, error) {
	if s.done {
		return Chunk{}, io.EOF
	}
	if !s.started {
		if err := s.head(ctx); err != nil {
			return Chunk{}, err
		}
		s.started = true
	}
	if s.pos >= s.contentLength {
		s.done = true
		return Chunk{}, io.EOF
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return Chunk{}, ingesterr.NewDownloadError("rate limiter wait failed", err)
		}
	}

	end := s.pos + int64(s.chunkSize) - 1
	if end >= s.contentLength {
		end = s.contentLength - 1
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Chunk{}, ingesterr.NewDownloadError("build request failed", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", s.pos, end))

	res, err := doWithRetry(ctx, s.client, req, s.retry)
	if err != nil {
		return Chunk{}, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return Chunk{}, ingesterr.NewDownloadError("range read failed", err)
	}

	s.pos += int64(len(data))
	progress := float64(s.pos) / float64(s.contentLength)
	if progress > 1.0 {
		progress = 1.0
	}
	if s.pos >= s.contentLength {
		s.done = true
		progress = 1.0
	}

	return Chunk{Data: data, Progress: progress, HasProgress: true}, nil
}

func (s *RangedSource) head(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return ingesterr.NewDownloadError("build HEAD request failed", err)
	}

	res, err := doWithRetry(ctx, s.client, req, s.retry)
	if err != nil {
		return err
	}
	_ = res.Body.Close()

	if res.ContentLength <= 0 {
		return ingesterr.NewDownloadError("No content length found", nil)
	}
	s.contentLength = res.ContentLength
	return nil
}

// ---------------------------------------------------------------------
// retry/backoff shared by both strategies
// ---------------------------------------------------------------------

func retryable(code int, codes []int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// doWithRetry executes req, retrying on transient statuses and transport
// errors with exponential backoff (factor * 2^(attempt-1)), bounded by
// policy.MaxAttempts. Redirects are left to the client's own redirect
// handling: this function does not read policy.MaxRedirects or set
// client.CheckRedirect (cmd/offimport builds a client whose CheckRedirect
// enforces the limit).
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy ingestconfig.RetryPolicy) (*http.Response, error) {
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := policy.BackoffFactor
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
		} else if retryable(res.StatusCode, policy.RetryableCodes) {
			_ = res.Body.Close()
			lastErr = fmt.Errorf("transient status %d", res.StatusCode)
		} else if res.StatusCode >= 400 {
			_ = res.Body.Close()
			return nil, ingesterr.NewDownloadError(fmt.Sprintf("unexpected status %d", res.StatusCode), nil)
		} else {
			return res, nil
		}

		if attempt == maxAttempts {
			break
		}

		delay := backoff * time.Duration(1<<uint(attempt-1))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ingesterr.NewDownloadError("cancelled during backoff", ctx.Err())
		}
	}

	return nil, ingesterr.NewDownloadError("transfer aborted after retries", lastErr)
}
