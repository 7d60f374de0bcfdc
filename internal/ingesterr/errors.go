// Package ingesterr defines the two error kinds the ingestion pipeline
// produces: a non-fatal per-record InvalidDataError and a fatal
// DownloadError. Both wrap a stable reason string so callers can match on
// it with errors.Is/errors.As without string-comparing Error().
package ingesterr

import (
	"errors"
	"fmt"
)

// sentinel markers identifying the two error kinds via errors.Is.
var (
	ErrInvalidData = errors.New("invalid data")
	ErrDownload    = errors.New("download error")
)

// InvalidDataError is a per-record, non-fatal rejection. Reason is one of
// the stable strings enumerated in spec.md §7 (e.g. "no identifier",
// "invalid EAN-13 code", or a passed-through JSON decode message).
type InvalidDataError struct {
	Reason string
}

func (e *InvalidDataError) Error() string { return e.Reason }

func (e *InvalidDataError) Unwrap() error { return ErrInvalidData }

// NewInvalidData builds an InvalidDataError from a fixed reason.
func NewInvalidData(reason string) *InvalidDataError {
	return &InvalidDataError{Reason: reason}
}

// NewInvalidDataf builds an InvalidDataError with a formatted reason, for
// the handful of reasons that embed a value (e.g. "invalid identifier (%s)").
func NewInvalidDataf(format string, args ...any) *InvalidDataError {
	return &InvalidDataError{Reason: fmt.Sprintf(format, args...)}
}

// DownloadError is fatal to the run: transport failures that exhausted
// retries, or a ranged-strategy source whose server omitted Content-Length.
type DownloadError struct {
	Reason string
	Cause  error
}

func (e *DownloadError) Error() string {
	if e.Cause != nil {
		return e.Reason + ": " + e.Cause.Error()
	}
	return e.Reason
}

func (e *DownloadError) Unwrap() error { return ErrDownload }

// NewDownloadError builds a DownloadError, optionally wrapping a cause.
func NewDownloadError(reason string, cause error) *DownloadError {
	return &DownloadError{Reason: reason, Cause: cause}
}

// IsInvalidData reports whether err is (or wraps) an InvalidDataError.
func IsInvalidData(err error) bool {
	return errors.Is(err, ErrInvalidData)
}

// IsDownload reports whether err is (or wraps) a DownloadError.
func IsDownload(err error) bool {
	return errors.Is(err, ErrDownload)
}
