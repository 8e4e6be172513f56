package domain

import "errors"

// Sentinel errors for the acquisition pipeline. Callers match with errors.Is;
// sites that add context wrap with fmt.Errorf and %w.
var (
	// ErrCatalogUnavailable means the remote listing could not be reached at
	// all (transport failure, server error, or open circuit breaker).
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrDownloadFailed means an object transfer failed after exhausting the
	// configured retries.
	ErrDownloadFailed = errors.New("download failed")

	// ErrMalformedKey means an object key violates the naming grammar.
	// Always fatal for that object; timestamps are never guessed.
	ErrMalformedKey = errors.New("malformed object key")

	// ErrDecodeFailed means a decoder could not parse a cached payload.
	// Decoder implementations wrap it; the pipeline degrades the affected
	// frame instead of failing the run.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrNoFrames means no frame set has been assembled yet.
	ErrNoFrames = errors.New("no frames assembled yet")
)
