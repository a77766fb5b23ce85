package models

import "errors"

// Error taxonomy for the summarization pipeline. Failures local to a single
// document (ErrExtraction, ErrClustering, a failed summarization prompt) are
// recorded and the batch continues; ErrModelUnavailable means the inference
// service itself is unusable and is propagated to the caller of the batch.
var (
	// ErrInvalidInput indicates empty text or a malformed chunking
	// configuration. Not retried; the caller must fix the configuration.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtraction indicates an unreadable or corrupt source file.
	ErrExtraction = errors.New("extraction failed")

	// ErrClustering indicates the embedding or clustering step failed.
	ErrClustering = errors.New("clustering failed")

	// ErrModelUnavailable indicates the inference service is unreachable or
	// the requested model is not installed.
	ErrModelUnavailable = errors.New("model unavailable")
)
