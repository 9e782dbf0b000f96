package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input: empty content,
	// oversized content, an invalid chunk size, or an empty user id.
	// Surfaced synchronously at the API boundary; never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrScopeViolation indicates the caller attempted to act on a document
	// owned by a different user. Always surfaced, never silently ignored.
	ErrScopeViolation = errors.New("document not owned by user")

	// ErrIngestInProgress indicates an ingestion for the same document is
	// already running. The caller may retry once it completes.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrDimensionMismatch indicates a vector's dimensionality does not match
	// the store's configured dimension. This is a configuration error, not a
	// condition to silently truncate around.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingTransient indicates a retryable embedding failure
	// (timeout, connection refused, rate limit, server error).
	ErrEmbeddingTransient = errors.New("transient embedding failure")

	// ErrEmbeddingPermanent indicates an embedding failure that retrying will
	// not fix (oversized input, unsupported content). The affected chunk is
	// persisted without a vector.
	ErrEmbeddingPermanent = errors.New("permanent embedding failure")

	// ErrEmbeddingUnavailable indicates the embedding provider is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrStorageUnavailable indicates the repository backend failed. The
	// ingestion attempt is left in Failed state for safe retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
