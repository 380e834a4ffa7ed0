package retrieval

import "errors"

var (
	// ErrEmbeddingFailure is returned when the query cannot be embedded.
	// No retrieval can proceed without the query vector, so this aborts
	// the request before any adapter runs.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrAllAdaptersEmpty indicates every adapter failed or returned
	// nothing. It is recoverable: the fallback adapter runs before this
	// surfaces to a caller.
	ErrAllAdaptersEmpty = errors.New("all adapters returned no candidates")

	// ErrGenerationFailure is returned when the answer provider fails.
	// Surfaced to the user as a generic "could not generate an answer".
	ErrGenerationFailure = errors.New("generation failure")
)
