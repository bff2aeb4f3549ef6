package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts reports a retry attempt budget of zero or less.
	ErrInvalidMaxAttempts = errors.New("retry attempt budget must be positive")

	// ErrEmbeddingCountMismatch reports an embedder returning a different
	// number of vectors than attributes in the batch.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
