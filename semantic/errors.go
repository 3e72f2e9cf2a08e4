package semantic

import "errors"

var (
	// ErrEmptyQuery indicates a search with no query text.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmbeddingFailed indicates the embedder returned an unexpected
	// number of vectors.
	ErrEmbeddingFailed = errors.New("embedding failed")
)
