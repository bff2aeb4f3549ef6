package ai

import (
	"context"

	"github.com/poiesic/expertmatch/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TermExtractor extracts candidate attribute terms from free text.
// Implementations must be thread-safe for concurrent use.
type TermExtractor interface {
	// ExtractTerms analyzes text and proposes attribute terms for each of the
	// requested types, ordered by relevance (most relevant first). Types with
	// no terms found are omitted from the result.
	// Returns an empty map if nothing is found.
	// Returns an error if extraction fails.
	ExtractTerms(ctx context.Context, text string, types []core.AttributeType) (map[core.AttributeType][]string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and TermExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// TermExtractor returns the attribute term extraction service.
	// The returned TermExtractor is safe for concurrent use.
	TermExtractor() TermExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
