package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/expertmatch/ai"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

// BatchProcessor regenerates embeddings for batches of attributes.
type BatchProcessor struct {
	repo           storage.AttributeRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.AttributeRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process regenerates embeddings for a batch of attributes and stores the
// updates. Vectors are normalized so cosine similarity stays well behaved.
func (bp *BatchProcessor) Process(ctx context.Context, attrs []*core.Attribute) error {
	if len(attrs) == 0 {
		return nil
	}

	texts := make([]string, len(attrs))
	for i, attr := range attrs {
		texts[i] = attr.EmbeddingText()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(attrs) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(attrs), len(embeddings))
	}

	for i := range attrs {
		attrs[i].Embedding = NormalizeVector(embeddings[i])
	}

	if _, err := bp.repo.UpdateAttributes(ctx, attrs...); err != nil {
		return fmt.Errorf("failed to update attributes: %w", err)
	}

	return nil
}
