package reembed

import (
	"context"

	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

const (
	// DefaultBatchSize is the default number of attributes per batch
	DefaultBatchSize = 100
)

// AttributeIterator walks the full attribute taxonomy in batches.
type AttributeIterator struct {
	repo      storage.AttributeRepository
	batchSize int
}

// NewAttributeIterator creates a new attribute iterator.
// batchSize: number of attributes in each batch (must be > 0)
func NewAttributeIterator(repo storage.AttributeRepository, batchSize int) *AttributeIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &AttributeIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch of attributes, across every type.
// Iteration stops on the first error from fn. Context cancellation is
// checked between batches.
func (it *AttributeIterator) ForEach(ctx context.Context, fn func([]*core.Attribute) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attrs, err := it.repo.ListAttributes(ctx, "")
	if err != nil {
		return err
	}

	for start := 0; start < len(attrs); start += it.batchSize {
		end := start + it.batchSize
		if end > len(attrs) {
			end = len(attrs)
		}

		if err := fn(attrs[start:end]); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
