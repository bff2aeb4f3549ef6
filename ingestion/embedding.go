// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/expertmatch/ai"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

// embeddingEnsurer computes and stores embeddings for taxonomy attributes.
type embeddingEnsurer struct {
	attributes storage.AttributeRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

func newEmbeddingEnsurer(attributes storage.AttributeRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingEnsurer, error) {
	if attributes == nil {
		return nil, fmt.Errorf("attribute repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingEnsurer{
		attributes: attributes,
		embedder:   embedder,
		logger:     logger.With("component", "embedding-ensurer"),
	}, nil
}

// ensure computes embeddings for the attributes that lack one and persists
// the updates. Attributes that already carry an embedding are left untouched.
func (e *embeddingEnsurer) ensure(ctx context.Context, attrs ...*core.Attribute) error {
	var pending []*core.Attribute
	for _, attr := range attrs {
		if len(attr.Embedding) == 0 {
			pending = append(pending, attr)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	texts := make([]string, len(pending))
	for i, attr := range pending {
		texts[i] = attr.EmbeddingText()
	}

	e.logger.Debug("generating attribute embeddings", "attributes", len(texts))
	vectors, err := e.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		e.logger.Error("error generating attribute embeddings", "err", err)
		return err
	}
	if len(vectors) != len(pending) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(pending), len(vectors))
	}

	for i := range vectors {
		pending[i].Embedding = vectors[i]
	}

	_, err = e.attributes.UpdateAttributes(ctx, pending...)
	return err
}
