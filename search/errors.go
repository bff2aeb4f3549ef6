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


package search

import "errors"

var (
	// ErrEmptyQuery is returned when the query text is empty or blank.
	ErrEmptyQuery = errors.New("query text required")

	// ErrAttributeRepositoryRequired is returned when an attribute repository is not provided.
	ErrAttributeRepositoryRequired = errors.New("attribute repository required")

	// ErrExpertRepositoryRequired is returned when an expert repository is not provided.
	ErrExpertRepositoryRequired = errors.New("expert repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmbeddingBatchMismatch is returned when the embedder yields a batch
	// of unexpected size.
	ErrEmbeddingBatchMismatch = errors.New("embedding batch size mismatch")
)

// ExtractionError wraps a term extraction failure. The whole search request
// fails; there is no degraded fallback.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "term extraction failed: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmbeddingError wraps a batch embedding failure. Partial batch results are
// discarded; the whole search request fails.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return "batch embedding failed: " + e.Err.Error()
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
