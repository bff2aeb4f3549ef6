package ingestion

import "errors"

var (
	// ErrAttributeRepositoryRequired is returned when an attribute repository is not provided.
	ErrAttributeRepositoryRequired = errors.New("attribute repository required")

	// ErrExpertRepositoryRequired is returned when an expert repository is not provided.
	ErrExpertRepositoryRequired = errors.New("expert repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
