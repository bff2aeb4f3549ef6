package storage

import (
	"context"

	"github.com/poiesic/expertmatch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// AttributeRepository provides operations for managing attributes.
type AttributeRepository interface {
	Repository
	// AddAttributes adds one or more attributes to storage.
	// Uses content-based IDs (IDFromContent of the attribute tuple).
	// Sets InsertedAt timestamp if not already set.
	// Returns the attributes with IDs and timestamps populated.
	AddAttributes(ctx context.Context, attrs ...*core.Attribute) ([]*core.Attribute, error)

	// UpdateAttributes updates existing attributes.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any attribute doesn't exist.
	UpdateAttributes(ctx context.Context, attrs ...*core.Attribute) ([]*core.Attribute, error)

	// DeleteAttributes removes attributes by their IDs.
	// Returns ErrNotFound if any attribute doesn't exist.
	DeleteAttributes(ctx context.Context, ids ...core.ID) error

	// GetAttribute retrieves a single attribute by ID.
	// Returns ErrNotFound if the attribute doesn't exist.
	GetAttribute(ctx context.Context, id core.ID) (*core.Attribute, error)

	// GetAttributes retrieves multiple attributes by their IDs.
	// Returns only the attributes that exist (no error for missing attributes).
	GetAttributes(ctx context.Context, ids ...core.ID) ([]*core.Attribute, error)

	// FindAttributeByTypeAndName finds an attribute by its type and name tuple.
	// Returns ErrNotFound if no matching attribute exists.
	FindAttributeByTypeAndName(ctx context.Context, typ core.AttributeType, name string) (*core.Attribute, error)

	// GetOrCreateAttribute finds or creates an attribute by type and name.
	// If the attribute exists, returns it.
	// If not, creates it with the provided summary and vector.
	// Thread-safe: handles concurrent creation attempts.
	GetOrCreateAttribute(ctx context.Context, typ core.AttributeType, name, summary string, vector []float32) (*core.Attribute, error)

	// ListAttributes retrieves all attributes of the given type.
	// An empty type retrieves attributes of every type.
	ListAttributes(ctx context.Context, typ core.AttributeType) ([]*core.Attribute, error)

	// FindAttributesWithoutEmbedding retrieves attributes that have no
	// embedding vector, up to limit results. A limit <= 0 means no limit.
	FindAttributesWithoutEmbedding(ctx context.Context, limit int) ([]*core.Attribute, error)

	// FindSimilarAttributes finds attributes of the given type similar to the
	// query vector. Returns matches with similarity >= minSimilarity, up to
	// limit results, ordered by similarity score (highest first). Attributes
	// without embeddings are skipped.
	FindSimilarAttributes(ctx context.Context, vector []float32, typ core.AttributeType, minSimilarity float32, limit int) ([]*core.AttributeMatch, error)
}

// ExpertRepository provides operations for managing experts and their
// work experiences.
type ExpertRepository interface {
	Repository
	// AddExperts adds one or more experts to storage.
	// For experts with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns the experts with generated IDs and timestamps populated.
	AddExperts(ctx context.Context, experts ...*core.Expert) ([]*core.Expert, error)

	// UpdateExperts updates existing experts.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any expert doesn't exist.
	UpdateExperts(ctx context.Context, experts ...*core.Expert) ([]*core.Expert, error)

	// DeleteExperts removes experts by their IDs, along with their
	// experiences and associated indices.
	// Returns ErrNotFound if any expert doesn't exist.
	DeleteExperts(ctx context.Context, ids ...core.ID) error

	// GetExpert retrieves a single expert by ID.
	// Returns ErrNotFound if the expert doesn't exist.
	GetExpert(ctx context.Context, id core.ID) (*core.Expert, error)

	// GetExperts retrieves multiple experts by their IDs.
	// Returns only the experts that exist (no error for missing experts).
	GetExperts(ctx context.Context, ids ...core.ID) ([]*core.Expert, error)

	// AddExperiences adds one or more experiences to storage.
	// For experiences with ID=0, generates new IDs from sequence.
	// Maintains the expert and attribute indices.
	// Returns ErrNotFound if the referenced expert doesn't exist.
	AddExperiences(ctx context.Context, exps ...*core.Experience) ([]*core.Experience, error)

	// UpdateExperiences updates existing experiences and their indices.
	// Returns ErrNotFound if any experience doesn't exist.
	UpdateExperiences(ctx context.Context, exps ...*core.Experience) ([]*core.Experience, error)

	// DeleteExperiences removes experiences by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any experience doesn't exist.
	DeleteExperiences(ctx context.Context, ids ...core.ID) error

	// GetExperience retrieves a single experience by ID.
	// Returns ErrNotFound if the experience doesn't exist.
	GetExperience(ctx context.Context, id core.ID) (*core.Experience, error)

	// GetExperiencesByExpert retrieves all experiences for an expert,
	// ordered by start date descending.
	GetExperiencesByExpert(ctx context.Context, expertID core.ID) ([]*core.Experience, error)

	// GetExperiencesByAttributes retrieves the experiences associated with
	// any of the given attribute IDs. Each experience appears at most once
	// even when it carries several of the attributes.
	GetExperiencesByAttributes(ctx context.Context, attributeIDs ...core.ID) ([]*core.Experience, error)

	// GetExpertGraphs loads experts together with their experiences and the
	// attributes those experiences reference.
	// Returns only the graphs for experts that exist.
	GetExpertGraphs(ctx context.Context, expertIDs ...core.ID) ([]*core.ExpertGraph, error)
}
