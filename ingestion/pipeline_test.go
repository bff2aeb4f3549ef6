package ingestion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/expertmatch/ai/mock"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
	"github.com/poiesic/expertmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepositories(t *testing.T) (storage.AttributeRepository, storage.ExpertRepository) {
	t.Helper()
	attrRepo, expertRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		backend.Close()
	})
	return attrRepo, expertRepo
}

func TestNewPipeline(t *testing.T) {
	attrRepo, expertRepo := newTestRepositories(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(attrRepo, expertRepo, provider)
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p)
	})

	t.Run("with pool size", func(t *testing.T) {
		p, err := NewPipeline(attrRepo, expertRepo, provider, WithPoolSize(2))
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p)
	})

	t.Run("resolve threshold clamped", func(t *testing.T) {
		p, err := NewPipeline(attrRepo, expertRepo, provider, WithResolveThreshold(7))
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, float32(1), p.resolveThreshold)
	})

	t.Run("nil attribute repository", func(t *testing.T) {
		_, err := NewPipeline(nil, expertRepo, provider)
		assert.Equal(t, ErrAttributeRepositoryRequired, err)
	})

	t.Run("nil expert repository", func(t *testing.T) {
		_, err := NewPipeline(attrRepo, nil, provider)
		assert.Equal(t, ErrExpertRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(attrRepo, expertRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestRegisterAttribute(t *testing.T) {
	attrRepo, expertRepo := newTestRepositories(t)
	p, err := NewPipeline(attrRepo, expertRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	attr, err := p.RegisterAttribute(ctx, core.AttributeTypeSkill, "kubernetes", "container orchestration")
	require.NoError(t, err)
	assert.NotZero(t, attr.Id)
	assert.NotEmpty(t, attr.Embedding)

	// Registering again returns the same attribute
	again, err := p.RegisterAttribute(ctx, core.AttributeTypeSkill, "kubernetes", "different summary")
	require.NoError(t, err)
	assert.Equal(t, attr.Id, again.Id)
	assert.Equal(t, "container orchestration", again.Summary)

	t.Run("invalid type rejected", func(t *testing.T) {
		_, err := p.RegisterAttribute(ctx, "flavor", "spicy", "")
		assert.ErrorIs(t, err, core.ErrUnknownAttributeType)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := p.RegisterAttribute(ctx, core.AttributeTypeSkill, "", "")
		assert.ErrorIs(t, err, core.ErrEmptyAttributeName)
	})
}

func TestRegisterAttribute_NormalizesAcrossPaths(t *testing.T) {
	attrRepo, expertRepo := newTestRepositories(t)
	p, err := NewPipeline(attrRepo, expertRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	attr, err := p.RegisterAttribute(ctx, core.AttributeTypeAgency, "  NASA ", " space agency ")
	require.NoError(t, err)
	assert.Equal(t, "nasa", attr.Name)
	assert.Equal(t, "space agency", attr.Summary)

	expert, err := p.IngestExpert(ctx, &ExpertProfile{
		Name: "Dana Reed",
		Experiences: []ExperienceProfile{{
			StartDate:  time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			Attributes: []AttributeTerm{{Type: core.AttributeTypeAgency, Name: "nasa"}},
		}},
	})
	require.NoError(t, err)

	// Both paths land on the same taxonomy entry
	all, err := attrRepo.ListAttributes(ctx, core.AttributeTypeAgency)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, attr.Id, all[0].Id)

	experiences, err := expertRepo.GetExperiencesByExpert(ctx, expert.Id)
	require.NoError(t, err)
	require.Len(t, experiences, 1)
	assert.Equal(t, []core.ID{attr.Id}, experiences[0].AttributeIds)
}

func TestIngestExpert_Validation(t *testing.T) {
	attrRepo, expertRepo := newTestRepositories(t)
	p, err := NewPipeline(attrRepo, expertRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	t.Run("nil profile", func(t *testing.T) {
		_, err := p.IngestExpert(ctx, nil)
		assert.ErrorIs(t, err, core.ErrInvalidExpert)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := p.IngestExpert(ctx, &ExpertProfile{Name: "  "})
		assert.ErrorIs(t, err, core.ErrEmptyExpertName)
	})

	t.Run("inverted dates", func(t *testing.T) {
		_, err := p.IngestExpert(ctx, &ExpertProfile{
			Name: "Jane Doe",
			Experiences: []ExperienceProfile{{
				StartDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			}},
		})
		assert.ErrorIs(t, err, core.ErrDateOrder)
	})

	t.Run("unknown attribute type", func(t *testing.T) {
		_, err := p.IngestExpert(ctx, &ExpertProfile{
			Name: "Jane Doe",
			Experiences: []ExperienceProfile{{
				StartDate:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
				Attributes: []AttributeTerm{{Type: "flavor", Name: "spicy"}},
			}},
		})
		assert.ErrorIs(t, err, core.ErrUnknownAttributeType)
	})
}

func TestIngestExpert(t *testing.T) {
	attrRepo, expertRepo := newTestRepositories(t)
	p, err := NewPipeline(attrRepo, expertRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	profile := &ExpertProfile{
		Name:     "Jane Doe",
		Summary:  "Data science leader",
		Active:   true,
		Metadata: map[string]string{"source": "test"},
		Experiences: []ExperienceProfile{
			{
				Employer:  "Acme Corp",
				Position:  "Data Scientist",
				StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
				Attributes: []AttributeTerm{
					{Type: core.AttributeTypeSkill, Name: "Machine Learning"},
					{Type: core.AttributeTypeRole, Name: "data scientist"},
				},
			},
			{
				Employer:  "Initech",
				StartDate: time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC),
				Attributes: []AttributeTerm{
					// Same normalized term as the first experience
					{Type: core.AttributeTypeSkill, Name: "machine learning"},
				},
			},
		},
	}

	expert, err := p.IngestExpert(ctx, profile)
	require.NoError(t, err)
	assert.NotZero(t, expert.Id)
	assert.Equal(t, "Jane Doe", expert.Name)

	experiences, err := expertRepo.GetExperiencesByExpert(ctx, expert.Id)
	require.NoError(t, err)
	require.Len(t, experiences, 2)

	// Ongoing role materialized to a real end date
	for _, exp := range experiences {
		assert.False(t, exp.EndDate.IsZero())
	}

	// Terms were normalized and deduplicated across experiences
	ml, err := attrRepo.FindAttributeByTypeAndName(ctx, core.AttributeTypeSkill, "machine learning")
	require.NoError(t, err)
	assert.NotEmpty(t, ml.Embedding)

	all, err := attrRepo.ListAttributes(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	for _, exp := range experiences {
		assert.Contains(t, exp.AttributeIds, ml.Id)
	}
}

func TestIngestExpert_ReusesExistingAttributes(t *testing.T) {
	attrRepo, expertRepo := newTestRepositories(t)
	ctx := context.Background()

	// Existing taxonomy entry the profile term should snap to
	existing, err := attrRepo.AddAttributes(ctx, &core.Attribute{
		Name:      "kubernetes",
		Type:      core.AttributeTypeSkill,
		Embedding: []float32{1, 0, 0},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			// Very close to the stored embedding
			vectors[i] = []float32{0.99, 0.141, 0}
		}
		return vectors, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockTermExtractor())

	p, err := NewPipeline(attrRepo, expertRepo, provider, WithResolveThreshold(0.9))
	require.NoError(t, err)
	defer p.Release()

	expert, err := p.IngestExpert(ctx, &ExpertProfile{
		Name: "Sam Field",
		Experiences: []ExperienceProfile{{
			StartDate:  time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Attributes: []AttributeTerm{{Type: core.AttributeTypeSkill, Name: "k8s administration"}},
		}},
	})
	require.NoError(t, err)

	// No new attribute created: the term resolved to the existing entry
	all, err := attrRepo.ListAttributes(ctx, core.AttributeTypeSkill)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	experiences, err := expertRepo.GetExperiencesByExpert(ctx, expert.Id)
	require.NoError(t, err)
	require.Len(t, experiences, 1)
	assert.Equal(t, []core.ID{existing[0].Id}, experiences[0].AttributeIds)
}

func TestBackfill(t *testing.T) {
	attrRepo, expertRepo := newTestRepositories(t)
	ctx := context.Background()

	// Seed attributes without embeddings, straight through the repository
	attrs := make([]*core.Attribute, 50)
	for i := range attrs {
		attrs[i] = &core.Attribute{
			Name: fmt.Sprintf("skill-%02d", i),
			Type: core.AttributeTypeSkill,
		}
	}
	_, err := attrRepo.AddAttributes(ctx, attrs...)
	require.NoError(t, err)

	p, err := NewPipeline(attrRepo, expertRepo, mock.NewMockProvider(), WithPoolSize(4))
	require.NoError(t, err)
	defer p.Release()

	processed, err := p.Backfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, processed)

	remaining, err := attrRepo.FindAttributesWithoutEmbedding(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	t.Run("nothing left to backfill", func(t *testing.T) {
		processed, err := p.Backfill(ctx)
		require.NoError(t, err)
		assert.Zero(t, processed)
	})
}
