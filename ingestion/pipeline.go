package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/expertmatch/ai"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

// defaultResolveThreshold is the minimum cosine similarity for an incoming
// profile term to reuse an existing taxonomy attribute instead of creating
// a new one.
const defaultResolveThreshold = 0.85

// defaultBackfillBatch bounds how many attributes one backfill job embeds.
const defaultBackfillBatch = 32

// Pipeline registers experts and taxonomy attributes and backfills missing
// attribute embeddings.
type Pipeline struct {
	attributeRepository storage.AttributeRepository
	expertRepository    storage.ExpertRepository
	ensurer             *embeddingEnsurer
	embedder            ai.Embedder
	pool                *ants.Pool
	resolveThreshold    float32
	logger              *slog.Logger
	now                 func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for backfill processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithResolveThreshold sets the similarity above which a profile term reuses
// an existing taxonomy attribute.
func WithResolveThreshold(threshold float32) Option {
	return func(p *Pipeline) error {
		if threshold < 0 {
			threshold = 0
		}
		if threshold > 1 {
			threshold = 1
		}
		p.resolveThreshold = threshold
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	attributeRepository storage.AttributeRepository,
	expertRepository storage.ExpertRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if attributeRepository == nil {
		return nil, ErrAttributeRepositoryRequired
	}
	if expertRepository == nil {
		return nil, ErrExpertRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		attributeRepository: attributeRepository,
		expertRepository:    expertRepository,
		embedder:            provider.Embedder(),
		pool:                pool,
		resolveThreshold:    defaultResolveThreshold,
		logger:              slog.Default(),
		now:                 time.Now,
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	ensurer, err := newEmbeddingEnsurer(attributeRepository, p.embedder, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.ensurer = ensurer

	return p, nil
}

// RegisterAttribute finds or creates a taxonomy attribute and ensures its
// embedding is present. The embedding is computed synchronously so the
// attribute is immediately searchable.
func (p *Pipeline) RegisterAttribute(ctx context.Context, typ core.AttributeType, name, summary string) (*core.Attribute, error) {
	term := AttributeTerm{Type: typ, Name: name, Summary: summary}.normalize()

	candidate := &core.Attribute{Name: term.Name, Type: term.Type, Summary: term.Summary}
	if err := core.ValidateAttribute(candidate); err != nil {
		return nil, err
	}

	attr, err := p.attributeRepository.GetOrCreateAttribute(ctx, term.Type, term.Name, term.Summary, nil)
	if err != nil {
		return nil, err
	}
	if err := p.ensurer.ensure(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

// IngestExpert registers an expert with work history. Each experience's
// attribute terms are resolved against the existing taxonomy; terms without
// a close enough match become new attributes with embeddings ensured.
func (p *Pipeline) IngestExpert(ctx context.Context, profile *ExpertProfile) (*core.Expert, error) {
	if profile == nil {
		return nil, core.ErrInvalidExpert
	}
	if err := profile.validate(p.now().UTC()); err != nil {
		return nil, err
	}

	resolved, err := p.resolveTerms(ctx, profile)
	if err != nil {
		return nil, err
	}

	experts, err := p.expertRepository.AddExperts(ctx, &core.Expert{
		Name:     profile.Name,
		Summary:  profile.Summary,
		Active:   profile.Active,
		Metadata: profile.Metadata,
	})
	if err != nil {
		return nil, err
	}
	expert := experts[0]

	experiences := make([]*core.Experience, 0, len(profile.Experiences))
	for _, ep := range profile.Experiences {
		exp := &core.Experience{
			ExpertId:  expert.Id,
			Employer:  ep.Employer,
			Position:  ep.Position,
			StartDate: ep.StartDate,
			EndDate:   ep.EndDate,
			Summary:   ep.Summary,
		}
		for _, term := range ep.Attributes {
			if attr, ok := resolved[term.normalize().tuple()]; ok {
				exp.AttributeIds = append(exp.AttributeIds, attr.Id)
			}
		}
		experiences = append(experiences, exp)
	}

	if len(experiences) > 0 {
		if _, err := p.expertRepository.AddExperiences(ctx, experiences...); err != nil {
			return nil, err
		}
	}

	p.logger.Info("ingested expert", "expert", expert.Id,
		"experiences", len(experiences), "attributes", len(resolved))
	return expert, nil
}

// resolveTerms maps every distinct term in the profile to a taxonomy
// attribute: an exact (type,name) hit wins, then the closest embedding match
// above the resolve threshold, then a freshly created attribute.
func (p *Pipeline) resolveTerms(ctx context.Context, profile *ExpertProfile) (map[string]*core.Attribute, error) {
	var terms []AttributeTerm
	seen := make(map[string]bool)
	for _, exp := range profile.Experiences {
		for _, term := range exp.Attributes {
			t := term.normalize()
			if t.Name == "" || seen[t.tuple()] {
				continue
			}
			seen[t.tuple()] = true
			terms = append(terms, t)
		}
	}

	resolved := make(map[string]*core.Attribute, len(terms))
	if len(terms) == 0 {
		return resolved, nil
	}

	// Exact tuple matches need no embedding call.
	var unresolved []AttributeTerm
	for _, term := range terms {
		attr, err := p.attributeRepository.FindAttributeByTypeAndName(ctx, term.Type, term.Name)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				unresolved = append(unresolved, term)
				continue
			}
			return nil, err
		}
		resolved[term.tuple()] = attr
	}
	if len(unresolved) == 0 {
		return resolved, nil
	}

	// One batch embedding call covers the remaining terms. The vector doubles
	// as the stored embedding when the term becomes a new attribute.
	texts := make([]string, len(unresolved))
	for i, term := range unresolved {
		prospective := &core.Attribute{Name: term.Name, Type: term.Type, Summary: term.Summary}
		texts[i] = prospective.EmbeddingText()
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	for i, term := range unresolved {
		matches, err := p.attributeRepository.FindSimilarAttributes(ctx, vectors[i],
			term.Type, p.resolveThreshold, 1)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			p.logger.Debug("profile term resolved to existing attribute",
				"term", term.Name, "attribute", matches[0].Attribute.Name,
				"similarity", matches[0].Similarity)
			resolved[term.tuple()] = matches[0].Attribute
			continue
		}

		attr, err := p.attributeRepository.GetOrCreateAttribute(ctx,
			term.Type, term.Name, term.Summary, vectors[i])
		if err != nil {
			return nil, err
		}
		resolved[term.tuple()] = attr
	}

	return resolved, nil
}

// Backfill embeds every attribute that has no embedding yet, in batches on
// the worker pool. It blocks until all batches complete and returns the
// number of attributes processed.
func (p *Pipeline) Backfill(ctx context.Context) (int, error) {
	attrs, err := p.attributeRepository.FindAttributesWithoutEmbedding(ctx, 0)
	if err != nil {
		return 0, err
	}
	if len(attrs) == 0 {
		return 0, nil
	}

	p.logger.Info("backfilling attribute embeddings", "attributes", len(attrs))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		jobErrs []error
		ensured int
	)
	for start := 0; start < len(attrs); start += defaultBackfillBatch {
		end := start + defaultBackfillBatch
		if end > len(attrs) {
			end = len(attrs)
		}
		batch := attrs[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.ensurer.ensure(ctx, batch...); err != nil {
				p.logger.Error("backfill batch failed", "attributes", len(batch), "err", err)
				mu.Lock()
				jobErrs = append(jobErrs, err)
				mu.Unlock()
				return
			}
			mu.Lock()
			ensured += len(batch)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			jobErrs = append(jobErrs, submitErr)
			mu.Unlock()
		}
	}
	wg.Wait()

	return ensured, errors.Join(jobErrs...)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
