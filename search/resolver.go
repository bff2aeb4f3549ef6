package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/expertmatch/ai"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

// Trace sources for extraction trace entries.
const (
	TraceSourceMatched = "matched"
	TraceSourceNoMatch = "no_match"
)

// ResolvedMatch is a canonical attribute matched to an extracted term.
type ResolvedMatch struct {
	AttributeId core.ID
	Name        string
	Type        core.AttributeType
	Similarity  float32
	Term        string
}

// TraceEntry records what was extracted for a type and whether it matched.
// MatchedName is empty when Source is no_match.
type TraceEntry struct {
	Term        string
	MatchedName string
	Similarity  float32
	Source      string
}

// resolver turns extracted terms into canonical attribute matches.
type resolver struct {
	attributes storage.AttributeRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// Resolve takes the first extracted term per type, embeds all selected terms
// in one batch call, and matches each embedding against the attributes of its
// type. It returns the matches that feed scoring together with an extraction
// trace for display.
//
// A batch embedding failure fails the whole resolution; there is no partial
// degradation.
func (r *resolver) Resolve(ctx context.Context, extracted map[core.AttributeType][]string, cfg *Config) (map[core.AttributeType][]*ResolvedMatch, map[core.AttributeType][]*TraceEntry, error) {
	matches := make(map[core.AttributeType][]*ResolvedMatch)
	trace := make(map[core.AttributeType][]*TraceEntry)

	// Only the first term per type is matched, bounding embedding cost to
	// one vector per type no matter how many terms the extractor returned.
	var types []core.AttributeType
	var terms []string
	for _, typ := range core.SearchableTypes() {
		if len(extracted[typ]) == 0 {
			continue
		}
		types = append(types, typ)
		terms = append(terms, extracted[typ][0])
	}

	if len(terms) == 0 {
		return matches, trace, nil
	}

	vectors, err := r.embedder.EmbedTexts(ctx, terms)
	if err != nil {
		r.logger.Error("failed to embed extracted terms", "count", len(terms), "err", err)
		return nil, nil, &EmbeddingError{Err: err}
	}
	if len(vectors) != len(terms) {
		r.logger.Error("embedder returned wrong batch size", "want", len(terms), "got", len(vectors))
		return nil, nil, &EmbeddingError{Err: ErrEmbeddingBatchMismatch}
	}

	for i, typ := range types {
		term := terms[i]

		candidates, err := r.attributes.FindSimilarAttributes(ctx, vectors[i],
			typ, float32(cfg.SimilarityThreshold), cfg.MaxSimilarAttributes)
		if err != nil {
			r.logger.Error("similarity search failed", "type", typ, "term", term, "err", err)
			return nil, nil, err
		}

		if len(candidates) == 0 {
			trace[typ] = append(trace[typ], &TraceEntry{
				Term:   term,
				Source: TraceSourceNoMatch,
			})
			continue
		}

		kept := candidates
		if len(kept) > cfg.MaxAttributesPerType {
			kept = kept[:cfg.MaxAttributesPerType]
		}
		for _, c := range kept {
			matches[typ] = append(matches[typ], &ResolvedMatch{
				AttributeId: c.Attribute.Id,
				Name:        c.Attribute.Name,
				Type:        typ,
				Similarity:  c.Similarity,
				Term:        term,
			})
		}

		best := candidates[0]
		trace[typ] = append(trace[typ], &TraceEntry{
			Term:        term,
			MatchedName: best.Attribute.Name,
			Similarity:  best.Similarity,
			Source:      TraceSourceMatched,
		})
	}

	return matches, trace, nil
}
