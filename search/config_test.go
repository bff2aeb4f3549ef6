package search

import (
	"testing"

	"github.com/poiesic/expertmatch/core"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.4, cfg.SimilarityThreshold)
	assert.Equal(t, 20, cfg.MaxSimilarAttributes)
	assert.Equal(t, 3, cfg.MaxAttributesPerType)
	assert.Equal(t, 1.1, cfg.ScoringBase)
	assert.Equal(t, 0.1, cfg.RecencyDecayFactor)
	assert.Equal(t, 1.0, cfg.SimilarityWeight)
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)

	// Every searchable type carries an explicit weight
	for _, typ := range core.SearchableTypes() {
		_, ok := cfg.AttributeWeights[typ]
		assert.True(t, ok, "missing weight for %s", typ)
	}
	assert.Equal(t, 2.0, cfg.AttributeWeights[core.AttributeTypeRole])
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.SimilarityThreshold = 0.9
	clone.AttributeWeights[core.AttributeTypeSkill] = 9

	assert.Equal(t, 0.4, cfg.SimilarityThreshold)
	assert.Equal(t, 1.8, cfg.AttributeWeights[core.AttributeTypeSkill])
}

func TestConfigWeight(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2.0, cfg.Weight(core.AttributeTypeRole))

	delete(cfg.AttributeWeights, core.AttributeTypeProgram)
	assert.Equal(t, 1.0, cfg.Weight(core.AttributeTypeProgram))
}

func TestMergeConfig(t *testing.T) {
	defaults := DefaultConfig()

	t.Run("nil overrides returns defaults", func(t *testing.T) {
		cfg := MergeConfig(defaults, nil)
		assert.Equal(t, defaults, cfg)
	})

	t.Run("scalar overrides applied", func(t *testing.T) {
		cfg := MergeConfig(defaults, map[string]any{
			"similarity_threshold":    0.7,
			"max_similar_attributes":  5,
			"max_attributes_per_type": 1,
			"recency_decay_factor":    0.0,
			"similarity_weight":       1.5,
		})
		assert.Equal(t, 0.7, cfg.SimilarityThreshold)
		assert.Equal(t, 5, cfg.MaxSimilarAttributes)
		assert.Equal(t, 1, cfg.MaxAttributesPerType)
		assert.Equal(t, 0.0, cfg.RecencyDecayFactor)
		assert.Equal(t, 1.5, cfg.SimilarityWeight)
	})

	t.Run("out of range values clamped", func(t *testing.T) {
		cfg := MergeConfig(defaults, map[string]any{
			"similarity_threshold":    5.0,
			"max_similar_attributes":  1000,
			"max_attributes_per_type": 0,
			"scoring_base":            0.5,
			"recency_decay_factor":    -1.0,
			"similarity_weight":       10.0,
		})
		assert.Equal(t, 1.0, cfg.SimilarityThreshold)
		assert.Equal(t, 100, cfg.MaxSimilarAttributes)
		assert.Equal(t, 1, cfg.MaxAttributesPerType)
		assert.Equal(t, 1.0, cfg.ScoringBase)
		assert.Equal(t, 0.0, cfg.RecencyDecayFactor)
		assert.Equal(t, 2.0, cfg.SimilarityWeight)
	})

	t.Run("wrong types silently dropped", func(t *testing.T) {
		cfg := MergeConfig(defaults, map[string]any{
			"similarity_threshold":   "high",
			"max_similar_attributes": 2.5, // not a whole number
		})
		assert.Equal(t, defaults.SimilarityThreshold, cfg.SimilarityThreshold)
		assert.Equal(t, defaults.MaxSimilarAttributes, cfg.MaxSimilarAttributes)
	})

	t.Run("json decoded numbers accepted", func(t *testing.T) {
		// JSON decodes every number as float64
		cfg := MergeConfig(defaults, map[string]any{
			"max_similar_attributes": float64(10),
		})
		assert.Equal(t, 10, cfg.MaxSimilarAttributes)
	})

	t.Run("attribute weights", func(t *testing.T) {
		cfg := MergeConfig(defaults, map[string]any{
			"attribute_weights": []any{
				map[string]any{"name": "role", "weight": 3.0},
				map[string]any{"name": "skill", "weight": 50.0}, // clamped to 10
				map[string]any{"name": "flavor", "weight": 1.0}, // unknown type
				map[string]any{"weight": 1.0},                   // missing name
				"garbage",
			},
		})
		assert.Equal(t, 3.0, cfg.AttributeWeights[core.AttributeTypeRole])
		assert.Equal(t, 10.0, cfg.AttributeWeights[core.AttributeTypeSkill])
		assert.Len(t, cfg.AttributeWeights, len(defaults.AttributeWeights))
	})

	t.Run("defaults untouched by merge", func(t *testing.T) {
		MergeConfig(defaults, map[string]any{
			"similarity_threshold": 0.99,
			"attribute_weights": []any{
				map[string]any{"name": "role", "weight": 0.0},
			},
		})
		assert.Equal(t, 0.4, defaults.SimilarityThreshold)
		assert.Equal(t, 2.0, defaults.AttributeWeights[core.AttributeTypeRole])
	})
}
