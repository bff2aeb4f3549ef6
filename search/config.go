package search

import (
	"github.com/poiesic/expertmatch/core"
)

// Config holds the effective search-time settings. A Config is built fresh
// per request by merging caller overrides onto DefaultConfig; the search path
// never mutates a shared configuration.
type Config struct {
	// SimilarityThreshold is the minimum cosine similarity for a term to
	// match a canonical attribute. Range [0, 1].
	SimilarityThreshold float64

	// MaxSimilarAttributes caps the candidate set fetched from storage per
	// term. Range [1, 100].
	MaxSimilarAttributes int

	// MaxAttributesPerType caps how many matched attributes per type feed
	// the scoring engine. Range [1, 10].
	MaxAttributesPerType int

	// ScoringBase is reserved for alternative contribution curves.
	// Range [1, 2].
	ScoringBase float64

	// RecencyDecayFactor controls how quickly old experience loses value.
	// Range [0, 1].
	RecencyDecayFactor float64

	// SimilarityWeight scales the similarity factor in the base score.
	// Range [0, 2].
	SimilarityWeight float64

	// AttributeWeights holds the per-type weight exponent inputs.
	// Each weight is in [0, 10]; 0 neutralizes the type entirely.
	AttributeWeights map[core.AttributeType]float64

	// DefaultPageSize is used when a request does not specify a page size.
	DefaultPageSize int

	// MaxPageSize caps the requested page size.
	MaxPageSize int
}

// DefaultConfig returns the production default settings.
func DefaultConfig() *Config {
	return &Config{
		SimilarityThreshold:  0.4,
		MaxSimilarAttributes: 20,
		MaxAttributesPerType: 3,
		ScoringBase:          1.1,
		RecencyDecayFactor:   0.1,
		SimilarityWeight:     1.0,
		AttributeWeights: map[core.AttributeType]float64{
			core.AttributeTypeAgency:    1.5,
			core.AttributeTypeRole:      2.0,
			core.AttributeTypeSeniority: 1.0,
			core.AttributeTypeSkill:     1.8,
			core.AttributeTypeProgram:   1.2,
		},
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.AttributeWeights = make(map[core.AttributeType]float64, len(c.AttributeWeights))
	for typ, w := range c.AttributeWeights {
		clone.AttributeWeights[typ] = w
	}
	return &clone
}

// Weight returns the effective weight for an attribute type.
// Types absent from the weight map fall back to 1.0.
func (c *Config) Weight(typ core.AttributeType) float64 {
	if w, ok := c.AttributeWeights[typ]; ok {
		return w
	}
	return 1.0
}

// MergeConfig merges caller-supplied overrides onto the defaults and returns
// a complete configuration. Overrides that fail type coercion are silently
// dropped; values outside their legal range are clamped to the nearest bound,
// never rejected.
//
// Recognized scalar keys: similarity_threshold, max_similar_attributes,
// max_attributes_per_type, scoring_base, recency_decay_factor,
// similarity_weight. The attribute_weights key takes a list of {name, weight}
// entries; unknown type names and malformed entries are skipped individually.
func MergeConfig(defaults *Config, overrides map[string]any) *Config {
	cfg := defaults.Clone()
	if len(overrides) == 0 {
		return cfg
	}

	if v, ok := coerceFloat(overrides["similarity_threshold"]); ok {
		cfg.SimilarityThreshold = clampFloat(v, 0, 1)
	}
	if v, ok := coerceInt(overrides["max_similar_attributes"]); ok {
		cfg.MaxSimilarAttributes = clampInt(v, 1, 100)
	}
	if v, ok := coerceInt(overrides["max_attributes_per_type"]); ok {
		cfg.MaxAttributesPerType = clampInt(v, 1, 10)
	}
	if v, ok := coerceFloat(overrides["scoring_base"]); ok {
		cfg.ScoringBase = clampFloat(v, 1, 2)
	}
	if v, ok := coerceFloat(overrides["recency_decay_factor"]); ok {
		cfg.RecencyDecayFactor = clampFloat(v, 0, 1)
	}
	if v, ok := coerceFloat(overrides["similarity_weight"]); ok {
		cfg.SimilarityWeight = clampFloat(v, 0, 2)
	}

	mergeAttributeWeights(cfg, overrides["attribute_weights"])

	return cfg
}

// mergeAttributeWeights applies the attribute_weights override list.
// Each entry must be a map carrying a "name" matching a searchable type and a
// coercible "weight"; anything else is skipped.
func mergeAttributeWeights(cfg *Config, raw any) {
	entries, ok := raw.([]any)
	if !ok {
		return
	}
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, ok := m["name"].(string)
		if !ok {
			continue
		}
		typ, err := core.ParseAttributeType(name)
		if err != nil {
			continue
		}
		w, ok := coerceFloat(m["weight"])
		if !ok {
			continue
		}
		cfg.AttributeWeights[typ] = clampFloat(w, 0, 10)
	}
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func coerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		// Accept whole-number floats (JSON numbers decode as float64)
		if x == float64(int(x)) {
			return int(x), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
