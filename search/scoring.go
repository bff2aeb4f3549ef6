package search

import (
	"math"
	"slices"
	"time"

	"github.com/poiesic/expertmatch/core"
)

const daysPerYear = 365.0

// ScoredExpert is the scoring engine's output for one expert: the ranked
// total plus enough per-experience and per-type detail for assembly.
type ScoredExpert struct {
	ExpertId         core.ID
	TotalScore       float64
	ExperienceScores map[core.ID]float64
	TypeTotals       map[core.AttributeType]*TypeContribution
}

// TypeContribution accumulates an attribute type's share of an expert's score.
type TypeContribution struct {
	Total      float64
	MatchCount int
	Weight     float64
	Terms      []*MatchedTerm
}

// MatchedTerm records which extracted term produced a contribution.
type MatchedTerm struct {
	Term       string
	Name       string
	Similarity float32
}

// durationYears converts an experience's span into fractional years.
func durationYears(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / daysPerYear
}

// recencyMultiplier discounts experience by how long ago it ended.
// Monotonically non-increasing with age and floored at 0.1, so very old
// experience never contributes exactly zero from recency alone.
func recencyMultiplier(end, now time.Time, decayFactor float64) float64 {
	yearsAgo := now.Sub(end).Hours() / 24 / daysPerYear
	if yearsAgo < 0 {
		yearsAgo = 0
	}
	m := 1 - decayFactor*yearsAgo
	if m < 0.1 {
		return 0.1
	}
	return m
}

// contribution computes one (experience, matched attribute) pair's score
// using geometric weighting: weight 0 zeroes the term, weight 2 reduces
// exactly to the unweighted base. A non-positive base yields 0 to keep
// fractional powers real.
func contribution(exp *core.Experience, match *ResolvedMatch, cfg *Config, now time.Time) float64 {
	weight := cfg.Weight(match.Type)
	if weight == 0 {
		return 0
	}

	duration := durationYears(exp.StartDate, exp.EndDate)
	recency := recencyMultiplier(exp.EndDate, now, cfg.RecencyDecayFactor)
	similarity := float64(match.Similarity) * cfg.SimilarityWeight

	base := duration * recency * similarity
	if base <= 0 {
		return 0
	}
	return math.Pow(base, weight/2)
}

// scoreExperiences aggregates contributions over the experiences that carry
// matched attributes and returns experts ranked by total score descending,
// ties broken by expert id ascending.
func scoreExperiences(experiences []*core.Experience, matches map[core.AttributeType][]*ResolvedMatch, cfg *Config, now time.Time) []*ScoredExpert {
	matchByAttr := make(map[core.ID]*ResolvedMatch)
	for _, typed := range matches {
		for _, m := range typed {
			matchByAttr[m.AttributeId] = m
		}
	}

	byExpert := make(map[core.ID]*ScoredExpert)
	for _, exp := range experiences {
		for _, attrID := range exp.AttributeIds {
			match, ok := matchByAttr[attrID]
			if !ok {
				continue
			}

			score := contribution(exp, match, cfg, now)

			scored := byExpert[exp.ExpertId]
			if scored == nil {
				scored = &ScoredExpert{
					ExpertId:         exp.ExpertId,
					ExperienceScores: make(map[core.ID]float64),
					TypeTotals:       make(map[core.AttributeType]*TypeContribution),
				}
				byExpert[exp.ExpertId] = scored
			}

			scored.TotalScore += score
			scored.ExperienceScores[exp.Id] += score

			tc := scored.TypeTotals[match.Type]
			if tc == nil {
				tc = &TypeContribution{Weight: cfg.Weight(match.Type)}
				scored.TypeTotals[match.Type] = tc
			}
			tc.Total += score
			tc.MatchCount++
			tc.Terms = append(tc.Terms, &MatchedTerm{
				Term:       match.Term,
				Name:       match.Name,
				Similarity: match.Similarity,
			})
		}
	}

	ranked := make([]*ScoredExpert, 0, len(byExpert))
	for _, scored := range byExpert {
		ranked = append(ranked, scored)
	}
	slices.SortFunc(ranked, func(a, b *ScoredExpert) int {
		if a.TotalScore > b.TotalScore {
			return -1
		}
		if a.TotalScore < b.TotalScore {
			return 1
		}
		if a.ExpertId < b.ExpertId {
			return -1
		}
		if a.ExpertId > b.ExpertId {
			return 1
		}
		return 0
	})

	return ranked
}
