package search

import (
	"testing"
	"time"

	"github.com/poiesic/expertmatch/core"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecencyMultiplier(t *testing.T) {
	now := date(2025, 6, 1)

	t.Run("current experience", func(t *testing.T) {
		assert.InDelta(t, 1.0, recencyMultiplier(now, now, 0.1), 1e-9)
	})

	t.Run("future end date treated as current", func(t *testing.T) {
		assert.InDelta(t, 1.0, recencyMultiplier(now.AddDate(1, 0, 0), now, 0.1), 1e-9)
	})

	t.Run("monotonically non-increasing with age", func(t *testing.T) {
		prev := recencyMultiplier(now, now, 0.1)
		for years := 1; years <= 20; years++ {
			m := recencyMultiplier(now.AddDate(-years, 0, 0), now, 0.1)
			assert.LessOrEqual(t, m, prev, "age %d years", years)
			prev = m
		}
	})

	t.Run("floored at 0.1", func(t *testing.T) {
		m := recencyMultiplier(now.AddDate(-50, 0, 0), now, 0.1)
		assert.InDelta(t, 0.1, m, 1e-9)
	})

	t.Run("zero decay ignores age", func(t *testing.T) {
		m := recencyMultiplier(now.AddDate(-30, 0, 0), now, 0)
		assert.InDelta(t, 1.0, m, 1e-9)
	})
}

func TestContribution(t *testing.T) {
	now := date(2022, 6, 1)

	// Two years ending today, no leap day in the span.
	exp := &core.Experience{
		Id:        1,
		ExpertId:  1,
		StartDate: date(2020, 6, 1),
		EndDate:   date(2022, 6, 1),
	}

	match := &ResolvedMatch{
		AttributeId: 42,
		Name:        "data scientist",
		Type:        core.AttributeTypeRole,
		Similarity:  0.9,
		Term:        "data scientist",
	}

	cfg := DefaultConfig()
	cfg.RecencyDecayFactor = 0

	t.Run("weight 2 reduces to base", func(t *testing.T) {
		// base = 2.0 years * 1.0 recency * 0.9 similarity = 1.8
		score := contribution(exp, match, cfg, now)
		assert.InDelta(t, 1.8, score, 1e-6)
	})

	t.Run("weight 0 zeroes the contribution", func(t *testing.T) {
		zeroed := cfg.Clone()
		zeroed.AttributeWeights[core.AttributeTypeRole] = 0
		assert.Zero(t, contribution(exp, match, zeroed, now))
	})

	t.Run("weight 1 takes square root of base", func(t *testing.T) {
		halved := cfg.Clone()
		halved.AttributeWeights[core.AttributeTypeRole] = 1
		score := contribution(exp, match, halved, now)
		assert.InDelta(t, 1.3416, score, 1e-3)
	})

	t.Run("higher weight amplifies above-one base", func(t *testing.T) {
		heavy := cfg.Clone()
		heavy.AttributeWeights[core.AttributeTypeRole] = 4
		score := contribution(exp, match, heavy, now)
		assert.InDelta(t, 1.8*1.8, score, 1e-6)
	})

	t.Run("similarity weight scales the base", func(t *testing.T) {
		scaled := cfg.Clone()
		scaled.SimilarityWeight = 2
		score := contribution(exp, match, scaled, now)
		assert.InDelta(t, 3.6, score, 1e-6)
	})

	t.Run("zero duration yields zero", func(t *testing.T) {
		instant := &core.Experience{
			Id:        2,
			ExpertId:  1,
			StartDate: date(2022, 6, 1),
			EndDate:   date(2022, 6, 1),
		}
		assert.Zero(t, contribution(instant, match, cfg, now))
	})

	t.Run("inverted dates yield zero", func(t *testing.T) {
		inverted := &core.Experience{
			Id:        3,
			ExpertId:  1,
			StartDate: date(2022, 6, 1),
			EndDate:   date(2020, 6, 1),
		}
		assert.Zero(t, contribution(inverted, match, cfg, now))
	})
}

func TestScoreExperiences(t *testing.T) {
	now := date(2024, 1, 1)
	cfg := DefaultConfig()
	cfg.RecencyDecayFactor = 0

	matches := map[core.AttributeType][]*ResolvedMatch{
		core.AttributeTypeSkill: {
			{AttributeId: 10, Name: "kubernetes", Type: core.AttributeTypeSkill, Similarity: 1.0, Term: "kubernetes"},
		},
		core.AttributeTypeRole: {
			{AttributeId: 20, Name: "platform engineer", Type: core.AttributeTypeRole, Similarity: 1.0, Term: "platform engineer"},
		},
	}

	experiences := []*core.Experience{
		{
			Id: 1, ExpertId: 100,
			StartDate:    date(2019, 1, 1),
			EndDate:      date(2024, 1, 1),
			AttributeIds: []core.ID{10, 20},
		},
		{
			Id: 2, ExpertId: 200,
			StartDate:    date(2022, 1, 1),
			EndDate:      date(2024, 1, 1),
			AttributeIds: []core.ID{10},
		},
		{
			Id: 3, ExpertId: 200,
			StartDate:    date(2020, 1, 1),
			EndDate:      date(2022, 1, 1),
			AttributeIds: []core.ID{99}, // unmatched attribute
		},
	}

	ranked := scoreExperiences(experiences, matches, cfg, now)

	assert.Len(t, ranked, 2)
	assert.Equal(t, core.ID(100), ranked[0].ExpertId)
	assert.Equal(t, core.ID(200), ranked[1].ExpertId)
	assert.Greater(t, ranked[0].TotalScore, ranked[1].TotalScore)

	first := ranked[0]
	assert.Len(t, first.ExperienceScores, 1)
	assert.InDelta(t, first.TotalScore, first.ExperienceScores[1], 1e-9)
	assert.Len(t, first.TypeTotals, 2)
	assert.Equal(t, 1, first.TypeTotals[core.AttributeTypeSkill].MatchCount)
	assert.Equal(t, cfg.Weight(core.AttributeTypeRole), first.TypeTotals[core.AttributeTypeRole].Weight)

	second := ranked[1]
	assert.NotContains(t, second.ExperienceScores, core.ID(3))
	assert.NotContains(t, second.TypeTotals, core.AttributeTypeRole)
}

func TestScoreExperiencesTieBreak(t *testing.T) {
	now := date(2024, 1, 1)
	cfg := DefaultConfig()
	cfg.RecencyDecayFactor = 0

	matches := map[core.AttributeType][]*ResolvedMatch{
		core.AttributeTypeSkill: {
			{AttributeId: 10, Name: "go", Type: core.AttributeTypeSkill, Similarity: 1.0, Term: "go"},
		},
	}

	// Identical experiences for two experts: equal scores, id breaks the tie.
	experiences := []*core.Experience{
		{Id: 1, ExpertId: 7, StartDate: date(2020, 6, 1), EndDate: date(2023, 6, 1), AttributeIds: []core.ID{10}},
		{Id: 2, ExpertId: 3, StartDate: date(2020, 6, 1), EndDate: date(2023, 6, 1), AttributeIds: []core.ID{10}},
	}

	ranked := scoreExperiences(experiences, matches, cfg, now)
	assert.Len(t, ranked, 2)
	assert.Equal(t, core.ID(3), ranked[0].ExpertId)
	assert.Equal(t, core.ID(7), ranked[1].ExpertId)
}

func TestPaginate(t *testing.T) {
	t.Run("first page", func(t *testing.T) {
		lo, hi, pages := paginate(25, 1, 10)
		assert.Equal(t, 0, lo)
		assert.Equal(t, 10, hi)
		assert.Equal(t, 3, pages)
	})

	t.Run("partial last page", func(t *testing.T) {
		lo, hi, pages := paginate(25, 3, 10)
		assert.Equal(t, 20, lo)
		assert.Equal(t, 25, hi)
		assert.Equal(t, 3, pages)
	})

	t.Run("page beyond the end is empty", func(t *testing.T) {
		lo, hi, pages := paginate(25, 9, 10)
		assert.Equal(t, lo, hi)
		assert.Equal(t, 3, pages)
	})

	t.Run("empty result set", func(t *testing.T) {
		lo, hi, pages := paginate(0, 1, 20)
		assert.Equal(t, 0, lo)
		assert.Equal(t, 0, hi)
		assert.Equal(t, 0, pages)
	})
}
