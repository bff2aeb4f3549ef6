package search

import (
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/expertmatch/core"
)

// Request is a search request. Page defaults to 1, PageSize to the
// configuration's DefaultPageSize. Settings holds partial config overrides
// merged onto the defaults (see MergeConfig).
type Request struct {
	Query    string
	Page     int
	PageSize int
	Settings map[string]any
}

// Result is a ranked, paginated search result.
type Result struct {
	Experts      []*ExpertResult
	TotalExperts int
	Page         int
	PageSize     int
	TotalPages   int
	Elapsed      time.Duration
	Trace        map[core.AttributeType][]*TraceEntry
	Settings     *Config
}

// ExpertResult is one ranked expert with full detail.
type ExpertResult struct {
	Id          core.ID
	Name        string
	Summary     string
	Active      bool
	Metadata    map[string]string
	TotalScore  float64
	Experiences []*ExperienceResult
	Breakdown   map[core.AttributeType]*TypeBreakdown
}

// ExperienceResult is one experience with its share of the expert's score.
// Experiences that earned no contribution carry a zero score.
type ExperienceResult struct {
	Id         core.ID
	Employer   string
	Position   string
	StartDate  time.Time
	EndDate    time.Time
	Summary    string
	Attributes []*AttributeRef
	Score      float64
}

// AttributeRef is a lightweight reference to a canonical attribute.
type AttributeRef struct {
	Id   core.ID
	Name string
	Type core.AttributeType
}

// TypeBreakdown explains one attribute type's share of an expert's score.
type TypeBreakdown struct {
	Total      float64
	MatchCount int
	Weight     float64
	Terms      []*MatchedTerm
}

// paginate computes the page slice bounds and total page count.
// The ranked list slice is [lo, hi).
func paginate(total, page, pageSize int) (lo, hi, totalPages int) {
	totalPages = (total + pageSize - 1) / pageSize

	lo = (page - 1) * pageSize
	if lo > total {
		lo = total
	}
	hi = lo + pageSize
	if hi > total {
		hi = total
	}
	return lo, hi, totalPages
}

// assembleExpert joins one scored expert back to its stored graph, grouping
// contributions by experience and sorting experiences by score descending.
// Attributes referenced by an experience but missing from the graph are
// logged as integrity warnings and skipped.
func assembleExpert(scored *ScoredExpert, graph *core.ExpertGraph, logger *slog.Logger) *ExpertResult {
	result := &ExpertResult{
		Id:         graph.Expert.Id,
		Name:       graph.Expert.Name,
		Summary:    graph.Expert.Summary,
		Active:     graph.Expert.Active,
		Metadata:   graph.Expert.Metadata,
		TotalScore: scored.TotalScore,
		Breakdown:  make(map[core.AttributeType]*TypeBreakdown, len(scored.TypeTotals)),
	}

	for typ, tc := range scored.TypeTotals {
		result.Breakdown[typ] = &TypeBreakdown{
			Total:      tc.Total,
			MatchCount: tc.MatchCount,
			Weight:     tc.Weight,
			Terms:      tc.Terms,
		}
	}

	for _, exp := range graph.Experiences {
		er := &ExperienceResult{
			Id:        exp.Id,
			Employer:  exp.Employer,
			Position:  exp.Position,
			StartDate: exp.StartDate,
			EndDate:   exp.EndDate,
			Summary:   exp.Summary,
			Score:     scored.ExperienceScores[exp.Id],
		}
		for _, attrID := range exp.AttributeIds {
			attr, ok := graph.Attributes[attrID]
			if !ok {
				logger.Warn("experience references missing attribute",
					"experience", exp.Id, "attribute", attrID)
				continue
			}
			er.Attributes = append(er.Attributes, &AttributeRef{
				Id:   attr.Id,
				Name: attr.Name,
				Type: attr.Type,
			})
		}
		result.Experiences = append(result.Experiences, er)
	}

	slices.SortFunc(result.Experiences, func(a, b *ExperienceResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})

	return result
}
