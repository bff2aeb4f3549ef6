// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/expertmatch/ai"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/storage"
)

// Searcher runs the expert search pipeline: term extraction, attribute
// resolution, experience scoring and result assembly.
type Searcher struct {
	attributeRepository storage.AttributeRepository
	expertRepository    storage.ExpertRepository
	embedder            ai.Embedder
	extractor           ai.TermExtractor
	defaults            *Config
	logger              *slog.Logger
	now                 func() time.Time
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithDefaults replaces the baseline configuration that request settings
// are merged onto.
func WithDefaults(cfg *Config) Option {
	return func(s *Searcher) error {
		if cfg != nil {
			s.defaults = cfg.Clone()
		}
		return nil
	}
}

// withClock overrides the scoring clock in tests.
func withClock(now func() time.Time) Option {
	return func(s *Searcher) error {
		s.now = now
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	attributeRepository storage.AttributeRepository,
	expertRepository storage.ExpertRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if attributeRepository == nil {
		return nil, ErrAttributeRepositoryRequired
	}
	if expertRepository == nil {
		return nil, ErrExpertRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		attributeRepository: attributeRepository,
		expertRepository:    expertRepository,
		embedder:            provider.Embedder(),
		extractor:           provider.TermExtractor(),
		defaults:            DefaultConfig(),
		logger:              slog.Default(),
		now:                 time.Now,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a query through the full pipeline and returns a ranked,
// paginated result.
func (s *Searcher) Search(ctx context.Context, req *Request) (*Result, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor runs a query with monitoring. The monitor receives
// callbacks at each pipeline stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req *Request, monitor SearchMonitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	started := s.now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	cfg := MergeConfig(s.defaults, req.Settings)

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = cfg.DefaultPageSize
	}
	if pageSize > cfg.MaxPageSize {
		pageSize = cfg.MaxPageSize
	}

	monitor.Start(query)

	// 1. Extract attribute terms from the query
	extracted, err := s.extractor.ExtractTerms(ctx, query, core.SearchableTypes())
	if err != nil {
		s.logger.Error("failed to extract terms from query", "err", err)
		return nil, &ExtractionError{Err: err}
	}
	monitor.AfterTermExtraction(extracted)

	// 2. Resolve terms to canonical attributes
	res := &resolver{
		attributes: s.attributeRepository,
		embedder:   s.embedder,
		logger:     s.logger,
	}
	matches, trace, err := res.Resolve(ctx, extracted, cfg)
	if err != nil {
		return nil, err
	}
	monitor.AfterAttributeResolution(matches)

	if len(matches) == 0 {
		s.logger.Info("no attributes matched query", "query", query)
		result := &Result{
			Experts:  []*ExpertResult{},
			Page:     page,
			PageSize: pageSize,
			Elapsed:  s.now().Sub(started),
			Trace:    trace,
			Settings: cfg,
		}
		monitor.Finish(result)
		return result, nil
	}

	// 3. Retrieve the experiences that carry any matched attribute
	var attributeIDs []core.ID
	for _, typed := range matches {
		for _, m := range typed {
			attributeIDs = append(attributeIDs, m.AttributeId)
		}
	}
	experiences, err := s.expertRepository.GetExperiencesByAttributes(ctx, attributeIDs...)
	if err != nil {
		s.logger.Error("failed to retrieve experiences", "attributeCount", len(attributeIDs), "err", err)
		return nil, err
	}
	monitor.AfterExperienceRetrieval(experiences)

	// 4. Score and rank
	ranked := scoreExperiences(experiences, matches, cfg, s.now())
	monitor.AfterScoring(ranked)

	lo, hi, totalPages := paginate(len(ranked), page, pageSize)
	pageScored := ranked[lo:hi]

	// 5. Assemble the page's experts with full detail
	expertIDs := make([]core.ID, 0, len(pageScored))
	for _, scored := range pageScored {
		expertIDs = append(expertIDs, scored.ExpertId)
	}
	graphs, err := s.expertRepository.GetExpertGraphs(ctx, expertIDs...)
	if err != nil {
		s.logger.Error("failed to load expert graphs", "expertCount", len(expertIDs), "err", err)
		return nil, err
	}
	graphByExpert := make(map[core.ID]*core.ExpertGraph, len(graphs))
	for _, g := range graphs {
		graphByExpert[g.Expert.Id] = g
	}

	experts := make([]*ExpertResult, 0, len(pageScored))
	for _, scored := range pageScored {
		graph, ok := graphByExpert[scored.ExpertId]
		if !ok {
			s.logger.Warn("scored expert missing from storage", "expert", scored.ExpertId)
			continue
		}
		experts = append(experts, assembleExpert(scored, graph, s.logger))
	}

	result := &Result{
		Experts:      experts,
		TotalExperts: len(ranked),
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages,
		Elapsed:      s.now().Sub(started),
		Trace:        trace,
		Settings:     cfg,
	}
	monitor.Finish(result)

	return result, nil
}
