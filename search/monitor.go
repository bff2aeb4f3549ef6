package search

import (
	"github.com/poiesic/expertmatch/core"
)

// SearchMonitor provides hooks to observe the search pipeline.
// Implement this interface to track intermediate results at each stage.
type SearchMonitor interface {
	Start(query string)
	AfterTermExtraction(terms map[core.AttributeType][]string)
	AfterAttributeResolution(matches map[core.AttributeType][]*ResolvedMatch)
	AfterExperienceRetrieval(experiences []*core.Experience)
	AfterScoring(ranked []*ScoredExpert)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                                   {}
func (n *noopMonitor) AfterTermExtraction(_ map[core.AttributeType][]string)            {}
func (n *noopMonitor) AfterAttributeResolution(_ map[core.AttributeType][]*ResolvedMatch) {}
func (n *noopMonitor) AfterExperienceRetrieval(_ []*core.Experience)                    {}
func (n *noopMonitor) AfterScoring(_ []*ScoredExpert)                                   {}
func (n *noopMonitor) Finish(_ *Result)                                                 {}
