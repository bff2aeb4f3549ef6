package mock

import (
	"context"
	"strings"

	"github.com/poiesic/expertmatch/core"
)

// MockTermExtractor is a test double for ai.TermExtractor.
// It allows custom behavior injection via function fields.
type MockTermExtractor struct {
	// ExtractTermsFunc is called by ExtractTerms if set.
	// If nil, uses default keyword matching.
	ExtractTermsFunc func(ctx context.Context, text string, types []core.AttributeType) (map[core.AttributeType][]string, error)

	callCount int
}

// NewMockTermExtractor creates a mock term extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockTermExtractor() *MockTermExtractor {
	return &MockTermExtractor{}
}

// seniorityMarkers are words the default extractor treats as seniority terms.
var seniorityMarkers = map[string]bool{
	"junior":    true,
	"mid":       true,
	"senior":    true,
	"lead":      true,
	"principal": true,
	"staff":     true,
	"chief":     true,
}

// ExtractTerms extracts simple mock terms from text.
// Default behavior: seniority marker words become seniority terms, every
// other word becomes a skill term. Other types return no terms.
func (m *MockTermExtractor) ExtractTerms(ctx context.Context, text string, types []core.AttributeType) (map[core.AttributeType][]string, error) {
	m.callCount++

	if m.ExtractTermsFunc != nil {
		return m.ExtractTermsFunc(ctx, text, types)
	}

	wantType := make(map[core.AttributeType]bool, len(types))
	for _, typ := range types {
		wantType[typ] = true
	}

	result := make(map[core.AttributeType][]string)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" {
			continue
		}

		typ := core.AttributeTypeSkill
		if seniorityMarkers[word] {
			typ = core.AttributeTypeSeniority
		}
		if wantType[typ] {
			result[typ] = append(result[typ], word)
		}
	}

	return result, nil
}

// CallCount returns the number of times ExtractTerms was called.
func (m *MockTermExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTermExtractor) Reset() {
	m.callCount = 0
	m.ExtractTermsFunc = nil
}
