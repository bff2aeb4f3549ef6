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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/expertmatch/ai"
	"github.com/poiesic/expertmatch/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// TermExtractor implements ai.TermExtractor using OpenAI-compatible chat APIs.
type TermExtractor struct {
	client          llms.Model
	maxTermsPerType int
	logger          *slog.Logger
}

// newTermExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTermExtractor(config *ai.Config) (*TermExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/extraction
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &TermExtractor{
		client:          client,
		maxTermsPerType: config.MaxTermsPerType,
		logger:          slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewTermExtractor creates a new term extractor using the provided configuration.
//
// Returns ai.TermExtractor interface to enforce abstraction.
func NewTermExtractor(config *ai.Config) (ai.TermExtractor, error) {
	return newTermExtractor(config)
}

// ExtractTerms extracts attribute terms from text using an LLM.
// The response keys follow the "<type>_terms" convention, one array per
// requested type.
func (e *TermExtractor) ExtractTerms(ctx context.Context, text string, types []core.AttributeType) (map[core.AttributeType][]string, error) {
	text = scrubQuery(text)
	if text == "" {
		return map[core.AttributeType][]string{}, nil
	}
	if len(types) == 0 {
		types = core.SearchableTypes()
	}

	systemPrompt := buildExtractionPrompt(types, e.maxTermsPerType)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var raw map[string][]string
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return map[core.AttributeType][]string{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		raw = nil
		if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Keep only the requested types, cap term counts, drop blanks
	extracted := make(map[core.AttributeType][]string, len(types))
	for _, typ := range types {
		terms := raw[termsKey(typ)]
		cleaned := make([]string, 0, len(terms))
		for _, term := range terms {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			cleaned = append(cleaned, strings.ToLower(term))
			if len(cleaned) >= e.maxTermsPerType {
				break
			}
		}
		if len(cleaned) > 0 {
			extracted[typ] = cleaned
		}
	}

	e.logger.Debug("extracted terms",
		"types_requested", len(types),
		"types_found", len(extracted))

	return extracted, nil
}
