package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/expertmatch/core"
)

const extractionPromptTemplate = `Extract professional attribute terms from the given search query and return them as JSON.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting, or acknowledgment.
Start your response directly with the opening brace { and end with the closing brace }.
The JSON object has exactly one key per attribute type, named "<type>_terms", each holding an
array of strings. The attribute types are: %s.

%s

Rules:
- Terms must be lowercase, 1-4 words each.
- Return at most %d terms per type, most relevant first.
- Include only terms that are explicitly mentioned or clearly implied by the query. Do not hallucinate.
- If no terms can be identified for a type, return an empty array for that type.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "senior data scientist with NASA experience in machine learning"
Output:
{
  "agency_terms": ["nasa"],
  "role_terms": ["data scientist"],
  "seniority_terms": ["senior"],
  "skill_terms": ["machine learning"],
  "program_terms": []
}

Example (terse query):
Input: "kubernetes"
Output:
{
  "agency_terms": [],
  "role_terms": [],
  "seniority_terms": [],
  "skill_terms": ["kubernetes"],
  "program_terms": []
}`

var typeGuidance = map[core.AttributeType]string{
	core.AttributeTypeAgency:    "agency: employers, government agencies, companies, or organizations (e.g. nasa, epa, google)",
	core.AttributeTypeRole:      "role: job functions or titles stripped of seniority (e.g. data scientist, project manager)",
	core.AttributeTypeSeniority: "seniority: experience-level qualifiers (e.g. senior, junior, lead, principal)",
	core.AttributeTypeSkill:     "skill: technical or domain skills, tools, and methods (e.g. python, machine learning)",
	core.AttributeTypeProgram:   "program: named programs, projects, or initiatives (e.g. artemis, medicaid modernization)",
}

// buildExtractionPrompt creates the system prompt with the requested attribute
// types and per-type term cap embedded.
func buildExtractionPrompt(types []core.AttributeType, maxTerms int) string {
	names := make([]string, 0, len(types))
	guidance := make([]string, 0, len(types))
	for _, typ := range types {
		names = append(names, string(typ))
		if g, ok := typeGuidance[typ]; ok {
			guidance = append(guidance, "- "+g)
		}
	}
	return fmt.Sprintf(extractionPromptTemplate,
		strings.Join(names, ", "),
		"Type definitions:\n"+strings.Join(guidance, "\n"),
		maxTerms)
}

// termsKey returns the JSON key the extractor uses for a given type.
func termsKey(typ core.AttributeType) string {
	return string(typ) + "_terms"
}
