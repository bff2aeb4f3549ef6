package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid JSON untouched",
			input: `{"skill_terms": ["python"]}`,
			want:  `{"skill_terms": ["python"]}`,
		},
		{
			name:  "missing opening quote on key",
			input: `{skill_terms": ["python"], role_terms": []}`,
			want:  `{"skill_terms": ["python"], "role_terms": []}`,
		},
		{
			name:  "trailing comma in array",
			input: `{"skill_terms": ["python", "go",]}`,
			want:  `{"skill_terms": ["python", "go"]}`,
		},
		{
			name:  "trailing comma in object",
			input: `{"skill_terms": [],}`,
			want:  `{"skill_terms": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repairJSON(tt.input)
			assert.Equal(t, tt.want, got)

			var parsed map[string][]string
			assert.NoError(t, json.Unmarshal([]byte(got), &parsed))
		})
	}
}

func TestScrubQuery(t *testing.T) {
	assert.Equal(t, "senior c++ developer", scrubQuery("  senior   c++\n developer "))
	assert.Equal(t, "", scrubQuery("   \t\n"))
}
