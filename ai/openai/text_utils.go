package openai

import "strings"

// scrubQuery normalizes a free-text query before sending it to the LLM.
// It collapses runs of whitespace and trims the result. Word-internal
// punctuation is kept so terms like "c++" or "back-end" survive.
func scrubQuery(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
