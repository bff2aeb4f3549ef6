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

import "strings"

// repairJSON attempts to fix common JSON formatting issues in LLM responses:
// missing opening quotes before object keys and trailing commas before a
// closing bracket or brace.
func repairJSON(s string) string {
	runes := []rune(s)
	var out strings.Builder
	out.Grow(len(runes) + 16)

	i := 0
	for i < len(runes) {
		ch := runes[i]

		// Trailing comma: drop a comma whose next non-space rune closes
		// the current object or array.
		if ch == ',' {
			j := i + 1
			for j < len(runes) && isSpace(runes[j]) {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				i++
				continue
			}
		}

		if ch != '{' && ch != ',' {
			out.WriteRune(ch)
			i++
			continue
		}

		// After { or , an object key may be missing its opening quote,
		// e.g. `, skill_terms":` instead of `, "skill_terms":`.
		out.WriteRune(ch)
		i++
		for i < len(runes) && isSpace(runes[i]) {
			out.WriteRune(runes[i])
			i++
		}
		if i >= len(runes) || runes[i] == '"' || !isLetter(runes[i]) {
			continue
		}

		keyStart := i
		for i < len(runes) && (isLetter(runes[i]) || runes[i] == '_') {
			i++
		}
		if i+1 < len(runes) && runes[i] == '"' && runes[i+1] == ':' {
			out.WriteRune('"')
			out.WriteString(string(runes[keyStart:i]))
			continue
		}
		// Not a bare key, copy what was scanned.
		out.WriteString(string(runes[keyStart:i]))
	}

	return out.String()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
