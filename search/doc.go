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


// Package search implements expert search by semantic attribute matching.
//
// A search request flows through four stages:
//   - Term extraction: an LLM proposes candidate attribute terms per type
//     (agency, role, seniority, skill, program) from the query text.
//   - Attribute resolution: the selected terms are embedded in one batch and
//     matched against the canonical attribute taxonomy by cosine similarity.
//   - Experience scoring: every (experience, matched attribute) pair earns a
//     contribution from duration, recency, similarity, and the per-type
//     weight; contributions sum to a per-expert total.
//   - Assembly: ranked experts are paginated and joined back to their full
//     experience and attribute detail with a per-type score breakdown.
//
// Search-time behavior is controlled by a Config built per request by merging
// caller overrides onto defaults; there is no package-level mutable state.
package search
