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


// Package ai defines the AI service abstractions used by expertmatch.
//
// Two services are consumed by the rest of the system:
//
//   - Embedder converts text into fixed-length dense vectors for semantic
//     similarity comparison.
//   - TermExtractor proposes candidate attribute terms (agency, role,
//     seniority, skill, program) from free text via an LLM.
//
// The AIProvider interface bundles both services behind a single lifecycle.
// Production implementations live in the openai subpackage and talk to any
// OpenAI-compatible endpoint; deterministic test doubles live in mock.
//
// # Thread Safety
//
// All service implementations must be safe for concurrent use. A single
// provider is typically shared by the search path and the ingestion path.
package ai
