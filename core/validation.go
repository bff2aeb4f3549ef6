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


package core

import "fmt"

// ValidateAttribute validates an Attribute according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Type must be one of the enumerated attribute types
//   - Depth must not be negative
//
// NOT validated (populated by processors):
//   - Embedding (can be nil until the ensure-embedding step runs)
//   - ID (0 is valid before content addressing assigns one)
func ValidateAttribute(attr *Attribute) error {
	if attr == nil {
		return fmt.Errorf("%w: attribute is nil", ErrInvalidAttribute)
	}
	if attr.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAttribute, ErrEmptyAttributeName)
	}
	if !attr.Type.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidAttribute, ErrUnknownAttributeType, attr.Type)
	}
	if attr.Depth < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAttribute, ErrNegativeDepth)
	}
	return nil
}

// ValidateExpert validates an Expert according to domain rules.
func ValidateExpert(expert *Expert) error {
	if expert == nil {
		return fmt.Errorf("%w: expert is nil", ErrInvalidExpert)
	}
	if expert.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidExpert, ErrEmptyExpertName)
	}
	return nil
}

// ValidateExperience validates an Experience according to domain rules.
//
// Validation rules:
//   - StartDate and EndDate must be set
//   - StartDate must not be after EndDate
//
// ExpertId is not validated here; repositories assign it when the experience
// is stored under an expert.
func ValidateExperience(exp *Experience) error {
	if exp == nil {
		return fmt.Errorf("%w: experience is nil", ErrInvalidExperience)
	}
	if exp.StartDate.IsZero() || exp.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidExperience)
	}
	if exp.StartDate.After(exp.EndDate) {
		return fmt.Errorf("%w: %w", ErrInvalidExperience, ErrDateOrder)
	}
	return nil
}
