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

import "errors"

// Domain validation errors
var (
	// ErrInvalidAttribute indicates an Attribute failed validation.
	ErrInvalidAttribute = errors.New("invalid attribute")

	// ErrInvalidExpert indicates an Expert failed validation.
	ErrInvalidExpert = errors.New("invalid expert")

	// ErrInvalidExperience indicates an Experience failed validation.
	ErrInvalidExperience = errors.New("invalid experience")

	// ErrUnknownAttributeType indicates a type outside the enumerated set.
	ErrUnknownAttributeType = errors.New("unknown attribute type")

	// ErrEmptyAttributeName indicates the attribute Name field is empty.
	ErrEmptyAttributeName = errors.New("attribute name cannot be empty")

	// ErrEmptyExpertName indicates the expert Name field is empty.
	ErrEmptyExpertName = errors.New("expert name cannot be empty")

	// ErrDateOrder indicates an experience with start date after end date.
	ErrDateOrder = errors.New("start date must not be after end date")

	// ErrNegativeDepth indicates an attribute with a negative hierarchy depth.
	ErrNegativeDepth = errors.New("attribute depth cannot be negative")
)
