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


package storage

import (
	"github.com/poiesic/expertmatch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalAttribute serializes an Attribute to bytes.
func MarshalAttribute(attr *core.Attribute) []byte {
	buf := make([]byte, core.AttributeMUS.Size(*attr))
	core.AttributeMUS.Marshal(*attr, buf)
	return buf
}

// UnmarshalAttribute deserializes an Attribute from bytes.
func UnmarshalAttribute(data []byte) (*core.Attribute, error) {
	attr, _, err := core.AttributeMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &attr, nil
}

// MarshalExpert serializes an Expert to bytes.
func MarshalExpert(expert *core.Expert) []byte {
	buf := make([]byte, core.ExpertMUS.Size(*expert))
	core.ExpertMUS.Marshal(*expert, buf)
	return buf
}

// UnmarshalExpert deserializes an Expert from bytes.
func UnmarshalExpert(data []byte) (*core.Expert, error) {
	expert, _, err := core.ExpertMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &expert, nil
}

// MarshalExperience serializes an Experience to bytes.
func MarshalExperience(exp *core.Experience) []byte {
	buf := make([]byte, core.ExperienceMUS.Size(*exp))
	core.ExperienceMUS.Marshal(*exp, buf)
	return buf
}

// UnmarshalExperience deserializes an Experience from bytes.
func UnmarshalExperience(data []byte) (*core.Experience, error) {
	exp, _, err := core.ExperienceMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &exp, nil
}
