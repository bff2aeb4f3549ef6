package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Attributes use content-based IDs derived from their (type, name) tuple;
// experts and experiences use database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// AttributeType classifies taxonomy attributes. The set is closed: search,
// extraction, and scoring only ever operate on the types enumerated here.
type AttributeType string

const (
	// AttributeTypeAgency is an organization an expert has worked with or for.
	AttributeTypeAgency AttributeType = "agency"
	// AttributeTypeRole is a job function such as "program manager".
	AttributeTypeRole AttributeType = "role"
	// AttributeTypeSeniority is a career level such as "senior" or "director".
	AttributeTypeSeniority AttributeType = "seniority"
	// AttributeTypeSkill is a concrete capability such as "data analysis".
	AttributeTypeSkill AttributeType = "skill"
	// AttributeTypeProgram is a named program or initiative.
	AttributeTypeProgram AttributeType = "program"
)

// SearchableTypes returns the attribute types considered during search,
// in their canonical order. The returned slice is a fresh copy.
func SearchableTypes() []AttributeType {
	return []AttributeType{
		AttributeTypeAgency,
		AttributeTypeRole,
		AttributeTypeSeniority,
		AttributeTypeSkill,
		AttributeTypeProgram,
	}
}

// ParseAttributeType converts a string into an AttributeType.
// Returns ErrUnknownAttributeType for anything outside the closed set.
func ParseAttributeType(s string) (AttributeType, error) {
	t := AttributeType(s)
	if !t.Valid() {
		return "", ErrUnknownAttributeType
	}
	return t, nil
}

// Valid reports whether the type is one of the enumerated attribute types.
func (t AttributeType) Valid() bool {
	switch t {
	case AttributeTypeAgency, AttributeTypeRole, AttributeTypeSeniority,
		AttributeTypeSkill, AttributeTypeProgram:
		return true
	}
	return false
}

func (t AttributeType) String() string {
	return string(t)
}

// Attribute is a canonical taxonomy entry that experiences can be tagged with.
// Attributes form a hierarchy through ParentId; Depth is the distance from the
// hierarchy root (root = 0).
type Attribute struct {
	Id         ID
	Name       string
	Type       AttributeType
	Summary    string
	Embedding  []float32 // Embedding vector for similarity matching (nil until computed)
	ParentId   ID        // 0 for roots
	Depth      int
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Tuple returns a string representation of the attribute as "(Type,Name)".
// This is used for generating deterministic IDs; (type, name) uniqueness
// follows from the content addressing.
func (a *Attribute) Tuple() string {
	return "(" + string(a.Type) + "," + a.Name + ")"
}

// EmbeddingText returns the text the attribute's embedding is generated from.
func (a *Attribute) EmbeddingText() string {
	return string(a.Type) + ": " + a.Name + " - " + a.Summary
}

// Expert is a searchable profile. Experiences are stored separately and
// cascade-deleted with the expert.
type Expert struct {
	Id         ID
	Name       string
	Summary    string
	Active     bool
	Metadata   map[string]string // Provenance, e.g. "source", "raw"
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Experience is a single entry in an expert's work history, tagged with
// attribute IDs. The association carries no payload.
type Experience struct {
	Id           ID
	ExpertId     ID
	Employer     string
	Position     string
	StartDate    time.Time
	EndDate      time.Time // Ongoing roles are materialized to the ingestion date
	Summary      string
	AttributeIds []ID
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// DurationYears returns the experience length in fractional years.
func (e *Experience) DurationYears() float64 {
	return e.EndDate.Sub(e.StartDate).Hours() / 24.0 / 365.0
}

// AttributeMatch is an attribute returned from vector similarity search,
// annotated with its cosine similarity to the probe vector.
type AttributeMatch struct {
	Attribute  *Attribute
	Similarity float32
}

// ExpertGraph is a fully materialized expert with its experiences and the
// attributes those experiences reference. Built by an eager load so that
// result assembly never triggers further storage reads.
type ExpertGraph struct {
	Expert      *Expert
	Experiences []*Experience
	Attributes  map[ID]*Attribute
}
