package ingestion

import (
	"strings"
	"time"

	"github.com/poiesic/expertmatch/core"
)

// ExpertProfile is the input for registering an expert with work history.
type ExpertProfile struct {
	Name        string
	Summary     string
	Active      bool
	Metadata    map[string]string
	Experiences []ExperienceProfile
}

// ExperienceProfile describes one position in an expert's work history.
// A zero EndDate marks an ongoing role and is materialized to the current
// date at ingestion.
type ExperienceProfile struct {
	Employer   string
	Position   string
	StartDate  time.Time
	EndDate    time.Time
	Summary    string
	Attributes []AttributeTerm
}

// AttributeTerm is a free-text taxonomy reference inside a profile. It is
// resolved to an existing attribute when one is semantically close enough,
// otherwise registered as a new taxonomy entry.
type AttributeTerm struct {
	Type    core.AttributeType
	Name    string
	Summary string
}

// normalize lowercases and trims the term name and trims the summary.
// Content-addressed attribute IDs hash the (type, name) tuple, so every
// ingestion path must register names in this canonical form.
func (t AttributeTerm) normalize() AttributeTerm {
	t.Name = strings.ToLower(strings.TrimSpace(t.Name))
	t.Summary = strings.TrimSpace(t.Summary)
	return t
}

func (t AttributeTerm) tuple() string {
	return "(" + string(t.Type) + "," + t.Name + ")"
}

// validate checks a profile and materializes ongoing roles against now.
func (p *ExpertProfile) validate(now time.Time) error {
	if strings.TrimSpace(p.Name) == "" {
		return core.ErrEmptyExpertName
	}
	for i := range p.Experiences {
		exp := &p.Experiences[i]
		if exp.EndDate.IsZero() {
			exp.EndDate = now
		}
		if exp.StartDate.After(exp.EndDate) {
			return core.ErrDateOrder
		}
		for _, term := range exp.Attributes {
			if !term.Type.Valid() {
				return core.ErrUnknownAttributeType
			}
		}
	}
	return nil
}
