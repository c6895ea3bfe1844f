package ruleset

import (
	"time"

	"mercator-hq/minerva/pkg/eligibility"
)

// RuleSet is the published collection of requirements applicable to one
// visa or requirement-set identifier at a point in time. Treat it as
// immutable once loaded; sources replace whole rule sets, never edit them
// in place.
type RuleSet struct {
	// ID identifies the rule set, e.g. "skilled_worker".
	ID string `json:"id"`

	// Version is the publication version, e.g. "2026-04".
	Version string `json:"version"`

	// Jurisdiction names the legal regime the rules encode.
	Jurisdiction string `json:"jurisdiction,omitempty"`

	// Title is the human-readable name.
	Title string `json:"title,omitempty"`

	// UpdatedAt records when this version was published.
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// Requirements are the published conditions, in document order.
	Requirements []eligibility.Requirement `json:"requirements"`
}

// Requirement returns the requirement with the given code.
func (rs *RuleSet) Requirement(code string) (eligibility.Requirement, bool) {
	for _, req := range rs.Requirements {
		if req.Code == code {
			return req, true
		}
	}
	return eligibility.Requirement{}, false
}

// MandatoryCount returns how many requirements are mandatory.
func (rs *RuleSet) MandatoryCount() int {
	n := 0
	for _, req := range rs.Requirements {
		if req.Mandatory {
			n++
		}
	}
	return n
}
