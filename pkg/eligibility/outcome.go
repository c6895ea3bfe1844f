package eligibility

// Outcome is the coarse eligibility verdict tier for a case.
type Outcome string

const (
	// OutcomeLikely indicates every mandatory requirement passed with no
	// facts missing.
	OutcomeLikely Outcome = "likely"

	// OutcomePossible indicates the case is undetermined: facts are missing,
	// the failure fraction is below the unlikely threshold, or the rule
	// verdict conflicts with an independent judgment.
	OutcomePossible Outcome = "possible"

	// OutcomeUnlikely indicates enough mandatory requirements definitively
	// failed to cross the configured threshold.
	OutcomeUnlikely Outcome = "unlikely"
)

// Valid reports whether o is one of the three defined tiers.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeLikely, OutcomePossible, OutcomeUnlikely:
		return true
	default:
		return false
	}
}
