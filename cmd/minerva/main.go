// Minerva is an eligibility rule evaluation and decision reconciliation
// engine for visa and immigration casework.
//
// It evaluates published rule sets against applicant facts, merges the
// rule verdict with an independent AI judgment, and records an auditable
// decision, escalating conflicted or low-confidence cases for human review.
//
// Usage:
//
//	# Start the API server with default configuration
//	minerva run
//
//	# Start with custom configuration file
//	minerva run --config /etc/minerva/config.yaml
//
//	# Evaluate one case offline, no server required
//	minerva evaluate --ruleset skilled-worker.yaml --facts case.json
//
//	# Validate rule-set documents
//	minerva lint --file skilled-worker.yaml
//
//	# Show version information
//	minerva version
package main

func main() {
	Execute()
}
