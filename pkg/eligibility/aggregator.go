package eligibility

import (
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"mercator-hq/minerva/pkg/rulelogic"
)

// RuleEvaluationResult is the aggregated verdict for one rule set against
// one fact set. It is an immutable value object produced fresh per call.
type RuleEvaluationResult struct {
	// Outcome is the tiered verdict over the mandatory requirements.
	Outcome Outcome `json:"outcome"`

	// Confidence is the passed/total ratio over tallied mandatory
	// requirements, in [0, 1].
	Confidence float64 `json:"confidence"`

	// RequirementsPassed and RequirementsTotal count tallied mandatory
	// requirements. Errored requirements are excluded from both.
	RequirementsPassed int `json:"requirements_passed"`
	RequirementsTotal  int `json:"requirements_total"`

	// MissingFacts is the sorted, deduplicated union of missing facts
	// across all requirements, optional ones included. Never nil.
	MissingFacts []string `json:"missing_facts"`

	// RequirementDetails holds one result per input requirement, in input
	// order.
	RequirementDetails []RequirementResult `json:"requirement_details"`
}

// ErroredRequirements returns the details of requirements whose evaluation
// failed, for anomaly reporting.
func (r *RuleEvaluationResult) ErroredRequirements() []RequirementResult {
	var errored []RequirementResult
	for _, detail := range r.RequirementDetails {
		if detail.Errored() {
			errored = append(errored, detail)
		}
	}
	return errored
}

// Aggregator evaluates requirement sets and produces tiered verdicts.
type Aggregator struct {
	config *Config
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil config uses defaults.
func NewAggregator(config *Config, logger *slog.Logger) (*Aggregator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{config: config, logger: logger}, nil
}

// Aggregate evaluates every requirement independently and combines the
// results. No requirement observes another's result, so the verdict is
// independent of requirement order. The only failure is an empty
// requirement set.
func (a *Aggregator) Aggregate(requirements []Requirement, facts rulelogic.FactSet) (*RuleEvaluationResult, error) {
	if len(requirements) == 0 {
		return nil, &NoRequirementsError{}
	}

	details := make([]RequirementResult, len(requirements))
	if a.config.Parallelism > 1 && len(requirements) > 1 {
		var g errgroup.Group
		g.SetLimit(a.config.Parallelism)
		for i, req := range requirements {
			g.Go(func() error {
				details[i] = EvaluateRequirement(req, facts)
				return nil
			})
		}
		// Workers only write their own slot and never return errors.
		_ = g.Wait()
	} else {
		for i, req := range requirements {
			details[i] = EvaluateRequirement(req, facts)
		}
	}

	var passed, failed, blocked int
	missingSet := map[string]struct{}{}
	for i, detail := range details {
		for _, key := range detail.MissingFacts {
			missingSet[key] = struct{}{}
		}
		if !requirements[i].Mandatory {
			continue
		}
		switch {
		case detail.Errored():
			// Excluded from the tallies; surfaced via RequirementDetails.
		case detail.Blocked():
			blocked++
		case detail.Passed:
			passed++
		default:
			failed++
		}
	}

	total := passed + failed + blocked
	result := &RuleEvaluationResult{
		Outcome:            a.tier(failed, blocked, total),
		Confidence:         confidence(passed, total),
		RequirementsPassed: passed,
		RequirementsTotal:  total,
		MissingFacts:       sortedSet(missingSet),
		RequirementDetails: details,
	}

	a.logger.Debug("aggregated rule evaluation",
		"outcome", result.Outcome,
		"confidence", result.Confidence,
		"passed", passed,
		"failed", failed,
		"blocked", blocked,
		"missing_facts", len(result.MissingFacts),
	)
	return result, nil
}

// tier maps the mandatory-requirement tallies to a verdict tier.
func (a *Aggregator) tier(failed, blocked, total int) Outcome {
	switch {
	case total == 0:
		// Every mandatory requirement errored, or none is mandatory.
		// Nothing supports a verdict either way.
		return OutcomePossible
	case failed == 0 && blocked == 0:
		return OutcomeLikely
	case failed == 0:
		return OutcomePossible
	default:
		if float64(failed)/float64(total) >= a.config.UnlikelyFailureFraction {
			return OutcomeUnlikely
		}
		return OutcomePossible
	}
}

func confidence(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	c := float64(passed) / float64(total)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func sortedSet(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
