package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/minerva/pkg/cli"
	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/eligibility/reconcile"
	"mercator-hq/minerva/pkg/facts"
	"mercator-hq/minerva/pkg/orchestrator"
	"mercator-hq/minerva/pkg/rulelogic"
	"mercator-hq/minerva/pkg/ruleset"
	"mercator-hq/minerva/pkg/ruleset/source"
)

var evaluateFlags struct {
	rulesetFile string
	factsFile   string
	format      string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one case against a rule set",
	Long: `Evaluate a fact set against a rule-set document without starting the
server. The decision is printed and not persisted; no AI judgment is
consulted, so the final outcome reflects the rule verdict alone.

Examples:
  # Evaluate a case
  minerva evaluate --ruleset skilled-worker.yaml --facts case.json

  # Text summary instead of JSON
  minerva evaluate --ruleset skilled-worker.yaml --facts case.json --format text`,
	RunE: evaluateCase,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.rulesetFile, "ruleset", "r", "", "rule-set document to evaluate against (required)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.factsFile, "facts", "f", "", "JSON file of case facts (required)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "json", "output format: json, text")
	_ = evaluateCmd.MarkFlagRequired("ruleset")
	_ = evaluateCmd.MarkFlagRequired("facts")
}

func evaluateCase(cmd *cobra.Command, args []string) error {
	rs, err := ruleset.ParseFile(evaluateFlags.rulesetFile)
	if err != nil {
		return cli.NewCommandError("evaluate", fmt.Errorf("parse rule set: %w", err))
	}
	if err := rs.Validate(); err != nil {
		return cli.NewCommandError("evaluate", fmt.Errorf("invalid rule set: %w", err))
	}

	data, err := os.ReadFile(evaluateFlags.factsFile)
	if err != nil {
		return cli.NewCommandError("evaluate", fmt.Errorf("read facts: %w", err))
	}
	var factSet rulelogic.FactSet
	if err := json.Unmarshal(data, &factSet); err != nil {
		return cli.NewCommandError("evaluate", fmt.Errorf("parse facts: %w", err))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	aggregator, err := eligibility.NewAggregator(nil, logger)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	policy, err := reconcile.NewPolicy(nil, logger)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	resolver, err := source.NewMemorySource(rs)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	orch, err := orchestrator.New(orchestrator.Deps{
		Resolver:   resolver,
		Facts:      facts.NewMemoryStore(),
		Aggregator: aggregator,
		Policy:     policy,
		Logger:     logger,
	})
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	result, err := orch.EvaluateRuleSet(cmd.Context(), rs, factSet)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	if evaluateFlags.format == "text" {
		printDecisionText(result)
		return nil
	}

	formatter := cli.NewFormatter(cli.FormatJSON)
	return formatter.FormatTo(os.Stdout, map[string]any{
		"ruleset_id":            result.RuleSet.ID,
		"ruleset_version":       result.RuleSet.Version,
		"final_outcome":         result.Decision.FinalOutcome,
		"confidence":            result.Rule.Confidence,
		"requires_human_review": result.Decision.RequiresHumanReview,
		"reasoning_summary":     result.Decision.ReasoningSummary,
		"requirements_passed":   result.Rule.RequirementsPassed,
		"requirements_total":    result.Rule.RequirementsTotal,
		"missing_facts":         result.Rule.MissingFacts,
		"requirement_details":   result.Rule.RequirementDetails,
	})
}

func printDecisionText(result *orchestrator.Result) {
	fmt.Printf("Rule set:   %s", result.RuleSet.ID)
	if result.RuleSet.Version != "" {
		fmt.Printf(" (version %s)", result.RuleSet.Version)
	}
	fmt.Println()
	fmt.Printf("Outcome:    %s\n", result.Decision.FinalOutcome)
	fmt.Printf("Confidence: %.2f\n", result.Rule.Confidence)
	fmt.Printf("Passed:     %d/%d mandatory requirements\n",
		result.Rule.RequirementsPassed, result.Rule.RequirementsTotal)
	if len(result.Rule.MissingFacts) > 0 {
		fmt.Printf("Missing:    %v\n", result.Rule.MissingFacts)
	}
	if result.Decision.RequiresHumanReview {
		fmt.Println("Flagged for human review")
	}
	fmt.Printf("Summary:    %s\n", result.Decision.ReasoningSummary)
}
