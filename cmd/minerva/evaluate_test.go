package main

import (
	"testing"
)

func TestEvaluateCaseValidInputs(t *testing.T) {
	evaluateFlags.rulesetFile = "testdata/valid-ruleset.yaml"
	evaluateFlags.factsFile = "testdata/case-facts.json"
	evaluateFlags.format = "json"

	err := evaluateCase(evaluateCmd, []string{})
	if err != nil {
		t.Errorf("evaluateCase() with valid inputs returned error: %v", err)
	}
}

func TestEvaluateCaseTextFormat(t *testing.T) {
	evaluateFlags.rulesetFile = "testdata/valid-ruleset.yaml"
	evaluateFlags.factsFile = "testdata/case-facts.json"
	evaluateFlags.format = "text"

	err := evaluateCase(evaluateCmd, []string{})
	if err != nil {
		t.Errorf("evaluateCase() with text format returned error: %v", err)
	}
}

func TestEvaluateCaseInvalidRuleSet(t *testing.T) {
	evaluateFlags.rulesetFile = "testdata/invalid-ruleset.yaml"
	evaluateFlags.factsFile = "testdata/case-facts.json"
	evaluateFlags.format = "json"

	err := evaluateCase(evaluateCmd, []string{})
	if err == nil {
		t.Error("evaluateCase() with invalid rule set should return error")
	}
}

func TestEvaluateCaseMissingRuleSetFile(t *testing.T) {
	evaluateFlags.rulesetFile = "testdata/nonexistent.yaml"
	evaluateFlags.factsFile = "testdata/case-facts.json"
	evaluateFlags.format = "json"

	err := evaluateCase(evaluateCmd, []string{})
	if err == nil {
		t.Error("evaluateCase() with missing rule set file should return error")
	}
}

func TestEvaluateCaseMalformedFacts(t *testing.T) {
	evaluateFlags.rulesetFile = "testdata/valid-ruleset.yaml"
	evaluateFlags.factsFile = "testdata/valid-ruleset.yaml" // YAML, not JSON
	evaluateFlags.format = "json"

	err := evaluateCase(evaluateCmd, []string{})
	if err == nil {
		t.Error("evaluateCase() with malformed facts should return error")
	}
}
