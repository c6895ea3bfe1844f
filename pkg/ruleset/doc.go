// Package ruleset defines the published rule-set model: a versioned,
// validated collection of eligibility requirements for one visa category.
//
// # Architecture
//
// A RuleSet is parsed from a YAML document whose requirement logic is the
// JSON-logic expression tree handled by pkg/rulelogic. Parsing and
// validation are separate steps: Parse builds the model and rejects only
// structural problems (unreadable YAML, uninterpretable logic trees), while
// Validate/Lint apply the publication rules (unique codes, known operators,
// non-empty sets). Sources in the source and git subpackages load rule sets
// from memory, disk, or a git checkout and serve them to the evaluation
// pipeline through the source.Resolver interface.
//
// # File Format
//
//	ruleset:
//	  id: skilled_worker
//	  version: "2026-04"
//	  jurisdiction: UK
//	  title: Skilled Worker visa
//	requirements:
//	  - code: MIN_SALARY
//	    description: Salary meets the general threshold
//	    mandatory: true
//	    logic:
//	      ">=": [{"var": "salary"}, 38700]
//
// Requirements are mandatory unless marked otherwise.
package ruleset
