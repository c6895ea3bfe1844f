package ruleset

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/rulelogic"
)

// yamlRuleSet is the intermediate structure for parsing rule-set documents.
type yamlRuleSet struct {
	RuleSet      yamlRuleSetMeta   `yaml:"ruleset"`
	Requirements []yamlRequirement `yaml:"requirements"`
}

type yamlRuleSetMeta struct {
	ID           string    `yaml:"id"`
	Version      string    `yaml:"version"`
	Jurisdiction string    `yaml:"jurisdiction"`
	Title        string    `yaml:"title"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

type yamlRequirement struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Mandatory   *bool  `yaml:"mandatory"` // pointer to distinguish unset vs false
	Logic       any    `yaml:"logic"`
}

// Parse decodes a YAML rule-set document. It fails on structural problems:
// unreadable YAML or requirement logic that is not a well-formed expression
// tree. Publication rules are checked separately by Validate.
func Parse(data []byte) (*RuleSet, error) {
	var doc yamlRuleSet
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
	}

	rs := &RuleSet{
		ID:           doc.RuleSet.ID,
		Version:      doc.RuleSet.Version,
		Jurisdiction: doc.RuleSet.Jurisdiction,
		Title:        doc.RuleSet.Title,
		UpdatedAt:    doc.RuleSet.UpdatedAt,
	}

	for i, yr := range doc.Requirements {
		name := yr.Code
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}

		if yr.Logic == nil {
			return nil, fmt.Errorf("%w: requirement %s: missing logic", ErrInvalidRuleSet, name)
		}
		expr, err := rulelogic.FromValue(yr.Logic)
		if err != nil {
			return nil, fmt.Errorf("requirement %s: %w", name, err)
		}

		mandatory := true
		if yr.Mandatory != nil {
			mandatory = *yr.Mandatory
		}

		rs.Requirements = append(rs.Requirements, eligibility.Requirement{
			Code:        yr.Code,
			Description: yr.Description,
			Expression:  expr,
			Mandatory:   mandatory,
		})
	}

	return rs, nil
}

// ParseFile reads and parses one rule-set document from disk.
func ParseFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set %q: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse rule set %q: %w", path, err)
	}
	return rs, nil
}
