package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mercator-hq/minerva/pkg/cli"
	"mercator-hq/minerva/pkg/ruleset"
)

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [files...]",
	Short: "Validate rule-set documents",
	Long: `Validate rule-set documents for syntax and publication errors.

The lint command parses rule-set documents and performs validation:
  - YAML syntax validation
  - Expression tree validation for every requirement
  - Publication checks (identifiers, versions, duplicate codes, operators)

Documents that fail any check are refused by the server at load time, so
lint reports every problem as an error.

Examples:
  # Lint one or more files
  minerva lint skilled-worker.yaml student.yaml

  # Lint single file
  minerva lint --file skilled-worker.yaml

  # Lint directory
  minerva lint --dir rulesets/

  # JSON output for CI/CD
  minerva lint --file skilled-worker.yaml --format json`,
	RunE: lintRuleSets,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rule-set document to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rule-set documents")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation result for a single rule-set document.
type LintResult struct {
	File   string        `json:"file"`
	Valid  bool          `json:"valid"`
	Errors []LintProblem `json:"errors,omitempty"`
}

// LintProblem is a single validation error.
type LintProblem struct {
	Requirement string `json:"requirement,omitempty"`
	Message     string `json:"message"`
}

func lintRuleSets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either file arguments, --file, or --dir must be specified")
	}

	files := append([]string(nil), args...)
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list rule-set files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule-set files found")
	}

	results := make([]LintResult, 0, len(files))
	failed := 0
	for _, file := range files {
		result := lintFile(file)
		if !result.Valid {
			failed++
		}
		results = append(results, result)
	}

	if lintFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		lintOutputText(results, failed)
	}

	if failed > 0 {
		return fmt.Errorf("%d rule-set file(s) failed validation", failed)
	}
	return nil
}

func lintFile(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	rs, err := ruleset.ParseFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, LintProblem{Message: err.Error()})
		return result
	}

	for _, problem := range ruleset.Lint(rs) {
		result.Valid = false
		result.Errors = append(result.Errors, LintProblem{
			Requirement: problem.RequirementCode,
			Message:     problem.Message,
		})
	}
	return result
}

func lintOutputText(results []LintResult, failed int) {
	for _, result := range results {
		if result.Valid {
			fmt.Printf("✓ %s\n", result.File)
			continue
		}
		fmt.Printf("✗ %s\n", result.File)
		for _, p := range result.Errors {
			if p.Requirement != "" {
				fmt.Printf("  error: %s: %s\n", p.Requirement, p.Message)
			} else {
				fmt.Printf("  error: %s\n", p.Message)
			}
		}
	}
	fmt.Printf("\n%d file(s) checked, %d failed\n", len(results), failed)
}
