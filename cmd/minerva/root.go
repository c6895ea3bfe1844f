package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "minerva",
	Short: "Minerva - eligibility rule evaluation and decision reconciliation engine",
	Long: `Minerva evaluates visa and immigration eligibility cases against published
rule sets and reconciles the rule verdict with an independent AI judgment.

It provides:
  - Deterministic rule-logic evaluation with tiered verdicts
  - Reconciliation of rule and AI outcomes with conflict detection
  - Escalation of conflicted or low-confidence cases for human review
  - Auditable decision records with configurable retention
  - Rule sets loaded from local files or a git repository, with hot reload

For more information, visit: https://github.com/mercator-hq/minerva`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
