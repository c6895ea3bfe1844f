package main

import (
	"testing"
)

func TestLintRuleSetsValidFile(t *testing.T) {
	lintFlags.file = "testdata/valid-ruleset.yaml"
	lintFlags.dir = ""
	lintFlags.format = "text"

	err := lintRuleSets(nil, []string{})
	if err != nil {
		t.Errorf("lintRuleSets() with valid file returned error: %v", err)
	}
}

func TestLintRuleSetsInvalidFile(t *testing.T) {
	lintFlags.file = "testdata/invalid-ruleset.yaml"
	lintFlags.dir = ""
	lintFlags.format = "text"

	err := lintRuleSets(nil, []string{})
	if err == nil {
		t.Error("lintRuleSets() with invalid file should return error")
	}
}

func TestLintRuleSetsNonexistentFile(t *testing.T) {
	lintFlags.file = "testdata/nonexistent.yaml"
	lintFlags.dir = ""
	lintFlags.format = "text"

	err := lintRuleSets(nil, []string{})
	if err == nil {
		t.Error("lintRuleSets() with nonexistent file should return error")
	}
}

func TestLintRuleSetsNoFileOrDir(t *testing.T) {
	lintFlags.file = ""
	lintFlags.dir = ""
	lintFlags.format = "text"

	err := lintRuleSets(nil, []string{})
	if err == nil {
		t.Error("lintRuleSets() without file or dir should return error")
	}
}

func TestLintRuleSetsPositionalArgs(t *testing.T) {
	lintFlags.file = ""
	lintFlags.dir = ""
	lintFlags.format = "text"

	err := lintRuleSets(nil, []string{"testdata/valid-ruleset.yaml"})
	if err != nil {
		t.Errorf("lintRuleSets() with positional file returned error: %v", err)
	}

	err = lintRuleSets(nil, []string{"testdata/valid-ruleset.yaml", "testdata/invalid-ruleset.yaml"})
	if err == nil {
		t.Error("lintRuleSets() with an invalid positional file should return error")
	}
}

func TestLintRuleSetsDirectory(t *testing.T) {
	lintFlags.file = ""
	lintFlags.dir = "testdata"
	lintFlags.format = "text"

	// The directory contains one invalid document, so the lint fails.
	err := lintRuleSets(nil, []string{})
	if err == nil {
		t.Error("lintRuleSets() over testdata should report the invalid document")
	}
}

func TestLintRuleSetsJSONFormat(t *testing.T) {
	lintFlags.file = "testdata/valid-ruleset.yaml"
	lintFlags.dir = ""
	lintFlags.format = "json"

	err := lintRuleSets(nil, []string{})
	if err != nil {
		t.Errorf("lintRuleSets() with JSON format returned error: %v", err)
	}
}

func TestLintFile(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantValid  bool
		wantErrors int
	}{
		{
			name:      "valid document",
			path:      "testdata/valid-ruleset.yaml",
			wantValid: true,
		},
		{
			name:       "duplicate requirement code",
			path:       "testdata/invalid-ruleset.yaml",
			wantValid:  false,
			wantErrors: 1,
		},
		{
			name:       "missing file",
			path:       "testdata/nonexistent.yaml",
			wantValid:  false,
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := lintFile(tt.path)
			if result.Valid != tt.wantValid {
				t.Errorf("lintFile(%q).Valid = %v, want %v", tt.path, result.Valid, tt.wantValid)
			}
			if len(result.Errors) != tt.wantErrors {
				t.Errorf("lintFile(%q) errors = %d, want %d: %v",
					tt.path, len(result.Errors), tt.wantErrors, result.Errors)
			}
		})
	}
}
