package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextFormatter(t *testing.T) {
	formatter := NewFormatter(FormatText)

	out, err := formatter.Format("3 rule sets loaded")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(out) != "3 rule sets loaded\n" {
		t.Errorf("Format() = %q, want %q", out, "3 rule sets loaded\n")
	}

	var buf bytes.Buffer
	if err := formatter.FormatTo(&buf, 42); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "42\n" {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), "42\n")
	}
}

func TestJSONFormatter(t *testing.T) {
	formatter := NewFormatter(FormatJSON)

	data := map[string]any{
		"final_outcome": "likely",
		"confidence":    1.0,
	}

	var buf bytes.Buffer
	if err := formatter.FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["final_outcome"] != "likely" {
		t.Errorf("final_outcome = %v, want %q", decoded["final_outcome"], "likely")
	}

	// Indented output for human consumption
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("FormatTo() output should be indented")
	}
}

func TestNewFormatterFallback(t *testing.T) {
	formatter := NewFormatter(OutputFormat("yaml"))
	if _, ok := formatter.(*TextFormatter); !ok {
		t.Errorf("NewFormatter(unknown) = %T, want *TextFormatter", formatter)
	}
}
