package cli

import (
	"bytes"
	"strings"
	"testing"
)

type outputSample struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Status    string `json:"status" yaml:"status"`
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Output(outputSample{SessionID: "abc", Status: "active"}, OutputOptions{
		Format: FormatJSON,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, `"session_id": "abc"`) {
		t.Errorf("missing session_id in JSON output: %s", got)
	}
}

func TestOutputYAMLDefault(t *testing.T) {
	var buf bytes.Buffer
	// Empty format defaults to YAML.
	err := Output(outputSample{SessionID: "abc", Status: "active"}, OutputOptions{
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "session_id: abc") {
		t.Errorf("missing session_id in YAML output: %s", got)
	}
}

func TestOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	err := Output("plain text", OutputOptions{
		Format: FormatRaw,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if buf.String() != "plain text" {
		t.Errorf("raw output = %q", buf.String())
	}
}

func TestOutputUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Output(outputSample{}, OutputOptions{Format: "xml", Writer: &buf})
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}
