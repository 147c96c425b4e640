package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type scriptRequest struct {
	PatientID string `json:"patient_id" yaml:"patient_id"`
	Lines     []struct {
		Speaker string `json:"speaker" yaml:"speaker"`
		Text    string `json:"text" yaml:"text"`
	} `json:"lines" yaml:"lines"`
}

func TestLoadRequestYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	data := `patient_id: patient_001
lines:
  - speaker: doctor
    text: How are you feeling today?
  - speaker: patient
    text: A bit dizzy since the new medication.
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	var req scriptRequest
	if err := LoadRequest(path, &req); err != nil {
		t.Fatalf("LoadRequest: %v", err)
	}
	if req.PatientID != "patient_001" {
		t.Errorf("PatientID = %q", req.PatientID)
	}
	if len(req.Lines) != 2 || req.Lines[1].Speaker != "patient" {
		t.Errorf("unexpected lines: %+v", req.Lines)
	}
}

func TestParseRequestJSON(t *testing.T) {
	data := []byte(`{"patient_id":"patient_002","lines":[{"speaker":"doctor","text":"Any allergies?"}]}`)

	var req scriptRequest
	if err := ParseRequest(data, "script.json", &req); err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.PatientID != "patient_002" {
		t.Errorf("PatientID = %q", req.PatientID)
	}
}

func TestParseRequestNoExtension(t *testing.T) {
	// YAML is tried first, JSON as fallback.
	var req scriptRequest
	if err := ParseRequest([]byte(`patient_id: p1`), "", &req); err != nil {
		t.Fatalf("yaml fallback: %v", err)
	}
	if req.PatientID != "p1" {
		t.Errorf("PatientID = %q", req.PatientID)
	}

	if err := ParseRequest([]byte(`{{not valid`), "", &req); err == nil {
		t.Error("expected error for unparseable input")
	}
}

func TestReadRequest(t *testing.T) {
	var req scriptRequest
	if err := ReadRequest(strings.NewReader(`{"patient_id":"p9"}`), &req); err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.PatientID != "p9" {
		t.Errorf("PatientID = %q", req.PatientID)
	}
}
