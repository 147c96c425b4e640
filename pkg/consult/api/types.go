package api

import (
	"github.com/synapse-health/guardian/pkg/consult/protocol"
	"github.com/synapse-health/guardian/pkg/jsontime"
)

// StartConsultRequest opens a session for a patient with a provider.
type StartConsultRequest struct {
	PatientID  string `json:"patient_id"`
	ProviderID string `json:"provider_id"`
}

// StartConsultResponse identifies the created session.
type StartConsultResponse struct {
	SessionID   string `json:"session_id"`
	PatientName string `json:"patient_name"`
	Status      string `json:"status"`
}

// EndConsultResponse carries the terminal artifacts of a session.
type EndConsultResponse struct {
	SessionID       string            `json:"session_id"`
	SOAPNote        protocol.SOAPNote `json:"soap_note"`
	Billing         protocol.Billing  `json:"billing"`
	DurationMinutes int               `json:"duration_minutes"`
}

type transcriptInput struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Speaker   string `json:"speaker,omitempty"`
}

// TranscriptStatus acknowledges an injected transcript line.
type TranscriptStatus struct {
	Status       string `json:"status"`
	BufferLength int    `json:"buffer_length"`
}

// SafetyCheckStatus is the outcome of a forced safety check. Status is
// "no_content" when there was no transcript to evaluate.
type SafetyCheckStatus struct {
	Status               string               `json:"status"`
	SafetyLevel          protocol.SafetyLevel `json:"safety_level,omitempty"`
	RequiresInterruption bool                 `json:"requires_interruption,omitempty"`
	Warning              string               `json:"warning,omitempty"`
	Message              string               `json:"message,omitempty"`
}

// SessionStatus is a session's server-side view.
type SessionStatus struct {
	SessionID              string         `json:"session_id"`
	PatientID              string         `json:"patient_id"`
	ProviderID             string         `json:"provider_id"`
	State                  protocol.State `json:"state"`
	StartTime              jsontime.ISO   `json:"start_time"`
	TranscriptLength       int            `json:"transcript_length"`
	SafetyChecksCount      int            `json:"safety_checks_count"`
	HasPendingInterruption bool           `json:"has_pending_interruption"`
}

// Medication is one entry of a patient's active prescription list.
type Medication struct {
	Name       string `json:"name"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Prescriber string `json:"prescriber,omitempty"`
	DrugClass  string `json:"drug_class,omitempty"`
}

// Patient is a patient record.
type Patient struct {
	PatientID          string       `json:"patient_id"`
	Name               string       `json:"name"`
	DateOfBirth        string       `json:"date_of_birth"`
	Allergies          []string     `json:"allergies"`
	CurrentMedications []Medication `json:"current_medications"`
	MedicalHistory     []string     `json:"medical_history"`
	RecentDiagnoses    []string     `json:"recent_diagnoses"`
}

// SafetyResult mirrors the backend's full safety check payload.
type SafetyResult struct {
	SafetyLevel          protocol.SafetyLevel `json:"safety_level"`
	RiskScore            float64              `json:"risk_score"`
	DetectedMedications  []string             `json:"detected_medications"`
	WarningMessage       string               `json:"warning_message"`
	Recommendation       string               `json:"recommendation"`
	RequiresInterruption bool                 `json:"requires_interruption"`
}

// DemoDangerResult reports a simulated dangerous prescription.
type DemoDangerResult struct {
	DemoText     string       `json:"demo_text"`
	SafetyResult SafetyResult `json:"safety_result"`
}

// Health reports backend component availability.
type Health struct {
	Status         string          `json:"status"`
	Services       map[string]bool `json:"services"`
	ActiveSessions int             `json:"active_sessions"`
}
