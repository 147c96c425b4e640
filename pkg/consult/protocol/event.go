package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/synapse-health/guardian/pkg/jsontime"
)

// Event is a server-to-client message decoded from a text frame.
type Event interface {
	eventType() string
}

// StateChangeEvent reports a transition of the backend agent's state
// machine.
type StateChangeEvent struct {
	OldState  State        `json:"old_state"`
	NewState  State        `json:"new_state"`
	Timestamp jsontime.ISO `json:"timestamp"`
}

func (StateChangeEvent) eventType() string { return "state_change" }

// TranscriptEvent carries a line transcribed from streamed audio.
type TranscriptEvent struct {
	Text      string       `json:"text"`
	Timestamp jsontime.ISO `json:"timestamp"`
}

func (TranscriptEvent) eventType() string { return "transcript" }

// TranscriptAddedEvent acknowledges a TranscriptCommand.
type TranscriptAddedEvent struct {
	Text      string       `json:"text"`
	Timestamp jsontime.ISO `json:"timestamp"`
}

func (TranscriptAddedEvent) eventType() string { return "transcript_added" }

// SafetyAlertEvent reports the outcome of a safety check.
type SafetyAlertEvent struct {
	SafetyLevel          SafetyLevel  `json:"safety_level"`
	RiskScore            float64      `json:"risk_score"`
	Warning              string       `json:"warning"`
	Recommendation       string       `json:"recommendation"`
	RequiresInterruption bool         `json:"requires_interruption"`
	Timestamp            jsontime.ISO `json:"timestamp"`
}

func (SafetyAlertEvent) eventType() string { return "safety_alert" }

// ClinicalIntentEvent reports entities detected in the clinician's
// speech.
type ClinicalIntentEvent struct {
	Intent    ClinicalIntent `json:"intent"`
	Timestamp jsontime.ISO   `json:"timestamp"`
}

func (ClinicalIntentEvent) eventType() string { return "clinical_intent" }

// InterruptionStartEvent announces that synthesized warning audio
// follows on the binary channel.
type InterruptionStartEvent struct {
	Text      string       `json:"text"`
	Timestamp jsontime.ISO `json:"timestamp"`
}

func (InterruptionStartEvent) eventType() string { return "interruption_start" }

// InterruptionEndEvent marks the end of the warning audio stream.
type InterruptionEndEvent struct {
	Timestamp jsontime.ISO `json:"timestamp"`
}

func (InterruptionEndEvent) eventType() string { return "interruption_end" }

// ConsultEndedEvent delivers the final artifacts of a completed
// consult.
type ConsultEndedEvent struct {
	SOAPNote        SOAPNote     `json:"soap_note"`
	Billing         Billing      `json:"billing"`
	DurationMinutes int          `json:"duration_minutes"`
	Timestamp       jsontime.ISO `json:"timestamp"`
}

func (ConsultEndedEvent) eventType() string { return "consult_ended" }

// UnknownEvent preserves a message whose type this client does not
// recognize. Callers log and drop it.
type UnknownEvent struct {
	Type string
	Raw  json.RawMessage
}

func (e UnknownEvent) eventType() string { return e.Type }

// DecodeEvent parses a text frame into its concrete event type.
// Messages with an unrecognized type decode to UnknownEvent; a frame
// without a type field is an error.
func DecodeEvent(data []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("protocol: decode event: %w", err)
	}
	if head.Type == "" {
		return nil, fmt.Errorf("protocol: event missing type")
	}

	var ev Event
	switch head.Type {
	case "state_change":
		ev = &StateChangeEvent{}
	case "transcript":
		ev = &TranscriptEvent{}
	case "transcript_added":
		ev = &TranscriptAddedEvent{}
	case "safety_alert":
		ev = &SafetyAlertEvent{}
	case "clinical_intent":
		ev = &ClinicalIntentEvent{}
	case "interruption_start":
		ev = &InterruptionStartEvent{}
	case "interruption_end":
		ev = &InterruptionEndEvent{}
	case "consult_ended":
		ev = &ConsultEndedEvent{}
	default:
		return UnknownEvent{Type: head.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", head.Type, err)
	}
	return ev, nil
}
