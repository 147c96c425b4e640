package protocol

// State is the backend agent's session state as reported over the wire.
type State string

const (
	StateIdle         State = "IDLE"
	StateListening    State = "LISTENING"
	StateProcessing   State = "PROCESSING"
	StateInterrupting State = "INTERRUPTING"
	StatePaused       State = "PAUSED"
	StateFinalizing   State = "FINALIZING"
	StateCompleted    State = "COMPLETED"
	StateError        State = "ERROR"
)

// Known reports whether s is a state this client understands. Unknown
// states are tolerated so a newer backend does not break older clients.
func (s State) Known() bool {
	switch s {
	case StateIdle, StateListening, StateProcessing, StateInterrupting,
		StatePaused, StateFinalizing, StateCompleted, StateError:
		return true
	}
	return false
}

// Terminal reports whether the session has reached a state it cannot
// leave.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// SafetyLevel classifies a safety check result.
type SafetyLevel string

const (
	SafetySafe     SafetyLevel = "SAFE"
	SafetyCaution  SafetyLevel = "CAUTION"
	SafetyDanger   SafetyLevel = "DANGER"
	SafetyCritical SafetyLevel = "CRITICAL"
)

// Rank orders safety levels from least to most severe. Unknown levels
// rank above CRITICAL so they are never silently downgraded.
func (l SafetyLevel) Rank() int {
	switch l {
	case SafetySafe:
		return 0
	case SafetyCaution:
		return 1
	case SafetyDanger:
		return 2
	case SafetyCritical:
		return 3
	}
	return 4
}

// Actionable reports whether the level demands the clinician's
// attention rather than a passive status display.
func (l SafetyLevel) Actionable() bool {
	return l.Rank() >= SafetyDanger.Rank()
}

// SOAPNote is the structured clinical note produced when a consult
// ends.
type SOAPNote struct {
	Subjective string   `json:"subjective"`
	Objective  string   `json:"objective"`
	Assessment string   `json:"assessment"`
	Plan       string   `json:"plan"`
	ICD10Codes []string `json:"icd10_codes,omitempty"`
	CPTCodes   []string `json:"cpt_codes,omitempty"`
}

// Billing summarizes the invoice generated for a completed consult.
type Billing struct {
	InvoiceID string  `json:"invoice_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

// ClinicalIntent lists the clinical entities detected in the
// clinician's speech.
type ClinicalIntent struct {
	Medications []string `json:"medications,omitempty"`
	Procedures  []string `json:"procedures,omitempty"`
	Diagnoses   []string `json:"diagnoses,omitempty"`
}
