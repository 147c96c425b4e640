package consult

import (
	"time"

	"github.com/google/uuid"

	"github.com/synapse-health/guardian/pkg/consult/protocol"
)

// DefaultOverlayText is shown when an interruption arrives without a
// warning message.
const DefaultOverlayText = "Safety interruption in progress"

// Alert is one safety evaluation result, kept for display.
type Alert struct {
	ID             string
	Level          protocol.SafetyLevel
	RiskScore      float64
	Message        string
	Recommendation string
	Timestamp      time.Time
}

// alertBoard holds the alert history and the interruption overlay.
// History is newest-first; existing entries never reorder. The current
// severity is always the most recent evaluation, not the worst ever
// seen.
type alertBoard struct {
	alerts      []Alert
	current     protocol.SafetyLevel
	overlay     bool
	overlayText string
}

func newAlertBoard() *alertBoard {
	return &alertBoard{current: protocol.SafetySafe}
}

func (b *alertBoard) record(ev *protocol.SafetyAlertEvent) Alert {
	a := Alert{
		ID:             uuid.NewString(),
		Level:          ev.SafetyLevel,
		RiskScore:      ev.RiskScore,
		Message:        ev.Warning,
		Recommendation: ev.Recommendation,
		Timestamp:      ev.Timestamp.Time(),
	}
	b.alerts = append([]Alert{a}, b.alerts...)
	b.current = ev.SafetyLevel
	return a
}

func (b *alertBoard) raiseOverlay(text string) string {
	if text == "" {
		text = DefaultOverlayText
	}
	b.overlay = true
	b.overlayText = text
	return text
}

// clearOverlay lowers the overlay. Alert history is untouched.
func (b *alertBoard) clearOverlay() {
	b.overlay = false
	b.overlayText = ""
}

func (b *alertBoard) snapshot() []Alert {
	out := make([]Alert, len(b.alerts))
	copy(out, b.alerts)
	return out
}
