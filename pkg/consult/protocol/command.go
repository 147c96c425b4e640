package protocol

import (
	"encoding/json"
	"fmt"
)

// Command is a client-to-server control message.
type Command interface {
	commandType() string
}

// TranscriptCommand injects a transcript line directly, bypassing audio
// capture. Speaker defaults to "doctor" on the server when empty.
type TranscriptCommand struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
}

func (TranscriptCommand) commandType() string { return "transcript" }

// PauseCommand suspends transcription and safety checking.
type PauseCommand struct{}

func (PauseCommand) commandType() string { return "pause" }

// ResumeCommand resumes a paused session.
type ResumeCommand struct{}

func (ResumeCommand) commandType() string { return "resume" }

// EndCommand finalizes the consult. The server answers with a
// consult_ended event carrying the SOAP note and billing summary.
type EndCommand struct{}

func (EndCommand) commandType() string { return "end" }

// CheckSafetyCommand triggers an immediate safety check on the buffered
// transcript instead of waiting for the periodic sweep.
type CheckSafetyCommand struct{}

func (CheckSafetyCommand) commandType() string { return "check_safety" }

// EncodeCommand marshals a command with its type discriminator.
func EncodeCommand(c Command) ([]byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", c.commandType(), err)
	}
	head := fmt.Sprintf(`{"type":%q`, c.commandType())
	if len(body) == 2 {
		return []byte(head + "}"), nil
	}
	return []byte(head + "," + string(body[1:])), nil
}
