package consult

import (
	"time"

	"github.com/google/uuid"
)

// Speaker tags who a transcript line is attributed to.
type Speaker string

const (
	SpeakerDoctor  Speaker = "doctor"
	SpeakerPatient Speaker = "patient"
	SpeakerSystem  Speaker = "system"
)

// TranscriptEntry is one line of the consult transcript.
type TranscriptEntry struct {
	ID        string
	Speaker   Speaker
	Text      string
	Timestamp time.Time
}

// transcriptLog is the append-only transcript. Order is arrival order.
type transcriptLog struct {
	entries []TranscriptEntry
}

func (l *transcriptLog) append(speaker Speaker, text string, ts time.Time) TranscriptEntry {
	e := TranscriptEntry{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Text:      text,
		Timestamp: ts,
	}
	l.entries = append(l.entries, e)
	return e
}

func (l *transcriptLog) snapshot() []TranscriptEntry {
	out := make([]TranscriptEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
