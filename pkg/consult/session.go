package consult

import (
	"time"

	"github.com/synapse-health/guardian/pkg/consult/protocol"
)

// Session mirrors the backend agent's state for one encounter. The
// mirror is passive: it only moves when the server asserts a
// state_change, never by inference from other traffic. Elapsed time is
// tracked locally and accrues only while the mirrored state is
// LISTENING.
type Session struct {
	id    string
	state protocol.State
	start time.Time

	accrued        time.Duration
	listeningSince time.Time

	now func() time.Time
}

func NewSession(id string) *Session {
	return newSessionAt(id, time.Now)
}

func newSessionAt(id string, now func() time.Time) *Session {
	return &Session{
		id:    id,
		state: protocol.StateIdle,
		start: now(),
		now:   now,
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) State() protocol.State { return s.state }
func (s *Session) Start() time.Time      { return s.start }

// Apply mirrors a server-asserted transition. An unrecognized state is
// rejected and the last valid state is retained; the caller logs it.
func (s *Session) Apply(next protocol.State) bool {
	if !next.Known() {
		return false
	}
	now := s.now()
	wasListening := s.state == protocol.StateListening
	isListening := next == protocol.StateListening
	if wasListening && !isListening {
		s.accrued += now.Sub(s.listeningSince)
		s.listeningSince = time.Time{}
	}
	if !wasListening && isListening {
		s.listeningSince = now
	}
	s.state = next
	return true
}

// Duration returns time spent in LISTENING. Pausing freezes the value;
// resuming continues from it without making up the gap.
func (s *Session) Duration() time.Duration {
	d := s.accrued
	if !s.listeningSince.IsZero() {
		d += s.now().Sub(s.listeningSince)
	}
	return d
}
