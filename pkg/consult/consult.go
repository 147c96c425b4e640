package consult

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/synapse-health/guardian/pkg/consult/protocol"
	"github.com/synapse-health/guardian/pkg/consult/transport"
)

// Link is the duplex connection a consult runs over. Satisfied by
// *transport.Manager.
type Link interface {
	Messages() <-chan transport.Message
	SendCommand(cmd protocol.Command) error
	SendAudio(chunk []byte) error
	Close() error
}

// Player receives the synthesized warning audio stream. Satisfied by
// *playback.Accumulator.
type Player interface {
	Add(chunk []byte)
	Flush()
	Stop()
}

// Result holds the terminal artifacts of a completed consult.
type Result struct {
	SOAPNote        protocol.SOAPNote
	Billing         protocol.Billing
	DurationMinutes int
}

// Update is a snapshot of the consult for a UI layer. Snapshots are
// conflated: a slow consumer sees the latest state, not every
// intermediate one.
type Update struct {
	SessionID  string
	State      protocol.State
	Connection transport.Status
	Duration   time.Duration

	Overlay     bool
	OverlayText string
	Severity    protocol.SafetyLevel

	Transcript []TranscriptEntry
	Alerts     []Alert
	Intent     *protocol.ClinicalIntent

	Result *Result
	Err    error
}

// Config configures a Consult. SessionID and Link are required; Player
// is optional, warning audio is dropped without one.
type Config struct {
	SessionID string
	Link      Link
	Player    Player
	Logger    *slog.Logger
}

// Consult drives one live session. A single dispatch goroutine owns all
// mutable state; it consumes the link's message stream and reduces each
// message into the session mirror, transcript, and alert board.
type Consult struct {
	session *Session
	log     *transcriptLog
	board   *alertBoard
	link    Link
	player  Player
	slog    *slog.Logger

	conn    transport.Status
	lastErr error
	intent  *protocol.ClinicalIntent

	updates chan Update
	acks    chan Result
	done    chan struct{}

	completeOnce sync.Once
	resultMu     sync.Mutex
	result       *Result
}

func New(cfg Config) (*Consult, error) {
	if cfg.SessionID == "" {
		return nil, errors.New("consult: session id required")
	}
	if cfg.Link == nil {
		return nil, errors.New("consult: link required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Consult{
		session: NewSession(cfg.SessionID),
		log:     &transcriptLog{},
		board:   newAlertBoard(),
		link:    cfg.Link,
		player:  cfg.Player,
		slog:    logger,
		conn:    transport.StatusConnected,
		updates: make(chan Update, 1),
		acks:    make(chan Result, 1),
		done:    make(chan struct{}),
	}
	go c.run()
	return c, nil
}

// Updates returns the snapshot stream. Only the most recent snapshot is
// retained when the consumer lags.
func (c *Consult) Updates() <-chan Update {
	return c.updates
}

// Done is closed once the consult reaches its terminal state.
func (c *Consult) Done() <-chan struct{} {
	return c.done
}

// Result returns the terminal artifacts, or nil before completion.
func (c *Consult) Result() *Result {
	c.resultMu.Lock()
	defer c.resultMu.Unlock()
	return c.result
}

func (c *Consult) Pause() error   { return c.link.SendCommand(protocol.PauseCommand{}) }
func (c *Consult) Resume() error  { return c.link.SendCommand(protocol.ResumeCommand{}) }
func (c *Consult) End() error     { return c.link.SendCommand(protocol.EndCommand{}) }
func (c *Consult) CheckSafety() error {
	return c.link.SendCommand(protocol.CheckSafetyCommand{})
}

// AddTranscript injects a clinician line without going through audio.
func (c *Consult) AddTranscript(text string) error {
	return c.link.SendCommand(protocol.TranscriptCommand{Text: text, Speaker: string(SpeakerDoctor)})
}

// SendAudio forwards a captured PCM chunk upstream. While the link is
// down the chunk is dropped and ErrNotConnected returned.
func (c *Consult) SendAudio(chunk []byte) error {
	return c.link.SendAudio(chunk)
}

// CompleteFromAck converges an out-of-band completion (a REST
// end-session acknowledgment) with the in-band consult_ended path.
// Whichever path lands first wins; the other is a no-op.
func (c *Consult) CompleteFromAck(res Result) {
	select {
	case c.acks <- res:
	case <-c.done:
	}
}

// Close tears the consult down without waiting for completion.
func (c *Consult) Close() error {
	if c.player != nil {
		c.player.Stop()
	}
	return c.link.Close()
}

func (c *Consult) run() {
	for {
		select {
		case res := <-c.acks:
			c.complete(res, "rest_ack")
			return
		case msg, ok := <-c.link.Messages():
			if !ok {
				return
			}
			if stop := c.dispatch(msg); stop {
				return
			}
		}
	}
}

// dispatch reduces one inbound message. Returns true when the loop
// should stop.
func (c *Consult) dispatch(msg transport.Message) bool {
	switch {
	case msg.Audio != nil:
		if c.player != nil {
			c.player.Add(msg.Audio)
		}
		return false
	case msg.Status != nil:
		return c.applyStatus(msg.Status)
	case msg.Event != nil:
		c.applyEvent(msg.Event)
		return c.session.State() == protocol.StateCompleted && c.Result() != nil
	}
	return false
}

func (c *Consult) applyStatus(sc *transport.StatusChange) bool {
	c.conn = sc.Status
	switch sc.Status {
	case transport.StatusReconnecting:
		c.slog.Warn("consult: link lost, reconnecting", "attempt", sc.Attempt, "error", sc.Err)
	case transport.StatusFailed:
		c.lastErr = sc.Err
		c.slog.Error("consult: link failed permanently", "error", sc.Err)
	case transport.StatusClosed:
		c.publish()
		return true
	}
	c.publish()
	return false
}

func (c *Consult) applyEvent(ev protocol.Event) {
	switch ev := ev.(type) {
	case *protocol.StateChangeEvent:
		if !c.session.Apply(ev.NewState) {
			c.slog.Warn("consult: ignoring unrecognized state", "state", string(ev.NewState))
			return
		}
		// Entering INTERRUPTING raises the overlay on its own; the
		// interruption_start text, if any, lands separately.
		if ev.NewState == protocol.StateInterrupting && !c.board.overlay {
			c.board.raiseOverlay("")
		}
	case *protocol.TranscriptEvent:
		// Transcribed mic audio is the clinician speaking.
		c.log.append(SpeakerDoctor, ev.Text, ev.Timestamp.Time())
	case *protocol.TranscriptAddedEvent:
		c.log.append(SpeakerDoctor, ev.Text, ev.Timestamp.Time())
	case *protocol.SafetyAlertEvent:
		a := c.board.record(ev)
		c.slog.Info("consult: safety alert", "level", string(a.Level), "risk", a.RiskScore)
	case *protocol.ClinicalIntentEvent:
		intent := ev.Intent
		c.intent = &intent
	case *protocol.InterruptionStartEvent:
		text := c.board.raiseOverlay(ev.Text)
		c.log.append(SpeakerSystem, "[ALERT] "+text, ev.Timestamp.Time())
	case *protocol.InterruptionEndEvent:
		c.board.clearOverlay()
		if c.player != nil {
			c.player.Flush()
		}
	case *protocol.ConsultEndedEvent:
		c.complete(Result{
			SOAPNote:        ev.SOAPNote,
			Billing:         ev.Billing,
			DurationMinutes: ev.DurationMinutes,
		}, "consult_ended")
		return
	default:
		c.slog.Warn("consult: unhandled event", "event", ev)
	}
	c.publish()
}

// complete fires the terminal side effects exactly once, no matter how
// many completion paths land.
func (c *Consult) complete(res Result, source string) {
	c.completeOnce.Do(func() {
		c.session.Apply(protocol.StateCompleted)
		c.resultMu.Lock()
		c.result = &res
		c.resultMu.Unlock()
		if c.player != nil {
			c.player.Stop()
		}
		c.slog.Info("consult: completed", "source", source, "minutes", res.DurationMinutes)
		c.publish()
		close(c.done)
		_ = c.link.Close()
	})
}

func (c *Consult) publish() {
	u := Update{
		SessionID:   c.session.ID(),
		State:       c.session.State(),
		Connection:  c.conn,
		Duration:    c.session.Duration(),
		Overlay:     c.board.overlay,
		OverlayText: c.board.overlayText,
		Severity:    c.board.current,
		Transcript:  c.log.snapshot(),
		Alerts:      c.board.snapshot(),
		Intent:      c.intent,
		Result:      c.Result(),
		Err:         c.lastErr,
	}
	for {
		select {
		case c.updates <- u:
			return
		default:
			select {
			case <-c.updates:
			default:
			}
		}
	}
}
