package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/synapse-health/guardian/pkg/consult/protocol"
)

// ErrNotConnected is returned by send methods while no link is up.
var ErrNotConnected = errors.New("transport: not connected")

const (
	// DefaultBackoffBase is the delay before the first redial attempt.
	// Each further attempt doubles it.
	DefaultBackoffBase = time.Second

	// DefaultMaxAttempts is how many consecutive redials are tried
	// before the manager gives up.
	DefaultMaxAttempts = 5

	// DefaultDialTimeout bounds each redial attempt.
	DefaultDialTimeout = 10 * time.Second
)

// Status describes the link state reported on the message stream.
type Status int

const (
	StatusConnected Status = iota
	StatusReconnecting
	StatusFailed
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusFailed:
		return "failed"
	case StatusClosed:
		return "closed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// StatusChange reports a link transition. Attempt counts consecutive
// redials since the last successful connect; Err is the error that
// dropped the link, when there was one.
type StatusChange struct {
	Status  Status
	Attempt int
	Err     error
}

// ManagerConfig configures a Manager. Dialer and URL are required.
type ManagerConfig struct {
	Dialer Dialer
	URL    string

	BackoffBase time.Duration
	MaxAttempts int
	DialTimeout time.Duration
	Logger      *slog.Logger
}

// Manager keeps one channel alive to the backend. When the link drops
// it redials with exponential backoff, resetting the attempt counter on
// every successful connect. After MaxAttempts consecutive failures it
// reports StatusFailed and stops. An intentional Close cancels any
// pending redial.
type Manager struct {
	dialer      Dialer
	url         string
	backoffBase time.Duration
	maxAttempts int
	dialTimeout time.Duration
	log         *slog.Logger

	msgs    chan Message
	closeCh chan struct{}

	mu      sync.Mutex
	ch      *Channel
	attempt int
	retry   *time.Timer
	failed  bool
	closed  bool
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Dialer == nil {
		return nil, errors.New("transport: dialer required")
	}
	if cfg.URL == "" {
		return nil, errors.New("transport: url required")
	}
	m := &Manager{
		dialer:      cfg.Dialer,
		url:         cfg.URL,
		backoffBase: cfg.BackoffBase,
		maxAttempts: cfg.MaxAttempts,
		dialTimeout: cfg.DialTimeout,
		log:         cfg.Logger,
		msgs:        make(chan Message, 64),
		closeCh:     make(chan struct{}),
	}
	if m.backoffBase <= 0 {
		m.backoffBase = DefaultBackoffBase
	}
	if m.maxAttempts <= 0 {
		m.maxAttempts = DefaultMaxAttempts
	}
	if m.dialTimeout <= 0 {
		m.dialTimeout = DefaultDialTimeout
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m, nil
}

// Connect performs the initial dial. A failure here is returned to the
// caller; automatic redialing only covers links that were up once.
// Connecting while a channel is already live is a no-op.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.New("transport: manager closed")
	}
	if m.ch != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	conn, err := m.dialer.DialContext(ctx, m.url)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = conn.Close()
		return errors.New("transport: manager closed")
	}
	if m.ch != nil {
		m.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	m.failed = false
	m.install(conn)
	m.mu.Unlock()

	m.emit(Message{Status: &StatusChange{Status: StatusConnected}})
	return nil
}

// Messages returns the merged stream of frames and status changes
// across reconnects. The stream ends with StatusClosed or StatusFailed.
func (m *Manager) Messages() <-chan Message {
	return m.msgs
}

// SendCommand forwards a command over the live channel.
func (m *Manager) SendCommand(cmd protocol.Command) error {
	ch := m.current()
	if ch == nil {
		return ErrNotConnected
	}
	return ch.SendCommand(cmd)
}

// SendAudio forwards a PCM chunk over the live channel. Chunks produced
// while the link is down are reported as ErrNotConnected; the caller
// decides whether that audio is worth buffering.
func (m *Manager) SendAudio(chunk []byte) error {
	ch := m.current()
	if ch == nil {
		return ErrNotConnected
	}
	return ch.SendAudio(chunk)
}

func (m *Manager) current() *Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ch
}

// Close tears the link down and cancels any pending redial.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	ch := m.ch
	m.ch = nil
	m.mu.Unlock()

	var err error
	if ch != nil {
		ch.Detach()
		err = ch.Close()
	}
	select {
	case m.msgs <- Message{Status: &StatusChange{Status: StatusClosed}}:
	default:
	}
	close(m.closeCh)
	return err
}

// install wires a new connection in as the live channel. Caller holds
// m.mu.
func (m *Manager) install(conn Conn) {
	ch := NewChannel(conn, m.log, nil)
	ch.handlerMu.Lock()
	ch.onClose = func(err error) { m.channelClosed(ch, err) }
	ch.handlerMu.Unlock()
	m.ch = ch
	m.attempt = 0
	go m.pump(ch)
}

// pump forwards one channel's frames onto the merged stream.
func (m *Manager) pump(ch *Channel) {
	for msg := range ch.Messages() {
		m.emit(msg)
	}
}

// channelClosed runs when a live channel's read loop exits
// unexpectedly.
func (m *Manager) channelClosed(ch *Channel, err error) {
	m.mu.Lock()
	if m.closed || m.ch != ch {
		m.mu.Unlock()
		return
	}
	m.ch = nil
	m.scheduleRetryLocked(err)
	m.mu.Unlock()
}

// scheduleRetryLocked arms the next redial or gives up. Caller holds
// m.mu.
func (m *Manager) scheduleRetryLocked(cause error) {
	if m.attempt >= m.maxAttempts {
		m.log.Error("transport: giving up after redial attempts", "attempts", m.attempt)
		m.failed = true
		go m.emit(Message{Status: &StatusChange{Status: StatusFailed, Attempt: m.attempt, Err: cause}})
		return
	}
	delay := m.backoffBase << m.attempt
	m.attempt++
	attempt := m.attempt
	m.log.Warn("transport: link lost, redialing", "attempt", attempt, "delay", delay, "error", cause)
	go m.emit(Message{Status: &StatusChange{Status: StatusReconnecting, Attempt: attempt, Err: cause}})
	m.retry = time.AfterFunc(delay, m.redial)
}

func (m *Manager) redial() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.retry = nil
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.dialTimeout)
	conn, err := m.dialer.DialContext(ctx, m.url)
	cancel()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		m.scheduleRetryLocked(err)
		m.mu.Unlock()
		return
	}
	m.install(conn)
	m.mu.Unlock()

	m.emit(Message{Status: &StatusChange{Status: StatusConnected}})
}

func (m *Manager) emit(msg Message) {
	select {
	case m.msgs <- msg:
	case <-m.closeCh:
	}
}
