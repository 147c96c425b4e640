package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/synapse-health/guardian/pkg/consult/protocol"
)

// fakeDialer hands out fake connections, optionally failing a scripted
// number of dials first.
type fakeDialer struct {
	mu       sync.Mutex
	dials    int
	failNext int
	conns    []*fakeConn
	times    []time.Time
}

func (d *fakeDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.times = append(d.times, time.Now())
	if d.failNext > 0 {
		d.failNext--
		return nil, errors.New("connection refused")
	}
	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dialTimes() []time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]time.Time, len(d.times))
	copy(out, d.times)
	return out
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func (d *fakeDialer) failNextDials(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext = n
}

func newTestManager(t *testing.T, d Dialer, backoff time.Duration, attempts int) *Manager {
	t.Helper()
	m, err := NewManager(ManagerConfig{
		Dialer:      d,
		URL:         "ws://backend/ws/consult/abc",
		BackoffBase: backoff,
		MaxAttempts: attempts,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// awaitStatus reads the stream until the wanted status arrives,
// returning the change. Data frames along the way are discarded.
func awaitStatus(t *testing.T, m *Manager, want Status) *StatusChange {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-m.Messages():
			if msg.Status != nil && msg.Status.Status == want {
				return msg.Status
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %v", want)
		}
	}
}

func TestManagerConnectAndStream(t *testing.T) {
	dialer := &fakeDialer{}
	m := newTestManager(t, dialer, 5*time.Millisecond, 3)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	awaitStatus(t, m, StatusConnected)

	dialer.conn(0).in <- frame{websocket.TextMessage, []byte(`{"type":"transcript","text":"hello"}`)}
	msg := recvMessage(t, m.Messages())
	if tr, ok := msg.Event.(*protocol.TranscriptEvent); !ok || tr.Text != "hello" {
		t.Fatalf("got %+v", msg)
	}

	if err := m.SendCommand(protocol.CheckSafetyCommand{}); err != nil {
		t.Fatal(err)
	}
	if got := dialer.conn(0).written(); len(got) != 1 {
		t.Fatalf("writes=%d", len(got))
	}
}

func TestManagerRedialsAfterDrop(t *testing.T) {
	dialer := &fakeDialer{}
	m := newTestManager(t, dialer, 5*time.Millisecond, 3)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	awaitStatus(t, m, StatusConnected)

	dialer.conn(0).drop()
	sc := awaitStatus(t, m, StatusReconnecting)
	if sc.Attempt != 1 {
		t.Errorf("attempt=%d want 1", sc.Attempt)
	}
	awaitStatus(t, m, StatusConnected)

	// Frames flow over the replacement link.
	dialer.conn(1).in <- frame{websocket.BinaryMessage, []byte{9}}
	msg := recvMessage(t, m.Messages())
	if msg.Audio == nil {
		t.Fatalf("got %+v", msg)
	}

	// A successful connect resets the attempt counter.
	dialer.conn(1).drop()
	sc = awaitStatus(t, m, StatusReconnecting)
	if sc.Attempt != 1 {
		t.Errorf("attempt after reset=%d want 1", sc.Attempt)
	}
	awaitStatus(t, m, StatusConnected)
}

func TestManagerGivesUpAfterMaxAttempts(t *testing.T) {
	dialer := &fakeDialer{}
	m := newTestManager(t, dialer, 2*time.Millisecond, 2)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	awaitStatus(t, m, StatusConnected)

	dialer.failNextDials(10)
	dialer.conn(0).drop()

	sc := awaitStatus(t, m, StatusFailed)
	if sc.Attempt != 2 {
		t.Errorf("failed after attempt=%d want 2", sc.Attempt)
	}
	if err := m.SendAudio([]byte{1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("send after failure: %v", err)
	}
}

func TestManagerConnectWhileLiveIsNoOp(t *testing.T) {
	dialer := &fakeDialer{}
	m := newTestManager(t, dialer, 5*time.Millisecond, 3)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	awaitStatus(t, m, StatusConnected)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	if n := dialer.dialCount(); n != 1 {
		t.Errorf("dials=%d want 1, connect over a live channel must not dial", n)
	}

	// The original channel is still current.
	dialer.conn(0).in <- frame{websocket.TextMessage, []byte(`{"type":"transcript","text":"still here"}`)}
	msg := recvMessage(t, m.Messages())
	if tr, ok := msg.Event.(*protocol.TranscriptEvent); !ok || tr.Text != "still here" {
		t.Fatalf("got %+v", msg)
	}
}

func TestManagerCloseAfterGiveUpEndsStream(t *testing.T) {
	dialer := &fakeDialer{}
	m := newTestManager(t, dialer, 2*time.Millisecond, 2)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	awaitStatus(t, m, StatusConnected)

	dialer.failNextDials(10)
	dialer.conn(0).drop()
	awaitStatus(t, m, StatusFailed)

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	awaitStatus(t, m, StatusClosed)
}

func TestManagerBackoffDoubles(t *testing.T) {
	base := 25 * time.Millisecond
	dialer := &fakeDialer{}
	m := newTestManager(t, dialer, base, 3)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	awaitStatus(t, m, StatusConnected)

	dialer.failNextDials(10)
	dialer.conn(0).drop()
	awaitStatus(t, m, StatusFailed)

	// times[0] is the initial connect; the three failed redials follow
	// the base, 2*base, 4*base schedule. Timers never fire early, so
	// each gap has a hard lower bound.
	times := dialer.dialTimes()
	if len(times) != 4 {
		t.Fatalf("dials=%d want 4", len(times))
	}
	for i, want := range []time.Duration{2 * base, 4 * base} {
		gap := times[i+2].Sub(times[i+1])
		if gap < want {
			t.Errorf("gap %d = %v, want >= %v", i+1, gap, want)
		}
	}
}

func TestManagerCloseCancelsPendingRedial(t *testing.T) {
	dialer := &fakeDialer{}
	m := newTestManager(t, dialer, time.Minute, 3)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	awaitStatus(t, m, StatusConnected)

	dialer.conn(0).drop()
	awaitStatus(t, m, StatusReconnecting)

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if n := dialer.dialCount(); n != 1 {
		t.Errorf("dials=%d want 1, redial should be cancelled", n)
	}
}

func TestManagerInitialDialFailure(t *testing.T) {
	dialer := &fakeDialer{}
	dialer.failNextDials(1)
	m := newTestManager(t, dialer, 5*time.Millisecond, 3)
	defer m.Close()

	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("initial dial failure not returned")
	}
	// No automatic retry for a connection that never came up.
	time.Sleep(30 * time.Millisecond)
	if n := dialer.dialCount(); n != 1 {
		t.Errorf("dials=%d want 1", n)
	}
}

func TestManagerSendWhileDisconnected(t *testing.T) {
	dialer := &fakeDialer{}
	m := newTestManager(t, dialer, time.Minute, 3)
	defer m.Close()

	if err := m.SendCommand(protocol.EndCommand{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("got %v", err)
	}
}
