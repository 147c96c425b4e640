package transport

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/synapse-health/guardian/pkg/consult/protocol"
)

type frame struct {
	msgType int
	data    []byte
}

// fakeConn feeds scripted frames to the read loop and records writes.
type fakeConn struct {
	in   chan frame
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	writes []frame
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:   make(chan frame, 16),
		done: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case f, ok := <-c.in:
		if !ok {
			return 0, nil, errors.New("connection reset")
		}
		return f.msgType, f.data, nil
	case <-c.done:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(msgType int, data []byte) error {
	select {
	case <-c.done:
		return errors.New("use of closed connection")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, frame{msgType, append([]byte(nil), data...)})
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) written() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]frame, len(c.writes))
	copy(out, c.writes)
	return out
}

// drop simulates the server closing the link.
func (c *fakeConn) drop() {
	close(c.in)
}

func recvMessage(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			t.Fatal("message stream closed")
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestChannelSplitsFrames(t *testing.T) {
	conn := newFakeConn()
	ch := NewChannel(conn, nil, nil)
	defer ch.Close()

	conn.in <- frame{websocket.TextMessage, []byte(`{"type":"transcript","text":"take two daily"}`)}
	conn.in <- frame{websocket.BinaryMessage, []byte{0xFF, 0xFB, 0x90}}

	m := recvMessage(t, ch.Messages())
	tr, ok := m.Event.(*protocol.TranscriptEvent)
	if !ok {
		t.Fatalf("first message %+v", m)
	}
	if tr.Text != "take two daily" {
		t.Errorf("text=%q", tr.Text)
	}

	m = recvMessage(t, ch.Messages())
	if m.Audio == nil || m.Audio[0] != 0xFF {
		t.Fatalf("second message %+v", m)
	}
}

func TestChannelDropsMalformedAndUnknown(t *testing.T) {
	conn := newFakeConn()
	ch := NewChannel(conn, nil, nil)
	defer ch.Close()

	conn.in <- frame{websocket.TextMessage, []byte(`{{{`)}
	conn.in <- frame{websocket.TextMessage, []byte(`{"type":"telemetry_v9"}`)}
	conn.in <- frame{websocket.TextMessage, []byte(`{"type":"interruption_end","timestamp":"2026-09-01T10:00:00"}`)}

	m := recvMessage(t, ch.Messages())
	if _, ok := m.Event.(*protocol.InterruptionEndEvent); !ok {
		t.Fatalf("got %+v, want the frame after the dropped ones", m)
	}
}

func TestChannelSendCommand(t *testing.T) {
	conn := newFakeConn()
	ch := NewChannel(conn, nil, nil)
	defer ch.Close()

	if err := ch.SendCommand(protocol.PauseCommand{}); err != nil {
		t.Fatal(err)
	}
	if err := ch.SendAudio([]byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}

	writes := conn.written()
	if len(writes) != 2 {
		t.Fatalf("writes=%d", len(writes))
	}
	if writes[0].msgType != websocket.TextMessage || string(writes[0].data) != `{"type":"pause"}` {
		t.Errorf("first write %v %s", writes[0].msgType, writes[0].data)
	}
	if writes[1].msgType != websocket.BinaryMessage || len(writes[1].data) != 4 {
		t.Errorf("second write %v %d bytes", writes[1].msgType, len(writes[1].data))
	}
}

func TestChannelCloseHandler(t *testing.T) {
	conn := newFakeConn()
	got := make(chan error, 1)
	ch := NewChannel(conn, nil, func(err error) { got <- err })

	conn.drop()
	select {
	case err := <-got:
		if err == nil {
			t.Error("close handler got nil error for a dropped link")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("close handler never fired")
	}
	ch.Close()
}

func TestChannelDetachSuppressesHandler(t *testing.T) {
	conn := newFakeConn()
	fired := make(chan error, 1)
	ch := NewChannel(conn, nil, func(err error) { fired <- err })

	ch.Detach()
	ch.Close()

	select {
	case <-fired:
		t.Error("handler fired after Detach")
	case <-time.After(100 * time.Millisecond):
	}
}
