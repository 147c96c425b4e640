package transport

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/synapse-health/guardian/pkg/consult/protocol"
)

// Channel pumps frames over a single connection. Text frames decode to
// protocol events, binary frames pass through as audio. Writes are
// serialized; gorilla connections allow only one concurrent writer.
type Channel struct {
	conn Conn
	log  *slog.Logger

	writeMu sync.Mutex

	msgs      chan Message
	closeCh   chan struct{}
	closeOnce sync.Once

	handlerMu sync.Mutex
	onClose   func(error)
}

// Message is one decoded inbound frame. Exactly one field is set.
type Message struct {
	Event  protocol.Event
	Audio  []byte
	Status *StatusChange
}

// NewChannel wraps an established connection and starts reading.
// onClose fires once when the read loop exits, with the error that
// ended it; Detach suppresses it.
func NewChannel(conn Conn, log *slog.Logger, onClose func(error)) *Channel {
	if log == nil {
		log = slog.Default()
	}
	ch := &Channel{
		conn:    conn,
		log:     log,
		msgs:    make(chan Message, 64),
		closeCh: make(chan struct{}),
		onClose: onClose,
	}
	go ch.readLoop()
	return ch
}

// Messages returns the inbound frame stream. It is closed when the
// connection drops or the channel is closed.
func (ch *Channel) Messages() <-chan Message {
	return ch.msgs
}

// SendCommand encodes and writes a command as a text frame.
func (ch *Channel) SendCommand(cmd protocol.Command) error {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	return ch.conn.WriteMessage(websocket.TextMessage, data)
}

// SendAudio writes a PCM chunk as a binary frame.
func (ch *Channel) SendAudio(chunk []byte) error {
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	return ch.conn.WriteMessage(websocket.BinaryMessage, chunk)
}

// Detach removes the close handler. Call before an intentional Close so
// a planned teardown is not mistaken for a dropped link.
func (ch *Channel) Detach() {
	ch.handlerMu.Lock()
	ch.onClose = nil
	ch.handlerMu.Unlock()
}

// Close tears down the connection. Safe to call more than once.
func (ch *Channel) Close() error {
	var err error
	ch.closeOnce.Do(func() {
		close(ch.closeCh)
		err = ch.conn.Close()
	})
	return err
}

func (ch *Channel) readLoop() {
	defer close(ch.msgs)

	var readErr error
	for {
		msgType, data, err := ch.conn.ReadMessage()
		if err != nil {
			select {
			case <-ch.closeCh:
			default:
				readErr = err
			}
			break
		}

		switch msgType {
		case websocket.BinaryMessage:
			ch.deliver(Message{Audio: data})
		case websocket.TextMessage:
			ev, err := protocol.DecodeEvent(data)
			if err != nil {
				ch.log.Warn("transport: dropping malformed frame", "error", err)
				continue
			}
			if unk, ok := ev.(protocol.UnknownEvent); ok {
				ch.log.Warn("transport: dropping unknown event", "type", unk.Type)
				continue
			}
			ch.deliver(Message{Event: ev})
		default:
			// Control frames are handled by the library.
		}
	}

	ch.handlerMu.Lock()
	handler := ch.onClose
	ch.onClose = nil
	ch.handlerMu.Unlock()
	if handler != nil {
		handler(readErr)
	}
}

func (ch *Channel) deliver(m Message) {
	select {
	case ch.msgs <- m:
	case <-ch.closeCh:
	}
}
