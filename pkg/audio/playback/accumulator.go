package playback

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultHold is how long the audio stream must stay quiet before the
// accumulated buffer is considered a complete utterance.
const DefaultHold = 500 * time.Millisecond

// Config configures an Accumulator. Sink is required.
type Config struct {
	Sink Sink

	// Hold overrides DefaultHold.
	Hold time.Duration

	// Decode overrides DecodeMP3.
	Decode Decoder

	Logger *slog.Logger
}

// Accumulator buffers incoming audio chunks and flushes them to the
// sink once the stream has been quiet for the hold duration. Each Add
// pushes the pending flush out; the timer fires only on the trailing
// edge of a burst. Flushes are decoded and played one at a time.
type Accumulator struct {
	sink   Sink
	hold   time.Duration
	decode Decoder
	log    *slog.Logger

	mu    sync.Mutex
	buf   []byte
	timer *time.Timer

	playMu sync.Mutex
}

func NewAccumulator(cfg Config) *Accumulator {
	a := &Accumulator{
		sink:   cfg.Sink,
		hold:   cfg.Hold,
		decode: cfg.Decode,
		log:    cfg.Logger,
	}
	if a.hold <= 0 {
		a.hold = DefaultHold
	}
	if a.decode == nil {
		a.decode = DecodeMP3
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	return a
}

// Add appends a chunk to the pending utterance and restarts the hold
// timer.
func (a *Accumulator) Add(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buf = append(a.buf, chunk...)
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.hold, a.flush)
}

// Flush plays the pending utterance immediately instead of waiting for
// the hold timer. Playback still happens on a background goroutine.
func (a *Accumulator) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	go a.flush()
}

// Stop discards the pending utterance and cancels any armed timer. A
// flush already decoding or playing is not interrupted.
func (a *Accumulator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.buf = nil
}

func (a *Accumulator) flush() {
	a.mu.Lock()
	data := a.buf
	a.buf = nil
	a.timer = nil
	a.mu.Unlock()
	if len(data) == 0 {
		return
	}

	a.playMu.Lock()
	defer a.playMu.Unlock()

	pcm, err := a.decode(data, a.sink.SampleRate())
	if err != nil {
		a.log.Error("playback: dropping utterance", "bytes", len(data), "error", err)
		return
	}
	if err := a.sink.Play(pcm); err != nil {
		a.log.Error("playback: play failed", "error", err)
	}
}
