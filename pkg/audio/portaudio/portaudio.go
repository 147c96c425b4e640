// Package portaudio exposes the default capture and playback devices
// through github.com/gordonklaus/portaudio.
//
// Mic satisfies the capture pipeline's Source and Speaker satisfies the
// playback Sink, so the rest of the program never touches the device
// layer directly.
package portaudio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/synapse-health/guardian/pkg/audio/pcm"
)

// Mic reads float32 frames from the default input device.
type Mic struct {
	rate   int
	frames int
	buf    []float32
	stream *portaudio.Stream
}

// NewMic opens the default input device for mono capture. The
// framesPerBuffer must match the buffer size the capture pipeline reads
// with.
func NewMic(sampleRate, framesPerBuffer int) (*Mic, error) {
	if sampleRate <= 0 || framesPerBuffer <= 0 {
		return nil, fmt.Errorf("portaudio: invalid mic params rate=%d frames=%d", sampleRate, framesPerBuffer)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	m := &Mic{
		rate:   sampleRate,
		frames: framesPerBuffer,
		buf:    make([]float32, framesPerBuffer),
	}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), framesPerBuffer, m.buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: open input: %w", err)
	}
	m.stream = stream
	return m, nil
}

func (m *Mic) SampleRate() int { return m.rate }

func (m *Mic) Start() error {
	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start input: %w", err)
	}
	return nil
}

// Read blocks until a full device buffer is available and copies it into
// buf. len(buf) must equal the framesPerBuffer the mic was opened with.
func (m *Mic) Read(buf []float32) error {
	if len(buf) != m.frames {
		return fmt.Errorf("portaudio: read buffer %d frames, device delivers %d", len(buf), m.frames)
	}
	if err := m.stream.Read(); err != nil {
		return fmt.Errorf("portaudio: read input: %w", err)
	}
	copy(buf, m.buf)
	return nil
}

func (m *Mic) Stop() error {
	if err := m.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio: stop input: %w", err)
	}
	return nil
}

func (m *Mic) Close() error {
	err := m.stream.Close()
	terr := portaudio.Terminate()
	if err != nil {
		return fmt.Errorf("portaudio: close input: %w", err)
	}
	if terr != nil {
		return fmt.Errorf("portaudio: terminate: %w", terr)
	}
	return nil
}

// Speaker writes mono 16-bit PCM to the default output device.
type Speaker struct {
	rate   int
	frames int
	buf    []int16
	stream *portaudio.Stream
	closed bool
}

// NewSpeaker opens and starts the default output device.
func NewSpeaker(sampleRate, framesPerBuffer int) (*Speaker, error) {
	if sampleRate <= 0 || framesPerBuffer <= 0 {
		return nil, fmt.Errorf("portaudio: invalid speaker params rate=%d frames=%d", sampleRate, framesPerBuffer)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	s := &Speaker{
		rate:   sampleRate,
		frames: framesPerBuffer,
		buf:    make([]int16, framesPerBuffer),
	}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), framesPerBuffer, s.buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: open output: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("portaudio: start output: %w", err)
	}
	s.stream = stream
	return s, nil
}

func (s *Speaker) SampleRate() int { return s.rate }

// Play blocks until the whole buffer has been written to the device.
// The final partial block is zero padded so the device always receives
// full buffers.
func (s *Speaker) Play(b []byte) error {
	if s.closed {
		return errors.New("portaudio: speaker closed")
	}
	samples := pcm.Decode(b, nil)
	for off := 0; off < len(samples); off += s.frames {
		n := copy(s.buf, samples[off:])
		for i := n; i < s.frames; i++ {
			s.buf[i] = 0
		}
		if err := s.stream.Write(); err != nil {
			return fmt.Errorf("portaudio: write output: %w", err)
		}
	}
	return nil
}

func (s *Speaker) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.stream.Stop()
	err := s.stream.Close()
	terr := portaudio.Terminate()
	if err != nil {
		return fmt.Errorf("portaudio: close output: %w", err)
	}
	if terr != nil {
		return fmt.Errorf("portaudio: terminate: %w", terr)
	}
	return nil
}
