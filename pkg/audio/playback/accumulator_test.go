package playback

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSink struct {
	mu    sync.Mutex
	plays [][]byte
}

func (s *fakeSink) SampleRate() int { return 16000 }

func (s *fakeSink) Play(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays = append(s.plays, append([]byte(nil), pcm...))
	return nil
}

func (s *fakeSink) played() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.plays))
	copy(out, s.plays)
	return out
}

func passthrough(data []byte, _ int) ([]byte, error) {
	return data, nil
}

func TestBurstMergesIntoOneUtterance(t *testing.T) {
	sink := &fakeSink{}
	a := NewAccumulator(Config{Sink: sink, Hold: 80 * time.Millisecond, Decode: passthrough})

	a.Add([]byte("abc"))
	time.Sleep(20 * time.Millisecond)
	a.Add([]byte("def"))
	time.Sleep(20 * time.Millisecond)
	a.Add([]byte("ghi"))

	time.Sleep(250 * time.Millisecond)
	plays := sink.played()
	if len(plays) != 1 {
		t.Fatalf("plays=%d want 1", len(plays))
	}
	if !bytes.Equal(plays[0], []byte("abcdefghi")) {
		t.Fatalf("played %q", plays[0])
	}
}

func TestQuietGapSplitsUtterances(t *testing.T) {
	sink := &fakeSink{}
	a := NewAccumulator(Config{Sink: sink, Hold: 50 * time.Millisecond, Decode: passthrough})

	a.Add([]byte("one"))
	time.Sleep(200 * time.Millisecond)
	a.Add([]byte("two"))
	time.Sleep(200 * time.Millisecond)

	plays := sink.played()
	if len(plays) != 2 {
		t.Fatalf("plays=%d want 2", len(plays))
	}
	if !bytes.Equal(plays[0], []byte("one")) || !bytes.Equal(plays[1], []byte("two")) {
		t.Fatalf("played %q %q", plays[0], plays[1])
	}
}

func TestStopDiscardsPending(t *testing.T) {
	sink := &fakeSink{}
	a := NewAccumulator(Config{Sink: sink, Hold: 50 * time.Millisecond, Decode: passthrough})

	a.Add([]byte("doomed"))
	a.Stop()

	time.Sleep(200 * time.Millisecond)
	if n := len(sink.played()); n != 0 {
		t.Fatalf("plays=%d want 0", n)
	}

	// The accumulator stays usable after Stop.
	a.Add([]byte("next"))
	time.Sleep(200 * time.Millisecond)
	if n := len(sink.played()); n != 1 {
		t.Fatalf("plays=%d want 1", n)
	}
}

func TestFlushPlaysImmediately(t *testing.T) {
	sink := &fakeSink{}
	a := NewAccumulator(Config{Sink: sink, Hold: 5 * time.Second, Decode: passthrough})

	a.Add([]byte("now"))
	a.Flush()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(sink.played()) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("flush did not play before the hold expired")
}

func TestDecodeFailureDropsUtterance(t *testing.T) {
	sink := &fakeSink{}
	calls := 0
	dec := func(data []byte, rate int) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("garbled")
		}
		return data, nil
	}
	a := NewAccumulator(Config{Sink: sink, Hold: 50 * time.Millisecond, Decode: dec})

	a.Add([]byte("bad"))
	time.Sleep(200 * time.Millisecond)
	if n := len(sink.played()); n != 0 {
		t.Fatalf("plays=%d want 0 after decode failure", n)
	}

	a.Add([]byte("good"))
	time.Sleep(200 * time.Millisecond)
	plays := sink.played()
	if len(plays) != 1 || !bytes.Equal(plays[0], []byte("good")) {
		t.Fatalf("plays=%v", plays)
	}
}
