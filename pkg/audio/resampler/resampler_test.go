package resampler

import (
	"bytes"
	"io"
	"math"
	"testing"
)

func stereoSine(samples int, freq float64, rate int) []byte {
	b := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		v := int16(0.5 * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		b[i*4] = byte(v)
		b[i*4+1] = byte(v >> 8)
		b[i*4+2] = byte(v)
		b[i*4+3] = byte(v >> 8)
	}
	return b
}

func TestDownmixPassthrough(t *testing.T) {
	// Equal L and R at the same rate must average to the same mono value.
	src := stereoSine(1000, 440, 16000)
	r, err := New(bytes.NewReader(src), Format{SampleRate: 16000, Stereo: true}, Format{SampleRate: 16000})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2000 {
		t.Fatalf("mono length=%d want 2000", len(out))
	}
	for i := 0; i < 1000; i++ {
		mono := int16(out[i*2]) | int16(out[i*2+1])<<8
		left := int16(src[i*4]) | int16(src[i*4+1])<<8
		if mono != left {
			t.Fatalf("sample %d: mono=%d left=%d", i, mono, left)
		}
	}
}

func TestRateConversionLength(t *testing.T) {
	// One second of 48kHz stereo should come out near one second of 16kHz
	// mono; the sinc filter's startup latency eats a little of the tail.
	src := stereoSine(48000, 440, 48000)
	r, err := New(bytes.NewReader(src), Format{SampleRate: 48000, Stereo: true}, Format{SampleRate: 16000})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	samples := len(out) / 2
	if samples < 12000 || samples > 17000 {
		t.Fatalf("output samples=%d want ~16000", samples)
	}
}

func TestInvalidFormats(t *testing.T) {
	if _, err := New(bytes.NewReader(nil), Format{}, Format{SampleRate: 16000}); err == nil {
		t.Error("zero source rate accepted")
	}
	if _, err := New(bytes.NewReader(nil), Format{SampleRate: 16000}, Format{SampleRate: 16000, Stereo: true}); err == nil {
		t.Error("mono to stereo upmix accepted")
	}
}

func TestReadAfterClose(t *testing.T) {
	r, err := New(bytes.NewReader(make([]byte, 64)), Format{SampleRate: 16000}, Format{SampleRate: 16000})
	if err != nil {
		t.Fatal(err)
	}
	r.Close()
	if _, err := r.Read(make([]byte, 16)); err != io.ErrClosedPipe {
		t.Errorf("read after close: %v", err)
	}
}
