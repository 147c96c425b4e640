package pcm

import (
	"fmt"
	"time"
)

// Common formats.
var (
	// Mono16K represents audio/L16; rate=16000; channels=1
	Mono16K = Format{SampleRate: 16000}
	// Mono24K represents audio/L16; rate=24000; channels=1
	Mono24K = Format{SampleRate: 24000}
	// Mono44K represents audio/L16; rate=44100; channels=1
	Mono44K = Format{SampleRate: 44100}
	// Mono48K represents audio/L16; rate=48000; channels=1
	Mono48K = Format{SampleRate: 48000}
)

// Format represents a mono 16-bit linear PCM format at a given sample rate.
type Format struct {
	SampleRate int
}

// BytesPerSample is the size of one sample on the wire.
const BytesPerSample = 2

// Valid reports whether the format has a usable sample rate.
func (f Format) Valid() bool {
	return f.SampleRate > 0
}

// Samples returns the number of samples in the given number of bytes.
func (f Format) Samples(bytes int) int {
	return bytes / BytesPerSample
}

// Bytes returns the number of bytes occupied by the given number of samples.
func (f Format) Bytes(samples int) int {
	return samples * BytesPerSample
}

// SamplesIn returns the number of samples in the given duration.
func (f Format) SamplesIn(d time.Duration) int {
	return int(time.Duration(f.SampleRate) * d / time.Second)
}

// BytesIn returns the number of bytes in the given duration.
func (f Format) BytesIn(d time.Duration) int {
	return f.Bytes(f.SamplesIn(d))
}

// Duration returns the play time of the given number of bytes.
func (f Format) Duration(bytes int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.Samples(bytes)) * time.Second / time.Duration(f.SampleRate)
}

// BytesRate returns the byte rate of the format.
func (f Format) BytesRate() int {
	return f.SampleRate * BytesPerSample
}

// String returns a human-readable representation of the format.
func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=1", f.SampleRate)
}
