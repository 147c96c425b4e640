// Package capture turns a live microphone stream into transport-ready audio
// chunks.
//
// A Pipeline reads float32 buffers from a Source at the device's native
// sample rate, resamples each buffer to the target rate by linear
// interpolation, quantizes to 16-bit PCM and emits the bytes as one chunk.
// Chunks preserve capture order and cover contiguous, non-overlapping time
// slices of the input.
//
// The pipeline owns the device for its lifetime: Start acquires it, Stop
// releases every stage best-effort even when an individual teardown step
// fails.
package capture
