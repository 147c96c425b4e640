// Package pcm provides types and utilities for mono 16-bit linear PCM audio.
//
// The consult wire protocol carries raw little-endian 16-bit mono frames, so
// this package fixes channels and bit depth and leaves only the sample rate
// variable.
//
// Key types:
//   - Format: a mono 16-bit format at a given sample rate
//   - Quantize: clamped float32 -> int16 conversion
//   - Encode/Decode: int16 <-> little-endian byte conversion
//
// Example usage:
//
//	format := pcm.Mono16K
//
//	// Bytes needed for one 85ms capture chunk.
//	n := format.BytesIn(85 * time.Millisecond)
//
//	// Quantize captured float samples into wire bytes.
//	wire := pcm.Encode(pcm.Quantize(samples, nil), nil)
package pcm
