// Package audio provides the client-side audio path.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - pcm: PCM (Pulse Code Modulation) audio format handling
//   - capture: microphone capture pipeline emitting 16-bit mono chunks
//   - resampler: streaming sample-rate and channel conversion
//   - playback: warning-audio accumulator and MP3 decoding
//   - portaudio: default input/output device bindings
//
// Example usage:
//
//	import (
//	    "github.com/synapse-health/guardian/pkg/audio/capture"
//	    "github.com/synapse-health/guardian/pkg/audio/pcm"
//	)
//
//	pipe := capture.NewPipeline(mic, capture.Config{Target: pcm.Mono16K})
//	if err := pipe.Start(ctx); err != nil {
//	    return err
//	}
//	for chunk := range pipe.Chunks() {
//	    send(chunk)
//	}
package audio
