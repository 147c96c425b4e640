package playback

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/synapse-health/guardian/pkg/audio/resampler"
)

// Decoder converts an encoded utterance into mono 16-bit little-endian
// PCM at the given sample rate.
type Decoder func(data []byte, sampleRate int) ([]byte, error)

// DecodeMP3 decodes a complete MP3 stream. The decoder always emits
// 16-bit stereo at the source rate, so the output is downmixed and
// resampled to match the sink.
func DecodeMP3(data []byte, sampleRate int) ([]byte, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("playback: decode mp3: %w", err)
	}
	r, err := resampler.New(dec,
		resampler.Format{SampleRate: dec.SampleRate(), Stereo: true},
		resampler.Format{SampleRate: sampleRate})
	if err != nil {
		return nil, err
	}
	pcm, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("playback: decode mp3: %w", err)
	}
	return pcm, nil
}
