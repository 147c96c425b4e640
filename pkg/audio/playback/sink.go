package playback

// Sink plays mono 16-bit little-endian PCM. Play blocks until the
// buffer has been handed to the device.
type Sink interface {
	SampleRate() int
	Play(pcm []byte) error
}
