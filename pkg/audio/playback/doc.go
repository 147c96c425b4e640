// Package playback turns streamed MP3 audio into speaker output.
//
// Synthesized speech arrives as a burst of MP3 chunks over the session's
// binary channel. An Accumulator collects the burst, waits for the stream
// to go quiet, then decodes the whole utterance and plays it through a
// Sink. Decoding a complete buffer instead of individual chunks avoids
// splitting MP3 frames at chunk boundaries.
package playback
