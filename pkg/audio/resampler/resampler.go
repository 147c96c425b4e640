// Package resampler converts decoded 16-bit PCM between sample rates and
// downmixes stereo to mono, as an io.Reader stage.
//
// It is used on the playback path to match decoder output (typically 44.1kHz
// stereo from MP3) to the output sink's format. The capture path uses the
// stateless linear resampler in pkg/audio/capture instead; this one trades
// latency for quality via a windowed-sinc resampler.
package resampler

import (
	"fmt"
	"io"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Format describes a 16-bit little-endian PCM stream.
type Format struct {
	SampleRate int
	Stereo     bool
}

func (f Format) frameBytes() int {
	if f.Stereo {
		return 4
	}
	return 2
}

const srcReadSize = 8192

// Reader resamples audio read from an underlying source. It is not safe for
// concurrent use.
type Reader struct {
	src    io.Reader
	srcFmt Format
	dstFmt Format

	rs      resampling.Resampler // nil when no rate conversion is needed
	srcBuf  []byte
	carry   []byte // partial frame carried between reads
	pending []byte // converted output not yet delivered
	err     error
}

// New creates a Reader converting audio from srcFmt to dstFmt. Stereo input
// with mono output is downmixed by averaging; mono-to-stereo is not
// supported.
func New(src io.Reader, srcFmt, dstFmt Format) (*Reader, error) {
	if srcFmt.SampleRate <= 0 || dstFmt.SampleRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rates %d -> %d", srcFmt.SampleRate, dstFmt.SampleRate)
	}
	if !srcFmt.Stereo && dstFmt.Stereo {
		return nil, fmt.Errorf("resampler: mono to stereo upmix not supported")
	}

	r := &Reader{
		src:    src,
		srcFmt: srcFmt,
		dstFmt: dstFmt,
		srcBuf: make([]byte, srcReadSize),
	}
	if srcFmt.SampleRate != dstFmt.SampleRate {
		rs, err := resampling.New(&resampling.Config{
			InputRate:  float64(srcFmt.SampleRate),
			OutputRate: float64(dstFmt.SampleRate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("resampler: %w", err)
		}
		r.rs = rs
	}
	return r, nil
}

// Read fills p with converted audio. The trailing partial frame of the
// source, if any, is dropped at EOF.
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		if err := r.fill(); err != nil {
			r.err = err
			if len(r.pending) == 0 {
				return 0, err
			}
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *Reader) fill() error {
	n := copy(r.srcBuf, r.carry)
	rn, err := r.src.Read(r.srcBuf[n:])
	n += rn
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return err
	}

	frameBytes := r.srcFmt.frameBytes()
	aligned := n / frameBytes * frameBytes
	r.carry = append(r.carry[:0], r.srcBuf[aligned:n]...)
	mono := r.srcBuf[:aligned]
	if r.srcFmt.Stereo {
		mono = mono[:downmix(mono)]
	}

	if r.rs == nil {
		r.pending = append(r.pending[:0], mono...)
		return err
	}

	samples := len(mono) / 2
	input := make([]float64, samples)
	for i := range input {
		s := int16(mono[i*2]) | int16(mono[i*2+1])<<8
		input[i] = float64(s) / 32768.0
	}
	output, perr := r.rs.Process(input)
	if perr != nil {
		return fmt.Errorf("resampler: %w", perr)
	}

	r.pending = r.pending[:0]
	for _, v := range output {
		s := int16(v * 32767.0)
		if v > 1.0 {
			s = 32767
		} else if v < -1.0 {
			s = -32768
		}
		r.pending = append(r.pending, byte(s), byte(s>>8))
	}
	return err
}

// Close releases the underlying resampler state. Subsequent reads return
// io.ErrClosedPipe.
func (r *Reader) Close() error {
	r.err = io.ErrClosedPipe
	r.rs = nil
	r.pending = nil
	return nil
}

// downmix averages stereo frames into mono in place and returns the new
// length in bytes.
func downmix(b []byte) int {
	frames := len(b) / 4
	for i := range frames {
		j, k := i*4, i*2
		l := int16(b[j]) | int16(b[j+1])<<8
		rch := int16(b[j+2]) | int16(b[j+3])<<8
		m := int16((int32(l) + int32(rch)) / 2)
		b[k] = byte(m)
		b[k+1] = byte(m >> 8)
	}
	return frames * 2
}
