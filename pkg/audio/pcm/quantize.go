package pcm

// Quantize converts float samples in [-1, 1] to 16-bit signed integers,
// clamping out-of-range input first. Positive and negative halves scale by
// their own full-scale bound (32767 and 32768) so neither end can overflow.
//
// If dst is non-nil and large enough it is reused, otherwise a new slice is
// allocated.
func Quantize(src []float32, dst []int16) []int16 {
	if cap(dst) < len(src) {
		dst = make([]int16, len(src))
	}
	dst = dst[:len(src)]
	for i, s := range src {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		if s >= 0 {
			dst[i] = int16(s * 32767)
		} else {
			dst[i] = int16(s * 32768)
		}
	}
	return dst
}

// Encode serializes samples as little-endian bytes. If dst is non-nil and
// large enough it is reused.
func Encode(samples []int16, dst []byte) []byte {
	n := len(samples) * BytesPerSample
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, s := range samples {
		dst[i*2] = byte(s)
		dst[i*2+1] = byte(s >> 8)
	}
	return dst
}

// Decode deserializes little-endian bytes into samples. A trailing odd byte
// is ignored.
func Decode(b []byte, dst []int16) []int16 {
	n := len(b) / BytesPerSample
	if cap(dst) < n {
		dst = make([]int16, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return dst
}
