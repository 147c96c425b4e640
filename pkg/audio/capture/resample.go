package capture

// ResampleLinear converts samples from srcRate to dstRate by linear
// interpolation. Each call is independent: no state is carried between
// buffers, so callers should feed whole device buffers to keep boundary
// error inaudible.
//
// Equal rates return a copy of the input unchanged.
func ResampleLinear(src []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(src) == 0 {
		out := make([]float32, len(src))
		copy(out, src)
		return out
	}

	n := int(float64(len(src)) * float64(dstRate) / float64(srcRate))
	if n == 0 {
		return nil
	}

	step := float64(srcRate) / float64(dstRate)
	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = src[j] + (src[j+1]-src[j])*frac
	}
	return out
}
