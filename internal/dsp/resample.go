package dsp

// resampleLinear maps the input onto a new length using linear
// interpolation. step is the source advance per output sample: step > 1
// shortens the signal, step < 1 stretches it.
func resampleLinear(in []float64, step float64) []float64 {
	if len(in) < 2 || step <= 0 {
		out := make([]float64, len(in))
		copy(out, in)
		return out
	}

	outLen := int(float64(len(in)) / step)
	if outLen < 1 {
		outLen = 1
	}
	return stretchTo(in, outLen)
}

// stretchTo resamples the input to exactly n samples.
func stretchTo(in []float64, n int) []float64 {
	if n <= 0 || len(in) == 0 {
		return nil
	}
	out := make([]float64, n)
	if len(in) == 1 {
		for i := range out {
			out[i] = in[0]
		}
		return out
	}

	step := float64(len(in)-1) / float64(n)
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		frac := pos - float64(idx)

		s0 := sampleAt(in, idx)
		s1 := sampleAt(in, idx+1)
		out[i] = s0 + frac*(s1-s0)
	}
	return out
}

func sampleAt(in []float64, idx int) float64 {
	if idx < 0 {
		return in[0]
	}
	if idx >= len(in) {
		return in[len(in)-1]
	}
	return in[idx]
}
