package filter

// ZeroPhase filters x forward and backward through the cascade and returns
// a new slice. Each pass primes the delay lines with the edge sample, so a
// trace with a DC offset does not start with a transient.
func ZeroPhase(x []float64, coeffs []Coefficients) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	if len(out) == 0 || len(coeffs) == 0 {
		return out
	}

	c := NewChain(coeffs)
	c.Prime(out[0])
	c.ProcessBlock(out)

	reverse(out)
	c.Reset()
	c.Prime(out[0])
	c.ProcessBlock(out)
	reverse(out)

	return out
}

// Bandpass applies a zero-phase Butterworth band-pass to x sampled every dt
// seconds.
func Bandpass(x []float64, dt, freqMin, freqMax float64, order int) ([]float64, error) {
	coeffs, err := ButterworthBP(freqMin, freqMax, order, 1/dt)
	if err != nil {
		return nil, err
	}
	return ZeroPhase(x, coeffs), nil
}

// Lowpass applies a zero-phase Butterworth lowpass to x sampled every dt
// seconds.
func Lowpass(x []float64, dt, freq float64, order int) ([]float64, error) {
	coeffs, err := ButterworthLP(freq, order, 1/dt)
	if err != nil {
		return nil, err
	}
	return ZeroPhase(x, coeffs), nil
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
