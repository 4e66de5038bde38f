package testutil

import (
	"math"
	"math/rand"
)

// Sine samples amplitude*sin(2*pi*freqHz*t) at t = i*dt.
func Sine(freqHz, dt, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freqHz * dt
	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i))
	}
	return out
}

// Noise returns uniform noise in [-amplitude, amplitude) from a fixed seed.
func Noise(seed int64, amplitude float64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out
}

// Spike is a unit spike at index pos of an n-sample series. Out-of-range
// positions give all zeros.
func Spike(n, pos int) []float64 {
	out := make([]float64, n)
	if pos >= 0 && pos < n {
		out[pos] = 1
	}
	return out
}

// Const is an n-sample series holding v.
func Const(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
