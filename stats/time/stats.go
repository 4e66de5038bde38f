package time

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Mean returns the arithmetic mean of the signal.
func Mean(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	// Use Kahan summation for numerical stability.
	var sum, c float64
	for _, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}

// Energy returns the sum of squared samples.
func Energy(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.DotProduct(signal, signal)
}

// RSSQ returns the root of the sum of squares.
func RSSQ(signal []float64) float64 {
	return math.Sqrt(Energy(signal))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.MaxAbs(signal)
}

// ArgPeak returns the index of the largest absolute sample. Ties keep the
// earliest index; an empty signal returns -1.
func ArgPeak(signal []float64) int {
	if len(signal) == 0 {
		return -1
	}

	idx := 0
	peak := math.Abs(signal[0])
	for i, x := range signal[1:] {
		if a := math.Abs(x); a > peak {
			peak = a
			idx = i + 1
		}
	}

	return idx
}

// Trend returns the least-squares line a + b*i through the samples.
func Trend(signal []float64) (intercept, slope float64) {
	n := len(signal)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return signal[0], 0
	}

	// Centered abscissa keeps the normal equations well conditioned.
	xm := float64(n-1) / 2
	ym := Mean(signal)
	var sxy, sxx float64
	for i, y := range signal {
		dx := float64(i) - xm
		sxy += dx * (y - ym)
		sxx += dx * dx
	}
	slope = sxy / sxx
	intercept = ym - slope*xm

	return intercept, slope
}

// SNR returns 10*log10(Energy(signal)/Energy(noise)). Zero noise energy
// yields +Inf; zero signal energy yields -Inf.
func SNR(signal, noise []float64) float64 {
	es := Energy(signal)
	en := Energy(noise)
	switch {
	case en == 0 && es == 0:
		return math.NaN()
	case en == 0:
		return math.Inf(1)
	case es == 0:
		return math.Inf(-1)
	}

	return 10 * math.Log10(es/en)
}

// LocalMinima returns the indices of interior strict local minima:
// i with 0 < i < len-1 and x[i-1] > x[i] < x[i+1].
func LocalMinima(signal []float64) []int {
	var idx []int
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] < signal[i-1] && signal[i] < signal[i+1] {
			idx = append(idx, i)
		}
	}

	return idx
}
