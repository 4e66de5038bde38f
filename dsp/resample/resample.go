package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/AlbertSeismo/RFs-Seispy/dsp/filter"
)

var (
	// ErrInvalidInterval indicates a non-positive or non-finite interval.
	ErrInvalidInterval = errors.New("resample: invalid sampling interval")
	// ErrEmptyInput indicates there is nothing to resample.
	ErrEmptyInput = errors.New("resample: empty input")
)

// The anti-alias lowpass applied when decimating is a Butterworth of this
// order with its corner at cutoffScale times the output Nyquist frequency.
const (
	order       = 4
	cutoffScale = 0.8
)

// OutputLen returns the number of samples ToInterval produces for n input
// samples: every output time must lie inside the input span.
func OutputLen(n int, dt, newDt float64) int {
	if n <= 0 || dt <= 0 || newDt <= 0 {
		return 0
	}
	span := float64(n-1) * dt
	// Guard against 99.99999 -> 99 when the span is an exact multiple.
	return int(math.Floor(span/newDt+1e-9)) + 1
}

// ToInterval resamples x from interval dt to newDt seconds. Equal intervals
// return a copy.
func ToInterval(x []float64, dt, newDt float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if !validInterval(dt) || !validInterval(newDt) {
		return nil, fmt.Errorf("%w: %g -> %g", ErrInvalidInterval, dt, newDt)
	}

	if math.Abs(dt-newDt) <= 1e-12*dt {
		out := make([]float64, len(x))
		copy(out, x)
		return out, nil
	}

	src := x
	if newDt > dt && len(x) > 1 {
		cutoff := cutoffScale * 0.5 / newDt
		filtered, err := filter.Lowpass(x, dt, cutoff, order)
		if err != nil {
			return nil, fmt.Errorf("resample: anti-alias filter: %w", err)
		}
		src = filtered
	}

	out := make([]float64, OutputLen(len(x), dt, newDt))
	ratio := newDt / dt
	for i := range out {
		out[i] = sampleAt(src, float64(i)*ratio)
	}

	return out, nil
}

func validInterval(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// sampleAt interpolates x at fractional index pos, clamping neighbours at
// the edges.
func sampleAt(x []float64, pos float64) float64 {
	n := len(x)
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	if i >= n-1 {
		return x[n-1]
	}
	if frac < 1e-12 {
		return x[i]
	}

	at := func(k int) float64 {
		if k < 0 {
			return x[0]
		}
		if k >= n {
			return x[n-1]
		}
		return x[k]
	}

	return hermite4(frac, at(i-1), at(i), at(i+1), at(i+2))
}

// hermite4 computes cubic 4-point interpolation from x0 to x1 using
// neighbour points xm1 and x2.
func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
