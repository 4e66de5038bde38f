// Package window provides tapering windows for trace edges.
package window

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrSize indicates a window with no samples.
	ErrSize = errors.New("window: size must be > 0")
	// ErrShape indicates a Tukey alpha outside [0, 1] or a taper fraction
	// outside [0, 0.5].
	ErrShape = errors.New("window: shape parameter out of range")
)

// Tukey returns the symmetric Tukey window of size samples. alpha is the
// tapered fraction of the whole window: 0 is rectangular and 1 is Hann.
func Tukey(size int, alpha float64) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrSize, size)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: tukey alpha %g", ErrShape, alpha)
	}

	out := make([]float64, size)
	if size == 1 {
		out[0] = 1
		return out, nil
	}
	for i := range out {
		out[i] = tukeyAt(float64(i)/float64(size-1), alpha)
	}
	return out, nil
}

// tukeyAt evaluates the window at x in [0, 1].
func tukeyAt(x, alpha float64) float64 {
	switch {
	case alpha <= 0:
		return 1
	case x < alpha/2:
		return 0.5 * (1 - math.Cos(2*math.Pi*x/alpha))
	case x > 1-alpha/2:
		return 0.5 * (1 - math.Cos(2*math.Pi*(1-x)/alpha))
	}
	return 1
}

// Taper applies a Hann taper to fraction of the samples at each end of buf
// in place, leaving the middle untouched.
func Taper(buf []float64, fraction float64) error {
	if fraction < 0 || fraction > 0.5 {
		return fmt.Errorf("%w: taper fraction %g", ErrShape, fraction)
	}
	if len(buf) == 0 || fraction == 0 {
		return nil
	}

	coeffs, err := Tukey(len(buf), 2*fraction)
	if err != nil {
		return err
	}
	vecmath.MulBlockInPlace(buf, coeffs)
	return nil
}
