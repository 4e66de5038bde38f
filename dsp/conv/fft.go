package conv

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
)

// FFT is a reusable power-of-two transform for real-valued series.
// It keeps scratch buffers and is not safe for concurrent use.
type FFT struct {
	n    int
	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
}

// NewFFT creates a transform of length n. n must be a power of two.
func NewFFT(n int) (*FFT, error) {
	if !isPowerOf2(n) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	return &FFT{
		n:    n,
		plan: plan,
		in:   make([]complex128, n),
		out:  make([]complex128, n),
	}, nil
}

// Len returns the transform length.
func (f *FFT) Len() int { return f.n }

// Forward returns the spectrum of x, zero-padded or truncated to Len().
func (f *FFT) Forward(x []float64) ([]complex128, error) {
	for i := range f.in {
		if i < len(x) {
			f.in[i] = complex(x[i], 0)
		} else {
			f.in[i] = 0
		}
	}

	spec := make([]complex128, f.n)
	if err := f.plan.Forward(spec, f.in); err != nil {
		return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
	}
	return spec, nil
}

// InverseReal returns the real part of the normalized inverse transform.
func (f *FFT) InverseReal(spec []complex128) ([]float64, error) {
	if len(spec) != f.n {
		return nil, fmt.Errorf("%w: spectrum %d, plan %d", ErrLengthMismatch, len(spec), f.n)
	}

	if err := f.plan.Inverse(f.out, spec); err != nil {
		return nil, fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	result := make([]float64, f.n)
	for i, v := range f.out {
		result[i] = real(v)
	}
	return result, nil
}

// FilterReal multiplies the spectrum of x by the zero-phase response h
// scaled by gain and returns the inverse. h must have length Len().
func (f *FFT) FilterReal(x, h []float64, gain float64) ([]float64, error) {
	if len(h) != f.n {
		return nil, fmt.Errorf("%w: response %d, plan %d", ErrLengthMismatch, len(h), f.n)
	}

	spec, err := f.Forward(x)
	if err != nil {
		return nil, err
	}
	for i := range spec {
		spec[i] *= complex(h[i]*gain, 0)
	}
	return f.InverseReal(spec)
}

// Correlate computes the circular cross-correlation ifft(X * conj(Y)) of x
// and y at the plan length. Index k holds lag k; negative lags wrap to the end.
func (f *FFT) Correlate(x, y []float64) ([]float64, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, ErrEmptyInput
	}

	xs, err := f.Forward(x)
	if err != nil {
		return nil, err
	}
	ys, err := f.Forward(y)
	if err != nil {
		return nil, err
	}

	for i := range xs {
		xs[i] *= complex(real(ys[i]), -imag(ys[i]))
	}
	return f.InverseReal(xs)
}
