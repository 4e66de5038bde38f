package conv

import (
	"errors"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput     = errors.New("conv: empty input")
	ErrEmptyKernel    = errors.New("conv: empty kernel")
	ErrLengthMismatch = errors.New("conv: buffer length mismatch")
	ErrInvalidSize    = errors.New("conv: FFT size must be a power of two")
)

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(a)+len(b)-1)
	DirectTo(result, a, b)
	return result, nil
}

// DirectTo performs direct convolution, writing to a pre-allocated destination.
// dst must have length len(a) + len(b) - 1.
func DirectTo(dst, a, b []float64) {
	for i := range dst {
		dst[i] = 0
	}

	m := len(b)

	// Kernels shorter than a vector register gain nothing from the block ops.
	const simdThreshold = 4
	if m < simdThreshold {
		for i := range a {
			for j := 0; j < m; j++ {
				dst[i+j] += a[i] * b[j]
			}
		}
		return
	}

	temp := make([]float64, m)
	for i := range a {
		if a[i] == 0 {
			continue
		}
		vecmath.ScaleBlock(temp, b, a[i])
		vecmath.AddBlockInPlace(dst[i:i+m], temp)
	}
}

// Same convolves a with b and keeps the first len(a) samples, so a causal
// kernel leaves a's timing unchanged.
func Same(a, b []float64) ([]float64, error) {
	full, err := Direct(a, b)
	if err != nil {
		return nil, err
	}
	return full[:len(a)], nil
}

// NextPowerOf2 returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Shift circularly rotates x by k samples in place. Sample i moves to
// index (i+k) mod len(x); negative k rotates towards the start.
func Shift(x []float64, k int) {
	n := len(x)
	if n == 0 {
		return
	}
	k %= n
	if k < 0 {
		k += n
	}
	if k == 0 {
		return
	}
	reverse(x)
	reverse(x[:k])
	reverse(x[k:])
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
