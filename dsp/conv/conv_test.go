package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/AlbertSeismo/RFs-Seispy/internal/testutil"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

func TestDirect(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected []float64
	}{
		{
			name:     "simple 3x3",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 1, 1},
			expected: []float64{1, 3, 6, 5, 3},
		},
		{
			name:     "impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{1},
			expected: []float64{1, 2, 3, 4, 5},
		},
		{
			name:     "delayed impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{0, 0, 1},
			expected: []float64{0, 0, 1, 2, 3, 4, 5},
		},
		{
			name:     "symmetric",
			a:        []float64{1, 2, 1},
			b:        []float64{1, 2, 1},
			expected: []float64{1, 4, 6, 4, 1},
		},
		{
			name:     "long kernel",
			a:        []float64{1, -1},
			b:        []float64{1, 2, 3, 4, 5},
			expected: []float64{1, 1, 1, 1, 1, -5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Direct(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, result, tt.expected, 1e-12)
		})
	}
}

func TestDirectErrors(t *testing.T) {
	if _, err := Direct(nil, []float64{1}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty input: got %v, want ErrEmptyInput", err)
	}
	if _, err := Direct([]float64{1}, nil); !errors.Is(err, ErrEmptyKernel) {
		t.Errorf("empty kernel: got %v, want ErrEmptyKernel", err)
	}
}

func TestSameKeepsTiming(t *testing.T) {
	x := testutil.Spike(16, 5)
	got, err := Same(x, []float64{0.5, 0.25, 0.125, 0.0625})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 16 {
		t.Fatalf("len = %d, want 16", len(got))
	}
	if got[5] != 0.5 || got[8] != 0.0625 {
		t.Errorf("kernel misplaced: %v", got)
	}
}

func TestNextPowerOf2(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 500: 512, 512: 512, 513: 1024}
	for in, want := range cases {
		if got := NextPowerOf2(in); got != want {
			t.Errorf("NextPowerOf2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestShift(t *testing.T) {
	tests := []struct {
		k    int
		want []float64
	}{
		{0, []float64{1, 2, 3, 4, 5}},
		{2, []float64{4, 5, 1, 2, 3}},
		{-1, []float64{2, 3, 4, 5, 1}},
		{7, []float64{4, 5, 1, 2, 3}},
	}
	for _, tt := range tests {
		x := []float64{1, 2, 3, 4, 5}
		Shift(x, tt.k)
		testutil.RequireSliceNearlyEqual(t, x, tt.want, 0)
	}
}

func TestFFTRoundTrip(t *testing.T) {
	x := testutil.Noise(7, 1, 100)
	f, err := NewFFT(128)
	if err != nil {
		t.Fatal(err)
	}
	spec, err := f.Forward(x)
	if err != nil {
		t.Fatal(err)
	}
	back, err := f.InverseReal(spec)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, back[:100], x, 1e-12)
	for i := 100; i < 128; i++ {
		if math.Abs(back[i]) > 1e-12 {
			t.Fatalf("padding leaked at %d: %g", i, back[i])
		}
	}
}

func TestNewFFTRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewFFT(100); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("got %v, want ErrInvalidSize", err)
	}
}

func TestCorrelateFindsLag(t *testing.T) {
	const n = 64
	ref := make([]float64, n)
	ref[3], ref[4], ref[5] = 0.5, 1, 0.5

	delayed := make([]float64, n)
	copy(delayed[10:], ref[:n-10])

	f, err := NewFFT(n)
	if err != nil {
		t.Fatal(err)
	}
	corr, err := f.Correlate(delayed, ref)
	if err != nil {
		t.Fatal(err)
	}
	idx := stime.ArgPeak(corr)
	v := corr[idx]
	if idx != 10 {
		t.Errorf("peak lag = %d, want 10", idx)
	}
	if math.Abs(v-1.5) > 1e-12 {
		t.Errorf("peak value = %g, want 1.5", v)
	}
}

func TestFilterRealIdentity(t *testing.T) {
	x := testutil.Sine(1, 0.05, 1, 32)
	f, err := NewFFT(32)
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.FilterReal(x, testutil.Const(1, 32), 1)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, x, 1e-12)

	if _, err := f.FilterReal(x, testutil.Const(1, 16), 1); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("short response: got %v, want ErrLengthMismatch", err)
	}
}
