package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/AlbertSeismo/RFs-Seispy/internal/testutil"
	"github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

func TestSectionProcessBlockMatchesSample(t *testing.T) {
	c := lowpassRBJ(1, 0.7071, 20)
	x := testutil.Noise(3, 1, 64)

	a := NewSection(c)
	want := make([]float64, len(x))
	for i, v := range x {
		want[i] = a.ProcessSample(v)
	}

	b := NewSection(c)
	got := append([]float64(nil), x...)
	b.ProcessBlock(got)
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-14)
	// Both delay lines must carry over identically.
	if ya, yb := a.ProcessSample(0.5), b.ProcessSample(0.5); ya != yb {
		t.Errorf("next sample diverged: %v vs %v", ya, yb)
	}
}

func TestButterworthCornerGain(t *testing.T) {
	const fs = 20.0
	for _, order := range []int{1, 2, 3, 4} {
		lp, err := ButterworthLP(2, order, fs)
		if err != nil {
			t.Fatal(err)
		}
		if g := Magnitude(lp, 2, fs); math.Abs(g-1/math.Sqrt2) > 1e-9 {
			t.Errorf("LP order %d: |H(fc)| = %g, want 0.7071", order, g)
		}
		if g := Magnitude(lp, 0.001, fs); math.Abs(g-1) > 1e-6 {
			t.Errorf("LP order %d: DC gain = %g, want 1", order, g)
		}

		hp, err := ButterworthHP(2, order, fs)
		if err != nil {
			t.Fatal(err)
		}
		if g := Magnitude(hp, 2, fs); math.Abs(g-1/math.Sqrt2) > 1e-9 {
			t.Errorf("HP order %d: |H(fc)| = %g, want 0.7071", order, g)
		}
	}
}

func TestButterworthErrors(t *testing.T) {
	if _, err := ButterworthLP(12, 2, 20); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("above nyquist: got %v", err)
	}
	if _, err := ButterworthLP(1, 0, 20); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("zero order: got %v", err)
	}
	if _, err := ButterworthBP(2, 1, 2, 20); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("inverted band: got %v", err)
	}
}

func TestZeroPhaseKeepsPeakPosition(t *testing.T) {
	const n = 400
	x := make([]float64, n)
	for i := range x {
		d := float64(i-200) * 0.05
		x[i] = math.Exp(-d * d)
	}

	y, err := Lowpass(x, 0.05, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	peak := 0
	for i := range y {
		if y[i] > y[peak] {
			peak = i
		}
	}
	if peak != 200 {
		t.Errorf("peak moved to %d, want 200", peak)
	}
}

func TestBandpassRemovesOffset(t *testing.T) {
	const dt = 0.1
	sig := testutil.Sine(0.2, dt, 1, 3000)
	x := make([]float64, len(sig))
	for i := range x {
		x[i] = sig[i] + 5
	}

	y, err := Bandpass(x, dt, 0.03, 0.5, 2)
	if err != nil {
		t.Fatal(err)
	}
	mid := y[1000:2000]
	if m := time.Mean(mid); math.Abs(m) > 0.05 {
		t.Errorf("residual offset %g", m)
	}
	if r := time.RSSQ(mid) / math.Sqrt(float64(len(mid))); math.Abs(r-1/math.Sqrt2) > 0.05 {
		t.Errorf("passband rms = %g, want ~0.707", r)
	}
}

func TestChainPrimeSteadyState(t *testing.T) {
	lp, err := ButterworthLP(1, 3, 20)
	if err != nil {
		t.Fatal(err)
	}
	c := NewChain(lp)
	c.Prime(2)
	for range 10 {
		if y := c.ProcessSample(2); math.Abs(y-2) > 1e-9 {
			t.Fatalf("primed output %g, want 2", y)
		}
	}
}
