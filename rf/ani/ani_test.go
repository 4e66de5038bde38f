package ani

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats"

	"github.com/AlbertSeismo/RFs-Seispy/internal/testutil"
)

const (
	dt    = 0.1
	shift = 10.0
)

// splitSamples returns receiver functions with a Ps pulse at 5 s split by
// the given layer, one per back azimuth, sampled every delta seconds.
func splitSamples(layer testutil.Split, bazs []float64, delta float64) []Sample {
	n := int(math.Round(40/delta)) + 1
	out := make([]Sample, len(bazs))
	for i, b := range bazs {
		r, t := layer.Traces(b, 5, testutil.GaussianPulse(0.3), -shift, delta, n)
		out[i] = Sample{Baz: b, R: r, T: t}
	}
	return out
}

func evenBazs(step float64) []float64 {
	var out []float64
	for b := 0.0; b < 360; b += step {
		out = append(out, b)
	}
	return out
}

func surfaceMax(s [][]float64) float64 {
	m := math.Inf(-1)
	for _, row := range s {
		m = max(m, floats.Max(row))
	}
	return m
}

func TestStackBins(t *testing.T) {
	n := 5
	mk := func(baz, v float64) Sample {
		return Sample{Baz: baz, R: testutil.Const(v, n), T: testutil.Const(-v, n)}
	}
	s, err := Stack([]Sample{mk(2, 1), mk(8, 3), mk(10, 5), mk(360, 7), mk(-5, 9)}, dt, shift, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Bins) != 36 {
		t.Fatalf("%d bins", len(s.Bins))
	}
	if s.Total() != 5 {
		t.Fatalf("total %d", s.Total())
	}

	b0 := s.Bins[0]
	if b0.Count != 3 {
		t.Fatalf("bin 0 count %d", b0.Count)
	}
	testutil.RequireNear(t, "bin 0 baz", b0.Baz, (2+8+0)/3.0, 1e-12)
	testutil.RequireSliceNearlyEqual(t, b0.R, testutil.Const((1+3+7)/3.0, n), 1e-12)
	testutil.RequireSliceNearlyEqual(t, b0.T, testutil.Const(-(1+3+7)/3.0, n), 1e-12)

	if s.Bins[1].Count != 1 || s.Bins[1].Baz != 10 {
		t.Fatalf("lower edge belongs to its own bin: %+v", s.Bins[1])
	}
	last := s.Bins[35]
	if last.Count != 1 || last.Baz != 355 {
		t.Fatalf("negative baz bin: %+v", last)
	}

	empty := s.Bins[20]
	if empty.Count != 0 || empty.Baz != 200 || testutil.MaxAbs(empty.R) != 0 || len(empty.R) != n {
		t.Fatalf("empty bin: %+v", empty)
	}
}

func TestStackErrors(t *testing.T) {
	if _, err := Stack(nil, dt, shift, 10); !errors.Is(err, ErrNoData) {
		t.Errorf("got %v", err)
	}
	in := []Sample{{R: make([]float64, 4), T: make([]float64, 4)}, {R: make([]float64, 5), T: make([]float64, 5)}}
	if _, err := Stack(in, dt, shift, 10); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("got %v", err)
	}
	if _, err := Stack(in[:1], dt, shift, 0); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("got %v", err)
	}
}

func TestNewGrid(t *testing.T) {
	g := DefaultGrid()
	if len(g.Fast) != 72 || g.Fast[0] != 0 || g.Fast[71] != 355 {
		t.Fatalf("fast axis %v", g.Fast)
	}
	if len(g.Delay) != 31 || g.Delay[0] != 0 || math.Abs(g.Delay[30]-1.5) > 1e-12 {
		t.Fatalf("delay axis %v", g.Delay)
	}
	if _, err := NewGrid(0, 1, 0.1); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("got %v", err)
	}
}

func TestEstimatorWindow(t *testing.T) {
	s, err := Stack(splitSamples(testutil.Split{Fast: 30, Delay: 0.4}, evenBazs(30), dt), dt, shift, 10)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewEstimator(s, DefaultGrid(), 7, 3); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("reversed window: %v", err)
	}
	if _, err := NewEstimator(s, DefaultGrid(), 3, 40); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("window past end: %v", err)
	}
	if _, err := NewEstimator(s, Grid{}, 3, 7); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("empty grid: %v", err)
	}
}

func TestJointRecoversSplit(t *testing.T) {
	// At 0.05 s sampling a delay step is one sample of fast/slow alignment,
	// so the transverse minimum stays within one cell of the true delay.
	const fine = 0.05
	layer := testutil.Split{Fast: 30, Delay: 0.4}
	s, err := Stack(splitSamples(layer, evenBazs(10), fine), fine, shift, 10)
	if err != nil {
		t.Fatal(err)
	}
	est, err := NewEstimator(s, DefaultGrid(), 3, 7)
	if err != nil {
		t.Fatal(err)
	}
	res, err := est.Joint(DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	for name, surf := range map[string][][]float64{"radial": res.Radial, "cross-correlation": res.CrossCorr, "transverse": res.Transverse} {
		if m := surfaceMax(surf); m != 1 {
			t.Errorf("%s surface max = %v, want 1", name, m)
		}
	}

	if len(res.Best) == 0 {
		t.Fatal("no best-fit point")
	}
	for _, p := range res.Best {
		fast := math.Mod(p.Fast, 180)
		if math.Abs(fast-30) > 5+1e-9 || math.Abs(p.Delay-0.4) > 0.05+1e-9 {
			t.Errorf("best fit (%g°, %gs), want (30°, 0.4s) within one cell", p.Fast, p.Delay)
		}
	}
}

func TestCorrectedNullsTransverse(t *testing.T) {
	layer := testutil.Split{Fast: 60, Delay: 0.6}
	s, err := Stack(splitSamples(layer, evenBazs(20), dt), dt, shift, 10)
	if err != nil {
		t.Fatal(err)
	}
	est, err := NewEstimator(s, DefaultGrid(), 3, 7)
	if err != nil {
		t.Fatal(err)
	}

	baz, r, tr := est.Corrected(60, 0.6)
	if len(baz) != 18 || len(r) != 18 || len(tr) != 18 {
		t.Fatalf("got %d bins", len(baz))
	}
	want := make([]float64, len(r[0]))
	p := testutil.GaussianPulse(0.3)
	for k := range want {
		want[k] = p(float64(k)*dt + 3 - 5)
	}
	for i := range r {
		testutil.RequireSliceNearlyEqual(t, tr[i], make([]float64, len(tr[i])), 1e-12)
		testutil.RequireSliceNearlyEqual(t, r[i], want, 1e-12)
	}

	// Without correction the transverse energy is not null.
	_, _, raw := est.Corrected(0, 0)
	if testutil.MaxAbs(raw[1]) < 0.1 {
		t.Fatalf("uncorrected transverse peak %g", testutil.MaxAbs(raw[1]))
	}
}

func TestJointStack(t *testing.T) {
	er := [][]float64{{2, 1, 0}, {1, -1, 2}}
	ecc := [][]float64{{4, 2, 1}, {4, 1, 4}}
	etc := [][]float64{{1, 1, 1}, {1, 0, 1}}
	j, err := JointStack(er, ecc, etc, Weights{R: 1, CC: 1, TC: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Er and Ecc normalized to 1 at their maxima, Etc already 1.
	testutil.RequireNear(t, "j[0][0]", j[0][0], 1, 1e-12)
	testutil.RequireNear(t, "j[0][1]", j[0][1], 0.5*0.5, 1e-12)
	if j[0][2] != 0 || j[1][1] != 0 {
		t.Fatalf("non-positive energies must score zero: %v", j)
	}
	if er[0][0] != 2 {
		t.Fatal("inputs modified")
	}

	g := Grid{Fast: []float64{0, 5, 10}, Delay: []float64{0, 0.1}}
	best := g.Peaks(j)
	if diff := cmp.Diff([]Point{{Fast: 0, Delay: 0}, {Fast: 10, Delay: 0.1}}, best); diff != "" {
		t.Fatalf("tied maxima (-want +got):\n%s", diff)
	}

	if _, err := JointStack(er, ecc[:1], etc, DefaultWeights()); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestGridExport(t *testing.T) {
	s, err := Stack(splitSamples(testutil.Split{Fast: 100, Delay: 0.3}, evenBazs(45), dt), dt, shift, 10)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGrid(20, 0.6, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	est, err := NewEstimator(s, g, 3, 7)
	if err != nil {
		t.Fatal(err)
	}
	res, err := est.Joint(DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(res, back); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}
