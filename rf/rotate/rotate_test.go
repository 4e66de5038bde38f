package rotate

import (
	"errors"
	"math"
	"testing"

	"github.com/AlbertSeismo/RFs-Seispy/internal/testutil"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		in   string
		want seis.Frame
		ok   bool
	}{
		{"RTZ", seis.FrameRTZ, true},
		{"zrt", seis.FrameRTZ, true},
		{"TQL", seis.FrameLQT, true},
		{" lqt ", seis.FrameLQT, true},
		{"ZNE", "", false},
		{"RT", "", false},
		{"RTZZ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFrame(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("ParseFrame(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("ParseFrame(%q): got %v, want ErrInvalidFrame", tt.in, err)
		}
	}
}

func TestNE2RTKnownAngles(t *testing.T) {
	tests := []struct {
		baz        float64
		e, n, r, t float64
	}{
		{0, 0, -1, 1, 0},
		{90, -1, 0, 1, 0},
		{90, 0, 1, 0, 1},
		{180, 0, 1, 1, 0},
	}
	for _, tt := range tests {
		r, tr, err := NE2RT([]float64{tt.e}, []float64{tt.n}, tt.baz)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(r[0]-tt.r) > 1e-12 || math.Abs(tr[0]-tt.t) > 1e-12 {
			t.Errorf("baz %g: got R=%g T=%g, want R=%g T=%g", tt.baz, r[0], tr[0], tt.r, tt.t)
		}
	}
}

func TestRTRoundTrip(t *testing.T) {
	r0 := testutil.Noise(1, 1, 256)
	t0 := testutil.Noise(2, 1, 256)
	for _, baz := range []float64{0, 37.5, 123, 271.2, 359.9} {
		e, n, err := RT2NE(r0, t0, baz)
		if err != nil {
			t.Fatal(err)
		}
		r1, t1, err := NE2RT(e, n, baz)
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireSliceNearlyEqual(t, r1, r0, 1e-12)
		testutil.RequireSliceNearlyEqual(t, t1, t0, 1e-12)
	}
}

func TestLQTRoundTrip(t *testing.T) {
	z0 := testutil.Noise(3, 1, 128)
	e0 := testutil.Noise(4, 1, 128)
	n0 := testutil.Noise(5, 1, 128)

	l, q, tr, err := ZNE2LQT(z0, e0, n0, 211, 17)
	if err != nil {
		t.Fatal(err)
	}
	z1, e1, n1, err := LQT2ZNE(l, q, tr, 211, 17)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, z1, z0, 1e-12)
	testutil.RequireSliceNearlyEqual(t, e1, e0, 1e-12)
	testutil.RequireSliceNearlyEqual(t, n1, n0, 1e-12)
}

func TestRotateLengthMismatch(t *testing.T) {
	if _, _, err := NE2RT([]float64{1}, []float64{1, 2}, 0); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("got %v, want ErrLengthMismatch", err)
	}
	if _, _, _, err := ZNE2LQT([]float64{1}, []float64{1}, []float64{1, 2}, 0, 0); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("got %v, want ErrLengthMismatch", err)
	}
}

// pRecord builds an ENZ record of a P pulse from the north with the given
// true incidence angle, so that Q vanishes at that angle.
func pRecord(inc float64) seis.Record {
	const n = 400
	p := make([]float64, n)
	for i := range p {
		d := float64(i-200) * 0.1
		p[i] = math.Exp(-d * d)
	}
	s, c := math.Sincos(inc * math.Pi / 180)
	z := make([]float64, n)
	north := make([]float64, n)
	for i := range p {
		z[i] = p[i] * c
		north[i] = -p[i] * s
	}
	return seis.Record{
		Frame:   seis.FrameENZ,
		Baz:     0,
		Arrival: 20,
		Traces: [3]seis.Trace{
			{Channel: "E", Delta: 0.1, Data: make([]float64, n)},
			{Channel: "N", Delta: 0.1, Data: north},
			{Channel: "Z", Delta: 0.1, Data: z},
		},
	}
}

func TestRecordRTZ(t *testing.T) {
	rec := pRecord(30)
	out, err := Record(rec, Options{Frame: seis.FrameRTZ, Phase: "P"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Frame != seis.FrameRTZ {
		t.Fatalf("frame = %s", out.Frame)
	}
	r := out.MustTrace('R')
	if r.Channel != "R" || math.Abs(r.Data[200]-0.5) > 1e-12 {
		t.Errorf("R peak = %g (channel %q), want 0.5", r.Data[200], r.Channel)
	}
	if rec.Frame != seis.FrameENZ {
		t.Error("input record was modified")
	}
}

func TestRecordSearchIncidence(t *testing.T) {
	rec := pRecord(30)
	rec.Incidence = 25

	s := DefaultSearch()
	s.Enabled = true
	out, err := Record(rec, Options{Frame: seis.FrameLQT, Phase: "P", Search: s})
	if err != nil {
		t.Fatal(err)
	}
	if out.Incidence != 30 || out.IncidenceCorrection != 5 {
		t.Fatalf("incidence %g (corr %g), want 30 (5)", out.Incidence, out.IncidenceCorrection)
	}
	q := out.MustTrace('Q')
	if peak := testutil.MaxAbs(q.Data); peak > 1e-12 {
		t.Errorf("Q energy left: %g", peak)
	}
	l := out.MustTrace('L')
	if math.Abs(l.Data[200]-1) > 1e-12 {
		t.Errorf("L peak = %g, want 1", l.Data[200])
	}
}

func TestRecordWithoutIncidenceSearchesFullRange(t *testing.T) {
	rec := pRecord(72)
	out, err := Record(rec, Options{Frame: seis.FrameLQT, Phase: "P", Search: DefaultSearch()})
	if err != nil {
		t.Fatal(err)
	}
	if out.Incidence != 72 {
		t.Fatalf("incidence %g, want 72", out.Incidence)
	}
}

func TestSearchIncidenceTieKeepsSmallestCorrection(t *testing.T) {
	// All-zero data has equal energy everywhere.
	best, corr := SearchIncidence(make([]float64, 8), make([]float64, 8), 40, "P", DefaultSearch())
	if best != 40 || corr != 0 {
		t.Fatalf("got %g (%g), want 40 (0)", best, corr)
	}
}

func TestRecordRejectsInvalid(t *testing.T) {
	rec := pRecord(30)
	if _, err := Record(rec, Options{Frame: "ZNE"}); !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("got %v, want ErrInvalidFrame", err)
	}
	rec.Frame = seis.FrameRTZ
	if _, err := Record(rec, Options{Frame: seis.FrameRTZ}); !errors.Is(err, ErrWrongFrame) {
		t.Errorf("got %v, want ErrWrongFrame", err)
	}
}
