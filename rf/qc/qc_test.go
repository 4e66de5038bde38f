package qc

import (
	"errors"
	"math"
	"testing"

	"github.com/AlbertSeismo/RFs-Seispy/rf/decon"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

const dt = 0.1

// rfWith builds a 60 s receiver function with zero lag at 10 s and the given
// samples set.
func rfWith(rms float64, samples map[float64]float64) decon.ReceiverFunction {
	data := make([]float64, 601)
	for tm, v := range samples {
		data[int(math.Round((tm+10)/dt))] = v
	}
	return decon.ReceiverFunction{
		Trace: seis.Trace{Channel: "R", Delta: dt, Begin: -10, Data: data},
		Shift: 10,
		RMS:   []float64{0.9, rms},
	}
}

func TestRMSCeilingBoundary(t *testing.T) {
	const ceiling = 0.25
	g := Gate{Criterion: CriterionNone, RMSCeiling: Ceiling(ceiling)}

	if v := g.Judge(rfWith(ceiling, map[float64]float64{0: 0.5})); !v.Accepted {
		t.Fatalf("rms equal to ceiling rejected: %s", v.Cause)
	}
	above := math.Nextafter(ceiling, math.Inf(1))
	if v := g.Judge(rfWith(above, map[float64]float64{0: 0.5})); v.Accepted {
		t.Fatal("rms just above ceiling accepted")
	}
	if v := g.Judge(rfWith(math.NaN(), map[float64]float64{0: 0.5})); v.Accepted {
		t.Fatal("NaN rms accepted")
	}
}

func TestNoCeiling(t *testing.T) {
	g := Gate{Criterion: CriterionNone}
	if v := g.Judge(rfWith(1e9, map[float64]float64{0: 0.5})); !v.Accepted {
		t.Fatalf("rejected without ceiling: %s", v.Cause)
	}
}

func TestCrust(t *testing.T) {
	g := Gate{Criterion: CriterionCrust}
	tests := []struct {
		name    string
		samples map[float64]float64
		want    bool
	}{
		{"direct at zero lag", map[float64]float64{0: 0.5, 4: 0.2, 8: -0.3}, true},
		{"direct slightly late", map[float64]float64{1.5: 0.5, 5: 0.1}, true},
		{"direct too late", map[float64]float64{2.5: 0.5}, false},
		{"later peak larger", map[float64]float64{0: 0.3, 6: 0.4}, false},
		{"negative peak larger", map[float64]float64{0: 0.3, 6: -0.4}, false},
		{"reversed polarity", map[float64]float64{0: -0.5}, false},
		{"unit amplitude", map[float64]float64{0: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.Judge(rfWith(0.1, tt.samples))
			if v.Accepted != tt.want {
				t.Fatalf("accepted = %v (%s), want %v", v.Accepted, v.Cause, tt.want)
			}
			if !v.Accepted && v.Cause == "" {
				t.Fatal("rejection without cause")
			}
		})
	}
}

func TestMTZ(t *testing.T) {
	g := Gate{Criterion: CriterionMTZ}
	tests := []struct {
		name    string
		samples map[float64]float64
		want    bool
	}{
		{"quiet late", map[float64]float64{0: 0.5, 35: 0.1}, true},
		{"direct within 5 s", map[float64]float64{4: 0.5}, true},
		{"loud late", map[float64]float64{0: 0.5, 35: -0.25}, false},
		{"late exactly at ratio", map[float64]float64{0: 0.5, 40: 0.2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := g.Judge(rfWith(0.1, tt.samples)); v.Accepted != tt.want {
				t.Fatalf("accepted = %v (%s), want %v", v.Accepted, v.Cause, tt.want)
			}
		})
	}
}

func TestExpectedLength(t *testing.T) {
	g := Gate{Criterion: CriterionNone, ExpectedLen: 401}
	if v := g.Judge(rfWith(0.1, map[float64]float64{0: 0.5})); v.Accepted {
		t.Fatal("wrong length accepted")
	}
	g.ExpectedLen = 601
	if v := g.Judge(rfWith(0.1, map[float64]float64{0: 0.5})); !v.Accepted {
		t.Fatalf("right length rejected: %s", v.Cause)
	}
}

func TestJudgeDoesNotMutate(t *testing.T) {
	rf := rfWith(0.5, map[float64]float64{0: 2})
	before := append([]float64(nil), rf.Trace.Data...)
	Gate{Criterion: CriterionCrust, RMSCeiling: Ceiling(0.1)}.Judge(rf)
	for i := range before {
		if rf.Trace.Data[i] != before[i] {
			t.Fatal("judge modified the trace")
		}
	}
	if rf.Accepted {
		t.Fatal("judge set the acceptance flag")
	}
}

func TestParseCriterion(t *testing.T) {
	for _, s := range []string{"crust", "MTZ", "none", ""} {
		if _, err := ParseCriterion(s); err != nil {
			t.Errorf("%q: %v", s, err)
		}
	}
	if _, err := ParseCriterion("moho"); !errors.Is(err, ErrUnknownCriterion) {
		t.Errorf("got %v", err)
	}
}
