package rotate

import (
	"fmt"
	"math"

	"github.com/AlbertSeismo/RFs-Seispy/seis"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

// Search configures the incidence-angle search for LQT rotation.
type Search struct {
	Enabled bool    // search even when the record carries an incidence angle
	Range   float64 // degrees either side of the initial angle
	Step    float64 // degrees
	Before  float64 // window start, seconds before the arrival
	After   float64 // window end, seconds after the arrival
}

// DefaultSearch returns the default incidence search settings.
func DefaultSearch() Search {
	return Search{Range: 20, Step: 1, Before: 2, After: 10}
}

// Options selects the target frame for Record.
type Options struct {
	Frame  seis.Frame
	Phase  string // "P" or "S"
	Search Search
}

// Record rotates an ENZ record into opt.Frame using the record's back
// azimuth and returns the rotated copy. For LQT without an incidence angle
// on the record, the full [0, 90] degree range is searched.
func Record(r seis.Record, opt Options) (seis.Record, error) {
	if r.Frame != seis.FrameENZ {
		return seis.Record{}, fmt.Errorf("%w: want %s, got %s", ErrWrongFrame, seis.FrameENZ, r.Frame)
	}
	if err := r.Validate(); err != nil {
		return seis.Record{}, err
	}

	e := r.MustTrace('E')
	n := r.MustTrace('N')
	z := r.MustTrace('Z')

	rd, td, err := NE2RT(e.Data, n.Data, r.Baz)
	if err != nil {
		return seis.Record{}, err
	}

	switch opt.Frame {
	case seis.FrameRTZ:
		return r.WithFrame(seis.FrameRTZ, [3]seis.Trace{e.WithData(rd), e.WithData(td), z.Clone()}), nil
	case seis.FrameLQT:
	default:
		return seis.Record{}, fmt.Errorf("%w: %q", ErrInvalidFrame, opt.Frame)
	}

	out := r
	inc := r.Incidence
	s := opt.Search
	if !(inc > 0) {
		inc, s.Range, s.Enabled = 45, 45, true
	}
	if s.Enabled {
		zw := z.Window(r.Arrival-s.Before, r.Arrival+s.After)
		rw := e.WithData(rd).Window(r.Arrival-s.Before, r.Arrival+s.After)
		best, corr := SearchIncidence(zw, rw, inc, opt.Phase, s)
		out.Incidence = best
		out.IncidenceCorrection = corr
		inc = best
	}

	ld, qd := zr2lq(z.Data, rd, inc)
	return out.WithFrame(seis.FrameLQT, [3]seis.Trace{z.WithData(ld), z.WithData(qd), e.WithData(td)}), nil
}

// SearchIncidence tries inc0 + k*Step for |k*Step| <= Range, clamped to
// [0, 90] degrees, and returns the angle minimising energy on Q (phase P) or
// L (phase S) together with its offset from inc0. Equal energies resolve to
// the smallest absolute offset.
func SearchIncidence(z, r []float64, inc0 float64, phase string, s Search) (best, correction float64) {
	step := s.Step
	if !(step > 0) {
		step = 1
	}
	k := int(math.Floor(s.Range/step + 1e-9))

	best, correction = inc0, 0
	minEnergy := math.Inf(1)
	try := func(off float64) {
		inc := inc0 + off
		if inc < 0 || inc > 90 {
			return
		}
		l, q := zr2lq(z, r, inc)
		target := q
		if phase == "S" {
			target = l
		}
		if en := stime.Energy(target); en < minEnergy {
			minEnergy = en
			best, correction = inc, off
		}
	}

	try(0)
	for i := 1; i <= k; i++ {
		try(-float64(i) * step)
		try(float64(i) * step)
	}
	return best, correction
}
