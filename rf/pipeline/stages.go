package pipeline

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/AlbertSeismo/RFs-Seispy/rf/decon"
	"github.com/AlbertSeismo/RFs-Seispy/rf/rotate"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

func (r *Runner) preprocess(it item) (item, error) {
	rec := it.rec
	if err := rec.Validate(); err != nil {
		return it, err
	}
	pp := r.cfg.Preprocess
	if pp.SwitchEN || pp.ReverseE || pp.ReverseN {
		var err error
		if rec, err = seis.ChannelCorrect(rec, pp.ChannelFix); err != nil {
			return it, err
		}
	}
	rec, err := rec.MapTraces(func(t seis.Trace) (seis.Trace, error) {
		t = seis.Detrend(t)
		if pp.Taper > 0 {
			var err error
			if t, err = seis.Taper(t, pp.Taper); err != nil {
				return seis.Trace{}, err
			}
		}
		if pp.FreqMax > 0 {
			return seis.Bandpass(t, pp.FreqMin, pp.FreqMax, pp.Order)
		}
		return t, nil
	})
	if err != nil {
		return it, err
	}
	it.rec = rec
	return it, nil
}

// snr compares noiselen seconds after the arrival with the same length
// before it, averaged in dB over the three components.
func (r *Runner) snr(it item) (item, error) {
	n := r.cfg.SNR.NoiseLen
	arr := it.rec.Arrival
	sum := 0.0
	for _, t := range it.rec.Traces {
		sum += stime.SNR(t.Window(arr, arr+n), t.Window(arr-n, arr))
	}
	mean := sum / float64(len(it.rec.Traces))
	if !(mean >= r.cfg.SNR.NoiseGate) {
		return it, rejectf("SNR %.2f dB below %g dB", mean, r.cfg.SNR.NoiseGate)
	}
	return it, nil
}

func (r *Runner) rotate(it item) (item, error) {
	rec, err := rotate.Record(it.rec, r.cfg.RotateOptions())
	if err != nil {
		return it, err
	}
	if rec.IncidenceCorrection != 0 {
		r.log.Debug("incidence corrected",
			zap.String("event", rec.ID()),
			zap.Float64("incidence", rec.Incidence),
			zap.Float64("correction", rec.IncidenceCorrection))
	}
	it.rec = rec
	return it, nil
}

// trim resamples to the target interval and cuts time_before seconds before
// to time_after seconds after the arrival.
func (r *Runner) trim(it item) (item, error) {
	dt := r.cfg.Decon.TargetDt
	start := it.rec.Arrival - r.cfg.Decon.TimeBefore
	end := it.rec.Arrival + r.cfg.Decon.TimeAfter
	rec, err := it.rec.MapTraces(func(t seis.Trace) (seis.Trace, error) {
		if math.Abs(t.Delta-dt) > 1e-9*dt {
			var err error
			if t, err = seis.Resample(t, dt); err != nil {
				return seis.Trace{}, err
			}
		}
		return seis.Trim(t, start, end)
	})
	if err != nil {
		return it, err
	}
	it.rec = rec
	return it, nil
}

func (r *Runner) deconvolve(it item) (item, error) {
	rfs, err := decon.Record(it.rec, r.deconOpt)
	if err != nil {
		return it, err
	}
	rf := rfs[0]
	switch rf.Method {
	case decon.MethodIterative:
		r.log.Info("iterative decon",
			zap.String("event", it.rec.ID()),
			zap.Int("iterations", rf.Iterations),
			zap.Float64("rms", rf.FinalRMS()))
	default:
		r.log.Info("water level decon",
			zap.String("event", it.rec.ID()),
			zap.Float64("rms", rf.FinalRMS()))
	}
	it.rfs = rfs
	return it, nil
}

// judge applies the quality gate to the first receiver function and marks
// all of the record's receiver functions accepted when it passes.
func (r *Runner) judge(it item) (item, error) {
	v := r.gate.Judge(it.rfs[0])
	if !v.Accepted {
		return it, rejectf("%s", v.Cause)
	}
	rfs := slices.Clone(it.rfs)
	for i := range rfs {
		rfs[i].Accepted = true
	}
	it.rfs = rfs
	return it, nil
}
