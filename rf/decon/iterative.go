package decon

import (
	"fmt"
	"math"

	"github.com/AlbertSeismo/RFs-Seispy/dsp/conv"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

// Iterative deconvolves w from u by iterative time-domain spike fitting.
// u and w must have equal length; the result has that length too.
// Spikes are fitted at non-negative lags unless p.Acausal is set.
func Iterative(u, w []float64, dt float64, p Params) (Result, error) {
	if len(u) != len(w) {
		return Result{}, fmt.Errorf("%w: %d vs %d samples", ErrLengthMismatch, len(u), len(w))
	}
	if len(u) == 0 {
		return Result{}, fmt.Errorf("%w: empty input", ErrZeroEnergy)
	}
	if err := p.validate(MethodIterative, dt); err != nil {
		return Result{}, err
	}

	nt := len(u)
	nfft := conv.NextPowerOf2(nt)
	f, err := conv.NewFFT(nfft)
	if err != nil {
		return Result{}, err
	}
	gauss := GaussFilter(dt, nfft, p.Gauss)

	uf, err := f.FilterReal(u, gauss, 1)
	if err != nil {
		return Result{}, err
	}
	wf, err := f.FilterReal(w, gauss, 1)
	if err != nil {
		return Result{}, err
	}

	powerU := stime.Energy(uf)
	powerW := stime.Energy(wf)
	if powerU == 0 || powerW == 0 {
		return Result{}, fmt.Errorf("%w: numerator %g, denominator %g", ErrZeroEnergy, powerU, powerW)
	}

	spikes := make([]float64, nfft)
	pred := make([]float64, nfft)
	resid := make([]float64, nfft)
	copy(resid, uf)

	// Lags past nfft/2 wrap around to negative time and are searched only
	// for acausal runs.
	maxLag := max(nfft/2-1, 1)
	if p.Acausal {
		maxLag = nfft
	}

	rms := make([]float64, 0, p.ItMax)
	prev := 1.0
	dErr := 100*powerU + p.MinDeltaErr
	it := 0
	for math.Abs(dErr) > p.MinDeltaErr && it < p.ItMax {
		corr, err := f.Correlate(resid, wf)
		if err != nil {
			return Result{}, err
		}

		i1 := stime.ArgPeak(corr[:maxLag])
		amp := corr[i1] / powerW
		spikes[i1] += amp / dt

		// The spike's prediction is the filtered reference moved to lag i1.
		for k := range pred {
			pred[(k+i1)%nfft] += amp * wf[k]
		}
		for k := range resid {
			resid[k] = uf[k] - pred[k]
		}

		sumsq := stime.Energy(resid) / powerU
		if math.IsNaN(sumsq) || math.IsInf(sumsq, 0) {
			return Result{}, fmt.Errorf("%w: misfit %g at iteration %d", ErrDiverged, sumsq, it+1)
		}
		rms = append(rms, sumsq)
		dErr = 100 * (prev - sumsq)
		prev = sumsq
		it++
	}

	rf, err := f.FilterReal(spikes, gauss, 1)
	if err != nil {
		return Result{}, err
	}
	conv.Shift(rf, shiftSamples(p.Shift, dt))
	rf = rf[:nt]
	if !allFinite(rf) {
		return Result{}, fmt.Errorf("%w: non-finite receiver function", ErrDiverged)
	}

	return Result{RF: rf, RMS: rms, Iterations: it}, nil
}
