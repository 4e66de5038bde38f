package decon

import (
	"fmt"

	"github.com/AlbertSeismo/RFs-Seispy/dsp/conv"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

// SpectralDivide returns uf * conj(wf) / max(|wf|^2, wlevel * max|wf|^2).
// With wlevel 0 an exactly zero bin of wf produces a non-finite value.
func SpectralDivide(uf, wf []complex128, wlevel float64) ([]complex128, error) {
	if len(uf) != len(wf) {
		return nil, fmt.Errorf("%w: spectra %d vs %d", ErrLengthMismatch, len(uf), len(wf))
	}

	denom := make([]float64, len(wf))
	peak := 0.0
	for i, v := range wf {
		denom[i] = real(v)*real(v) + imag(v)*imag(v)
		peak = max(peak, denom[i])
	}
	floor := wlevel * peak
	out := make([]complex128, len(uf))
	for i := range uf {
		d := max(denom[i], floor)
		out[i] = uf[i] * complex(real(wf[i]), -imag(wf[i])) * complex(1/d, 0)
	}
	return out, nil
}

// WaterLevel deconvolves w from u in the frequency domain with the
// reference power floored at p.WaterLevel times its peak. The single
// convergence value is the normalized residual energy of the Gaussian
// filtered numerator against the prediction.
func WaterLevel(u, w []float64, dt float64, p Params) (Result, error) {
	if len(u) != len(w) {
		return Result{}, fmt.Errorf("%w: %d vs %d samples", ErrLengthMismatch, len(u), len(w))
	}
	if len(u) == 0 {
		return Result{}, fmt.Errorf("%w: empty input", ErrZeroEnergy)
	}
	if err := p.validate(MethodWaterLevel, dt); err != nil {
		return Result{}, err
	}
	if stime.Energy(u) == 0 || stime.Energy(w) == 0 {
		return Result{}, fmt.Errorf("%w: all-zero component", ErrZeroEnergy)
	}

	nt := len(u)
	nfft := conv.NextPowerOf2(nt)
	f, err := conv.NewFFT(nfft)
	if err != nil {
		return Result{}, err
	}
	gauss := GaussFilter(dt, nfft, p.Gauss)

	uspec, err := f.Forward(u)
	if err != nil {
		return Result{}, err
	}
	wspec, err := f.Forward(w)
	if err != nil {
		return Result{}, err
	}
	ratio, err := SpectralDivide(uspec, wspec, p.WaterLevel)
	if err != nil {
		return Result{}, err
	}

	rspec := make([]complex128, nfft)
	pspec := make([]complex128, nfft)
	for i := range ratio {
		rspec[i] = ratio[i] * complex(gauss[i]/dt, 0)
		pspec[i] = ratio[i] * wspec[i] * complex(gauss[i], 0)
	}
	rf, err := f.InverseReal(rspec)
	if err != nil {
		return Result{}, err
	}
	if !allFinite(rf) {
		return Result{}, fmt.Errorf("%w: non-finite spectral ratio", ErrDiverged)
	}

	pred, err := f.InverseReal(pspec)
	if err != nil {
		return Result{}, err
	}
	ug, err := f.FilterReal(u, gauss, 1)
	if err != nil {
		return Result{}, err
	}
	powerU := stime.Energy(ug)
	if powerU == 0 {
		return Result{}, fmt.Errorf("%w: filtered numerator", ErrZeroEnergy)
	}
	for i := range pred {
		pred[i] = ug[i] - pred[i]
	}
	misfit := stime.Energy(pred) / powerU

	conv.Shift(rf, shiftSamples(p.Shift, dt))
	return Result{RF: rf[:nt], RMS: []float64{misfit}, Iterations: 1}, nil
}
