package testutil

import "math"

// Split is a single anisotropic layer with a fast axis (degrees) and a
// delay time (seconds) between the fast and slow shear waves.
type Split struct {
	Fast  float64
	Delay float64
}

// Amplitudes returns the radial and transverse weights of the fast (early)
// and slow (late) arrivals of a unit radial wave from back azimuth baz.
func (s Split) Amplitudes(baz float64) (rFast, rSlow, tFast, tSlow float64) {
	sin, cos := math.Sincos((s.Fast - baz) * math.Pi / 180)
	return cos * cos, sin * sin, sin * cos, -sin * cos
}

// Traces samples the split radial and transverse response to pulse p
// centred at t0, on times begin + i*dt. The fast arrival leads t0 by half
// the delay and the slow one lags it by the same amount.
func (s Split) Traces(baz, t0 float64, p func(float64) float64, begin, dt float64, n int) (r, t []float64) {
	rf, rs, tf, ts := s.Amplitudes(baz)
	r = make([]float64, n)
	t = make([]float64, n)
	for i := range r {
		tm := begin + float64(i)*dt - t0
		early := p(tm + s.Delay/2)
		late := p(tm - s.Delay/2)
		r[i] = rf*early + rs*late
		t[i] = tf*early + ts*late
	}
	return r, t
}

// GaussianPulse returns exp(-(t/width)^2).
func GaussianPulse(width float64) func(float64) float64 {
	return func(t float64) float64 {
		d := t / width
		return math.Exp(-d * d)
	}
}
