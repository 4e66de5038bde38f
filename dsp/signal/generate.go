// Package signal generates deterministic synthetic seismograms: source
// pulses, spike trains and noise on a fixed sampling interval.
package signal

import (
	"fmt"
	"math"
	"math/rand"
)

// Generator creates deterministic signals on a fixed sampling interval.
type Generator struct {
	dt   float64
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator for sampling interval dt seconds.
func NewGenerator(dt float64, opts ...Option) *Generator {
	g := &Generator{dt: dt, seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func (g *Generator) check(kind string, samples int) error {
	if samples <= 0 {
		return fmt.Errorf("%s samples must be > 0: %d", kind, samples)
	}
	if g.dt <= 0 {
		return fmt.Errorf("%s sampling interval must be > 0: %f", kind, g.dt)
	}
	return nil
}

// Ricker generates a Ricker (Mexican hat) wavelet with peak frequency f0 Hz
// centred at t0 seconds.
func (g *Generator) Ricker(f0, t0 float64, samples int) ([]float64, error) {
	if err := g.check("ricker", samples); err != nil {
		return nil, err
	}
	out := make([]float64, samples)
	for i := range out {
		a := math.Pi * f0 * (float64(i)*g.dt - t0)
		a *= a
		out[i] = (1 - 2*a) * math.Exp(-a)
	}
	return out, nil
}

// Gaussian generates exp(-((t-t0)/width)^2) with unit peak.
func (g *Generator) Gaussian(width, t0 float64, samples int) ([]float64, error) {
	if err := g.check("gaussian", samples); err != nil {
		return nil, err
	}
	if width <= 0 {
		return nil, fmt.Errorf("gaussian width must be > 0: %f", width)
	}
	out := make([]float64, samples)
	for i := range out {
		d := (float64(i)*g.dt - t0) / width
		out[i] = math.Exp(-d * d)
	}
	return out, nil
}

// Spikes places amplitudes amps at times (seconds, rounded to the nearest
// sample). Spikes outside the trace are ignored; coincident spikes add.
func (g *Generator) Spikes(times, amps []float64, samples int) ([]float64, error) {
	if err := g.check("spike", samples); err != nil {
		return nil, err
	}
	if len(times) != len(amps) {
		return nil, fmt.Errorf("spike times and amplitudes differ: %d vs %d", len(times), len(amps))
	}
	out := make([]float64, samples)
	for k, t := range times {
		i := int(math.Round(t / g.dt))
		if i >= 0 && i < samples {
			out[i] += amps[k]
		}
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if err := g.check("noise", samples); err != nil {
		return nil, err
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}
