package ani

import (
	"fmt"
	"math"

	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

// Estimator evaluates energy surfaces of a stack over a grid.
type Estimator struct {
	stack  *AzimuthStack
	grid   Grid
	bins   []Bin
	nb, ne int
}

// NewEstimator analyses samples from tb to te seconds after zero lag.
func NewEstimator(s *AzimuthStack, g Grid, tb, te float64) (*Estimator, error) {
	if s == nil || s.Total() == 0 {
		return nil, ErrNoData
	}
	if len(g.Fast) == 0 || len(g.Delay) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidParams)
	}
	nb := int(math.Round((tb + s.Shift) / s.Delta))
	ne := int(math.Round((te + s.Shift) / s.Delta))
	if nb < 0 || ne > s.Len || nb >= ne {
		return nil, fmt.Errorf("%w: window [%g, %g] s maps to samples [%d, %d) of %d",
			ErrInvalidParams, tb, te, nb, ne, s.Len)
	}
	return &Estimator{stack: s, grid: g, bins: s.occupied(), nb: nb, ne: ne}, nil
}

// Grid returns the estimator's grid.
func (e *Estimator) Grid() Grid { return e.grid }

func at(x []float64, i int) float64 {
	if i < 0 || i >= len(x) {
		return 0
	}
	return x[i]
}

func sincosd(deg float64) (float64, float64) {
	return math.Sincos(deg * math.Pi / 180)
}

// RadialEnergy returns the squared peak of the move-out corrected radial
// stack, relative to the uncorrected one, normalized to its maximum.
func (e *Estimator) RadialEnergy() [][]float64 {
	dt := e.stack.Delta
	w := e.ne - e.nb

	ref := make([]float64, w)
	for _, b := range e.bins {
		for t := range ref {
			ref[t] += b.R[e.nb+t]
		}
	}
	refPeak := stime.Peak(ref)
	refPeak *= refPeak

	out := e.grid.surface()
	sum := make([]float64, w)
	for i, d := range e.grid.Delay {
		for j, f := range e.grid.Fast {
			clear(sum)
			for _, b := range e.bins {
				shift := int(math.Round(d / 2 * math.Cos(2*(f-b.Baz)*math.Pi/180) / dt))
				for t := range sum {
					sum[t] += at(b.R, e.nb+t-shift)
				}
			}
			p := stime.Peak(sum)
			out[i][j] = p * p
			if refPeak > 0 {
				out[i][j] /= refPeak
			}
		}
	}
	normalize(out)
	return out
}

// correct splits one bin into fast and slow components for the given fast
// axis, advances the slow one by delay and rotates back. It writes the
// window [nb, ne) into r and t.
func (e *Estimator) correct(b Bin, fast float64, shift int, r, t []float64) {
	s, c := sincosd(fast - b.Baz)
	for k := range r {
		i := e.nb + k
		fs := at(b.R, i-shift)*c + at(b.T, i-shift)*s
		sl := -at(b.R, i+shift)*s + at(b.T, i+shift)*c
		r[k] = fs*c - sl*s
		t[k] = fs*s + sl*c
	}
}

// FastSlowEnergy returns the radial coherence and transverse energy
// surfaces of the fast/slow corrected stacks, each normalized to its
// maximum.
func (e *Estimator) FastSlowEnergy() (cc, tc [][]float64) {
	dt := e.stack.Delta
	w := e.ne - e.nb

	sum := make([]float64, w)
	sumSq := make([]float64, w)
	rawT := 0.0
	for _, b := range e.bins {
		for k := range sum {
			v := b.R[e.nb+k]
			sum[k] += v
			sumSq[k] += v * v
		}
		rawT += stime.Energy(b.T[e.nb:e.ne])
	}
	rawR := coherence(sum, sumSq)

	cc = e.grid.surface()
	tc = e.grid.surface()
	r := make([]float64, w)
	t := make([]float64, w)
	for i, d := range e.grid.Delay {
		shift := int(math.Round(d / 2 / dt))
		for j, f := range e.grid.Fast {
			clear(sum)
			clear(sumSq)
			et := 0.0
			for _, b := range e.bins {
				e.correct(b, f, shift, r, t)
				for k, v := range r {
					sum[k] += v
					sumSq[k] += v * v
				}
				et += stime.Energy(t)
			}
			cc[i][j] = coherence(sum, sumSq)
			if rawR != 0 {
				cc[i][j] /= rawR
			}
			tc[i][j] = et
			if rawT > 0 {
				tc[i][j] /= rawT
			}
		}
	}
	normalize(cc)
	normalize(tc)
	return cc, tc
}

func coherence(sum, sumSq []float64) float64 {
	c := 0.0
	for k, v := range sum {
		c += v*v - sumSq[k]
	}
	return c
}

// Corrected returns the window of every occupied bin's radial and
// transverse stack after correction for one parameter pair, with the bin
// back azimuths.
func (e *Estimator) Corrected(fast, delay float64) (baz []float64, r, t [][]float64) {
	shift := int(math.Round(delay / 2 / e.stack.Delta))
	for _, b := range e.bins {
		br := make([]float64, e.ne-e.nb)
		bt := make([]float64, e.ne-e.nb)
		e.correct(b, fast, shift, br, bt)
		baz = append(baz, b.Baz)
		r = append(r, br)
		t = append(t, bt)
	}
	return baz, r, t
}
