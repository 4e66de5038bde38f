package ani

import (
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Weights are the exponents of the joint score.
type Weights struct {
	R  float64 `msgpack:"r" yaml:"r"`
	CC float64 `msgpack:"cc" yaml:"cc"`
	TC float64 `msgpack:"tc" yaml:"tc"`
}

// DefaultWeights returns 0.4, 0.3, 0.3.
func DefaultWeights() Weights {
	return Weights{R: 0.4, CC: 0.3, TC: 0.3}
}

// tieTolerance is the relative distance from the maximum within which grid
// points count as tied.
const tieTolerance = 1e-9

// JointStack normalizes the three surfaces to their maxima and combines
// them. Points where the radial or coherence energy is not positive score
// zero; zero transverse energy is floored at the smallest positive float.
func JointStack(er, ecc, etc [][]float64, w Weights) ([][]float64, error) {
	if len(er) != len(ecc) || len(er) != len(etc) {
		return nil, fmt.Errorf("%w: surfaces have %d/%d/%d rows", ErrLengthMismatch, len(er), len(ecc), len(etc))
	}
	r, cc, tc := clone(er), clone(ecc), clone(etc)
	normalize(r)
	normalize(cc)
	normalize(tc)

	out := make([][]float64, len(r))
	for i := range r {
		if len(r[i]) != len(cc[i]) || len(r[i]) != len(tc[i]) {
			return nil, fmt.Errorf("%w: row %d", ErrLengthMismatch, i)
		}
		out[i] = make([]float64, len(r[i]))
		for j := range r[i] {
			if !(r[i][j] > 0) || !(cc[i][j] > 0) {
				continue
			}
			t := max(tc[i][j], math.SmallestNonzeroFloat64)
			out[i][j] = math.Exp(w.R*math.Log(r[i][j]) + w.CC*math.Log(cc[i][j]) - w.TC*math.Log(t))
		}
	}
	return out, nil
}

func clone(s [][]float64) [][]float64 {
	out := make([][]float64, len(s))
	for i, row := range s {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// AnisotropyGrid holds the surfaces of one estimate, indexed [delay][fast],
// and the best-fit points.
type AnisotropyGrid struct {
	Grid       Grid        `msgpack:"grid"`
	Weights    Weights     `msgpack:"weights"`
	Radial     [][]float64 `msgpack:"radial"`
	CrossCorr  [][]float64 `msgpack:"cross_corr"`
	Transverse [][]float64 `msgpack:"transverse"`
	Joint      [][]float64 `msgpack:"joint"`
	Best       []Point     `msgpack:"best"`
}

// Joint computes all surfaces and the best-fit points.
func (e *Estimator) Joint(w Weights) (*AnisotropyGrid, error) {
	er := e.RadialEnergy()
	ecc, etc := e.FastSlowEnergy()
	joint, err := JointStack(er, ecc, etc, w)
	if err != nil {
		return nil, err
	}
	best := e.grid.Peaks(joint)
	if len(best) == 0 {
		return nil, fmt.Errorf("%w: joint surface has no positive value", ErrNoData)
	}
	return &AnisotropyGrid{
		Grid:       e.grid,
		Weights:    w,
		Radial:     er,
		CrossCorr:  ecc,
		Transverse: etc,
		Joint:      joint,
		Best:       best,
	}, nil
}

// Peaks returns every grid point of s within a relative tieTolerance of
// its positive maximum, in [delay][fast] order.
func (g Grid) Peaks(s [][]float64) []Point {
	peak := 0.0
	for _, row := range s {
		for _, v := range row {
			if !math.IsNaN(v) {
				peak = max(peak, v)
			}
		}
	}
	if !(peak > 0) {
		return nil
	}
	var out []Point
	for i, row := range s {
		for j, v := range row {
			if v >= peak*(1-tieTolerance) {
				out = append(out, Point{Fast: g.Fast[j], Delay: g.Delay[i]})
			}
		}
	}
	return out
}

// Encode writes the grid as MessagePack.
func (a *AnisotropyGrid) Encode(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(a)
}

// Decode reads a grid written by Encode.
func Decode(r io.Reader) (*AnisotropyGrid, error) {
	var a AnisotropyGrid
	if err := msgpack.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("ani: decode grid: %w", err)
	}
	return &a, nil
}
