package decon

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/AlbertSeismo/RFs-Seispy/dsp/conv"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

var (
	// ErrLengthMismatch indicates numerator and denominator are not sample
	// aligned.
	ErrLengthMismatch = errors.New("decon: numerator and denominator are not aligned")
	// ErrZeroEnergy indicates an all-zero input component.
	ErrZeroEnergy = errors.New("decon: zero-energy input")
	// ErrDiverged indicates a non-finite value in the result.
	ErrDiverged = errors.New("decon: numerical divergence")
	// ErrInvalidParams indicates unusable deconvolution parameters.
	ErrInvalidParams = errors.New("decon: invalid parameters")
	// ErrUnknownMethod indicates an unrecognised method name.
	ErrUnknownMethod = errors.New("decon: unknown method")
)

// Method selects a deconvolution algorithm.
type Method string

const (
	MethodIterative  Method = "iter"
	MethodWaterLevel Method = "water"
)

// ParseMethod accepts "iter", "iterative", "water" and "water-level".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "iter", "iterative":
		return MethodIterative, nil
	case "water", "water-level", "waterlevel":
		return MethodWaterLevel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Params holds the numeric settings shared by both methods.
type Params struct {
	Gauss       float64 // Gaussian width f0
	Shift       float64 // seconds of data before zero lag
	ItMax       int     // iterative: maximum number of spikes
	MinDeltaErr float64 // iterative: stop when misfit improves less, percent
	WaterLevel  float64 // water-level: fraction of the peak power
	Acausal     bool    // iterative: also fit spikes before zero lag
}

// DefaultParams returns the usual settings for P receiver functions.
func DefaultParams() Params {
	return Params{
		Gauss:       2,
		Shift:       10,
		ItMax:       400,
		MinDeltaErr: 0.001,
		WaterLevel:  0.03,
	}
}

func (p Params) validate(m Method, dt float64) error {
	if !(dt > 0) {
		return fmt.Errorf("%w: sampling interval %g", ErrInvalidParams, dt)
	}
	if !(p.Gauss > 0) {
		return fmt.Errorf("%w: gauss %g", ErrInvalidParams, p.Gauss)
	}
	if p.Shift < 0 || math.IsNaN(p.Shift) {
		return fmt.Errorf("%w: shift %g", ErrInvalidParams, p.Shift)
	}
	switch m {
	case MethodIterative:
		if p.ItMax <= 0 {
			return fmt.Errorf("%w: itmax %d", ErrInvalidParams, p.ItMax)
		}
		if p.MinDeltaErr < 0 {
			return fmt.Errorf("%w: minderr %g", ErrInvalidParams, p.MinDeltaErr)
		}
	case MethodWaterLevel:
		if p.WaterLevel < 0 || p.WaterLevel >= 1 {
			return fmt.Errorf("%w: water level %g", ErrInvalidParams, p.WaterLevel)
		}
	}
	return nil
}

// Result is the output of a single deconvolution.
type Result struct {
	RF         []float64 // zero lag at sample round(Shift/dt)
	RMS        []float64 // normalized residual energy, one per iteration
	Iterations int
}

// ReceiverFunction is a deconvolved trace with its run metadata.
type ReceiverFunction struct {
	Trace      seis.Trace `msgpack:"trace"` // Begin is -Shift
	Phase      string     `msgpack:"phase"`
	Method     Method     `msgpack:"method"`
	Gauss      float64    `msgpack:"gauss"`
	Shift      float64    `msgpack:"shift"`
	RMS        []float64  `msgpack:"rms"`
	Iterations int        `msgpack:"iterations"`
	Accepted   bool       `msgpack:"accepted"`
}

// FinalRMS returns the last convergence value (NaN when empty).
func (rf ReceiverFunction) FinalRMS() float64 {
	if len(rf.RMS) == 0 {
		return math.NaN()
	}
	return rf.RMS[len(rf.RMS)-1]
}

// Deconvolve runs method m on numerator u and denominator w, which must
// share sampling interval and length.
func Deconvolve(m Method, u, w seis.Trace, p Params) (ReceiverFunction, error) {
	if u.Len() != w.Len() || u.Delta != w.Delta {
		return ReceiverFunction{}, fmt.Errorf("%w: %s %d@%gs vs %s %d@%gs",
			ErrLengthMismatch, u.Channel, u.Len(), u.Delta, w.Channel, w.Len(), w.Delta)
	}

	var (
		res Result
		err error
	)
	switch m {
	case MethodIterative:
		res, err = Iterative(u.Data, w.Data, u.Delta, p)
	case MethodWaterLevel:
		res, err = WaterLevel(u.Data, w.Data, u.Delta, p)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	if err != nil {
		return ReceiverFunction{}, err
	}

	tr := u.WithData(res.RF)
	tr.Begin = -p.Shift
	return ReceiverFunction{
		Trace:      tr,
		Method:     m,
		Gauss:      p.Gauss,
		Shift:      p.Shift,
		RMS:        res.RMS,
		Iterations: res.Iterations,
	}, nil
}

// GaussFilter returns the zero-phase Gaussian response of unit DC gain for
// an nfft-point transform at interval dt. Bins above nfft/2 mirror the
// positive frequencies.
func GaussFilter(dt float64, nfft int, f0 float64) []float64 {
	g := make([]float64, nfft)
	df := 1 / (float64(nfft) * dt)
	half := nfft/2 + 1
	for i := 0; i < half && i < nfft; i++ {
		w := 2 * math.Pi * float64(i) * df / f0
		g[i] = math.Exp(-0.25 * w * w)
	}
	for i := half; i < nfft; i++ {
		g[i] = g[nfft-i]
	}
	return g
}

// ApplyGauss low-passes x with the Gaussian of width f0, returning the
// first len(x) samples of the circular result.
func ApplyGauss(x []float64, dt, f0 float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, conv.ErrEmptyInput
	}
	nfft := conv.NextPowerOf2(len(x))
	f, err := conv.NewFFT(nfft)
	if err != nil {
		return nil, err
	}
	y, err := f.FilterReal(x, GaussFilter(dt, nfft, f0), 1)
	if err != nil {
		return nil, err
	}
	return y[:len(x)], nil
}

func shiftSamples(shift, dt float64) int {
	return int(math.Round(shift / dt))
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
