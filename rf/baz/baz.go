package baz

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/AlbertSeismo/RFs-Seispy/rf/rotate"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

var (
	// ErrSearchRangeTooNarrow indicates that no record produced a defined
	// shift.
	ErrSearchRangeTooNarrow = errors.New("baz: search range too narrow, no record has a defined shift")
	// ErrLengthMismatch indicates a shift list that does not match the records.
	ErrLengthMismatch = errors.New("baz: shifts and records differ in length")
	// ErrInvalidSearch indicates unusable search settings.
	ErrInvalidSearch = errors.New("baz: invalid search settings")
)

// SearchOptions configures Search.
type SearchOptions struct {
	Range   int     // candidate shifts are the integers in [-Range, Range)
	Before  float64 // window start, seconds before the arrival
	After   float64 // window end, seconds after the arrival
	FreqMin float64 // band-pass applied to a copy of the horizontals, Hz
	FreqMax float64
	Order   int
}

// DefaultSearch returns the default search settings.
func DefaultSearch() SearchOptions {
	return SearchOptions{
		Range:   90,
		Before:  10,
		After:   20,
		FreqMin: 0.03,
		FreqMax: 0.5,
		Order:   2,
	}
}

// Shift is the per-record search outcome. Value is meaningful only when
// Defined; Reason says why it is not.
type Shift struct {
	Value   float64
	Defined bool
	Reason  string
}

func undefined(format string, args ...any) Shift {
	return Shift{Reason: fmt.Sprintf(format, args...)}
}

// ApplyOffset returns copies of recs with offset degrees added to every back
// azimuth, wrapped to [0, 360).
func ApplyOffset(recs []seis.Record, offset float64) []seis.Record {
	out := make([]seis.Record, len(recs))
	for i, r := range recs {
		r.Baz = wrap360(r.Baz + offset)
		r.BazCorrection += offset
		out[i] = r
	}
	return out
}

// Search finds the back-azimuth shift of an ENZ record. The result is
// undefined unless the normalized transverse RSSQ curve has exactly one
// interior local minimum.
func Search(r seis.Record, opt SearchOptions) (Shift, error) {
	if opt.Range <= 0 || opt.Before+opt.After <= 0 {
		return Shift{}, fmt.Errorf("%w: range %d, window -%g..%g s", ErrInvalidSearch, opt.Range, opt.Before, opt.After)
	}
	if r.Frame != seis.FrameENZ {
		return Shift{}, fmt.Errorf("%w: search needs %s, got %s", rotate.ErrWrongFrame, seis.FrameENZ, r.Frame)
	}

	e := r.MustTrace('E')
	n := r.MustTrace('N')
	if opt.FreqMax > 0 {
		var err error
		if e, err = seis.Bandpass(e, opt.FreqMin, opt.FreqMax, opt.Order); err != nil {
			return Shift{}, err
		}
		if n, err = seis.Bandpass(n, opt.FreqMin, opt.FreqMax, opt.Order); err != nil {
			return Shift{}, err
		}
	}

	t0, t1 := r.Arrival-opt.Before, r.Arrival+opt.After
	ew := e.Window(t0, t1)
	nw := n.Window(t0, t1)
	if len(ew) == 0 || len(ew) != len(nw) {
		return undefined("window [%.1f, %.1f] s outside data", t0, t1), nil
	}

	curve, err := TransverseCurve(ew, nw, r.Baz, opt.Range)
	if err != nil {
		return Shift{}, err
	}
	minima := stime.LocalMinima(curve)
	switch len(minima) {
	case 0:
		return undefined("no local minimum within ±%d°", opt.Range), nil
	case 1:
		return Shift{Value: float64(minima[0] - opt.Range), Defined: true}, nil
	}
	return undefined("%d local minima within ±%d°", len(minima), opt.Range), nil
}

// TransverseCurve returns the transverse RSSQ for back azimuths baz+k,
// k = -rng .. rng-1, normalized by its maximum.
func TransverseCurve(e, n []float64, baz float64, rng int) ([]float64, error) {
	curve := make([]float64, 2*rng)
	for i := range curve {
		_, t, err := rotate.NE2RT(e, n, baz+float64(i-rng))
		if err != nil {
			return nil, err
		}
		curve[i] = stime.RSSQ(t)
	}
	if peak := stime.Peak(curve); peak > 0 {
		for i := range curve {
			curve[i] /= peak
		}
	}
	return curve, nil
}

// Mean averages the defined shifts. The values are sorted first so the
// result does not depend on record order.
func Mean(shifts []Shift) (float64, error) {
	vals := make([]float64, 0, len(shifts))
	for _, s := range shifts {
		if s.Defined && !math.IsNaN(s.Value) {
			vals = append(vals, s.Value)
		}
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("%w: %d records searched", ErrSearchRangeTooNarrow, len(shifts))
	}
	slices.Sort(vals)
	return stat.Mean(vals, nil), nil
}

// Correct applies the mean defined shift to every record, including those
// whose own shift is undefined.
func Correct(recs []seis.Record, shifts []Shift) ([]seis.Record, float64, error) {
	if len(recs) != len(shifts) {
		return nil, 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(recs), len(shifts))
	}
	mean, err := Mean(shifts)
	if err != nil {
		return nil, 0, err
	}
	return ApplyOffset(recs, mean), mean, nil
}

func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
