package ani

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrNoData indicates an empty input set or a stack with no members.
	ErrNoData = errors.New("ani: no receiver functions")
	// ErrLengthMismatch indicates receiver functions of different length.
	ErrLengthMismatch = errors.New("ani: receiver function length mismatch")
	// ErrInvalidParams indicates unusable bin, grid or window settings.
	ErrInvalidParams = errors.New("ani: invalid parameters")
)

// Sample is one event's radial and transverse receiver functions.
type Sample struct {
	Baz float64
	R   []float64
	T   []float64
}

// Bin is one back-azimuth bin of an AzimuthStack. Baz is the mean back
// azimuth of the members, or Lower when the bin is empty.
type Bin struct {
	Lower float64   `msgpack:"lower"`
	Baz   float64   `msgpack:"baz"`
	Count int       `msgpack:"count"`
	R     []float64 `msgpack:"r"`
	T     []float64 `msgpack:"t"`
}

// AzimuthStack holds mean receiver functions per back-azimuth bin. Bins are
// half-open, [Lower, Lower+Width), and cover [0, 360).
type AzimuthStack struct {
	Width float64 `msgpack:"width"`
	Delta float64 `msgpack:"delta"`
	Shift float64 `msgpack:"shift"` // seconds from trace start to zero lag
	Len   int     `msgpack:"len"`
	Bins  []Bin   `msgpack:"bins"`
}

// Stack averages samples into bins of width degrees. All samples must have
// the same length; delta and shift describe their common time axis.
func Stack(samples []Sample, delta, shift, width float64) (*AzimuthStack, error) {
	if len(samples) == 0 {
		return nil, ErrNoData
	}
	if !(width > 0) || width > 360 || !(delta > 0) {
		return nil, fmt.Errorf("%w: bin width %g, delta %g", ErrInvalidParams, width, delta)
	}
	n := len(samples[0].R)
	if n == 0 {
		return nil, ErrNoData
	}

	nbins := int(math.Ceil(360/width - 1e-9))
	s := &AzimuthStack{Width: width, Delta: delta, Shift: shift, Len: n, Bins: make([]Bin, nbins)}
	sums := make([]float64, nbins)
	for i := range s.Bins {
		s.Bins[i] = Bin{Lower: float64(i) * width, R: make([]float64, n), T: make([]float64, n)}
	}

	for k, smp := range samples {
		if len(smp.R) != n || len(smp.T) != n {
			return nil, fmt.Errorf("%w: sample %d has %d/%d samples, want %d", ErrLengthMismatch, k, len(smp.R), len(smp.T), n)
		}
		baz := wrap360(smp.Baz)
		i := min(int(baz/width), nbins-1)
		b := &s.Bins[i]
		vecmath.AddBlockInPlace(b.R, smp.R)
		vecmath.AddBlockInPlace(b.T, smp.T)
		b.Count++
		sums[i] += baz
	}

	for i := range s.Bins {
		b := &s.Bins[i]
		if b.Count == 0 {
			b.Baz = b.Lower
			continue
		}
		inv := 1 / float64(b.Count)
		vecmath.ScaleBlockInPlace(b.R, inv)
		vecmath.ScaleBlockInPlace(b.T, inv)
		b.Baz = sums[i] * inv
	}
	return s, nil
}

// Total returns the number of stacked receiver functions.
func (s *AzimuthStack) Total() int {
	total := 0
	for _, b := range s.Bins {
		total += b.Count
	}
	return total
}

// occupied returns the bins with at least one member.
func (s *AzimuthStack) occupied() []Bin {
	out := make([]Bin, 0, len(s.Bins))
	for _, b := range s.Bins {
		if b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}

func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
