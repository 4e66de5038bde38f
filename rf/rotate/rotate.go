package rotate

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

var (
	// ErrInvalidFrame indicates a target frame other than RTZ or LQT.
	ErrInvalidFrame = errors.New("rotate: frame must be a permutation of RTZ or LQT")
	// ErrLengthMismatch indicates components of different length.
	ErrLengthMismatch = errors.New("rotate: component length mismatch")
	// ErrWrongFrame indicates the input record is not in the expected frame.
	ErrWrongFrame = errors.New("rotate: unexpected input frame")
)

// ParseFrame normalizes a target frame name. Any permutation of RTZ or LQT
// in any case is accepted.
func ParseFrame(s string) (seis.Frame, error) {
	letters := []byte(strings.ToUpper(strings.TrimSpace(s)))
	slices.Sort(letters)
	switch string(letters) {
	case "RTZ":
		return seis.FrameRTZ, nil
	case "LQT":
		return seis.FrameLQT, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFrame, s)
}

func sincos(deg float64) (float64, float64) {
	return math.Sincos(deg * math.Pi / 180)
}

// NE2RT rotates the horizontal pair into radial and transverse.
func NE2RT(e, n []float64, baz float64) (r, t []float64, err error) {
	if len(e) != len(n) {
		return nil, nil, fmt.Errorf("%w: E %d, N %d", ErrLengthMismatch, len(e), len(n))
	}
	s, c := sincos(baz)
	r = make([]float64, len(e))
	t = make([]float64, len(e))
	for i := range e {
		r[i] = -e[i]*s - n[i]*c
		t[i] = -e[i]*c + n[i]*s
	}
	return r, t, nil
}

// RT2NE is the inverse of NE2RT.
func RT2NE(r, t []float64, baz float64) (e, n []float64, err error) {
	if len(r) != len(t) {
		return nil, nil, fmt.Errorf("%w: R %d, T %d", ErrLengthMismatch, len(r), len(t))
	}
	s, c := sincos(baz)
	e = make([]float64, len(r))
	n = make([]float64, len(r))
	for i := range r {
		e[i] = -r[i]*s - t[i]*c
		n[i] = -r[i]*c + t[i]*s
	}
	return e, n, nil
}

// ZNE2LQT rotates into the ray-aligned L (along the ray), Q (perpendicular
// in the ray plane) and T frame for incidence angle inc.
func ZNE2LQT(z, e, n []float64, baz, inc float64) (l, q, t []float64, err error) {
	if len(z) != len(e) || len(z) != len(n) {
		return nil, nil, nil, fmt.Errorf("%w: Z %d, E %d, N %d", ErrLengthMismatch, len(z), len(e), len(n))
	}
	r, t, err := NE2RT(e, n, baz)
	if err != nil {
		return nil, nil, nil, err
	}
	l, q = zr2lq(z, r, inc)
	return l, q, t, nil
}

// LQT2ZNE is the inverse of ZNE2LQT.
func LQT2ZNE(l, q, t []float64, baz, inc float64) (z, e, n []float64, err error) {
	if len(l) != len(q) || len(l) != len(t) {
		return nil, nil, nil, fmt.Errorf("%w: L %d, Q %d, T %d", ErrLengthMismatch, len(l), len(q), len(t))
	}
	si, ci := sincos(inc)
	z = make([]float64, len(l))
	r := make([]float64, len(l))
	for i := range l {
		z[i] = l[i]*ci + q[i]*si
		r[i] = l[i]*si - q[i]*ci
	}
	e, n, err = RT2NE(r, t, baz)
	if err != nil {
		return nil, nil, nil, err
	}
	return z, e, n, nil
}

func zr2lq(z, r []float64, inc float64) (l, q []float64) {
	si, ci := sincos(inc)
	l = make([]float64, len(z))
	q = make([]float64, len(z))
	for i := range z {
		l[i] = z[i]*ci + r[i]*si
		q[i] = z[i]*si - r[i]*ci
	}
	return l, q
}
