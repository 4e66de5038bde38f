package ani

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is the (fast axis, delay time) search space. Surfaces built on it are
// indexed [delay][fast].
type Grid struct {
	Fast  []float64 `msgpack:"fast"`  // degrees, [0, 360)
	Delay []float64 `msgpack:"delay"` // seconds, [0, max]
}

// NewGrid spans fast axes 0, fastStep, ... below 360 and delays 0,
// delayStep, ... up to delayMax.
func NewGrid(fastStep, delayMax, delayStep float64) (Grid, error) {
	if !(fastStep > 0) || fastStep > 360 || !(delayStep > 0) || delayMax < 0 {
		return Grid{}, fmt.Errorf("%w: fast step %g, delay max %g step %g", ErrInvalidParams, fastStep, delayMax, delayStep)
	}
	nf := int(math.Ceil(360/fastStep - 1e-9))
	nd := int(math.Floor(delayMax/delayStep+1e-9)) + 1

	g := Grid{Fast: make([]float64, nf), Delay: make([]float64, nd)}
	floats.Span(g.Fast, 0, float64(nf-1)*fastStep)
	if nd > 1 {
		floats.Span(g.Delay, 0, float64(nd-1)*delayStep)
	}
	return g, nil
}

// Default grid resolution.
const (
	DefaultFastStep  = 5.0  // degrees
	DefaultDelayMax  = 1.5  // seconds
	DefaultDelayStep = 0.05 // seconds
)

// DefaultGrid is 5° by 0.05 s up to 1.5 s.
func DefaultGrid() Grid {
	g, _ := NewGrid(DefaultFastStep, DefaultDelayMax, DefaultDelayStep)
	return g
}

func (g Grid) surface() [][]float64 {
	s := make([][]float64, len(g.Delay))
	for i := range s {
		s[i] = make([]float64, len(g.Fast))
	}
	return s
}

// Point is one grid node.
type Point struct {
	Fast  float64 `msgpack:"fast"`
	Delay float64 `msgpack:"delay"`
}

// normalize divides s by its largest value. A surface with no positive value
// is divided by its largest magnitude instead.
func normalize(s [][]float64) {
	peak := math.Inf(-1)
	mag := 0.0
	for _, row := range s {
		if len(row) == 0 {
			continue
		}
		peak = max(peak, floats.Max(row))
		for _, v := range row {
			mag = max(mag, math.Abs(v))
		}
	}
	if !(peak > 0) {
		peak = mag
	}
	if peak == 0 || math.IsInf(peak, 0) || math.IsNaN(peak) {
		return
	}
	for _, row := range s {
		floats.Scale(1/peak, row)
	}
}
