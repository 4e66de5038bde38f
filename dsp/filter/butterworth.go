package filter

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidFrequency indicates a corner outside (0, Nyquist).
	ErrInvalidFrequency = errors.New("filter: corner frequency outside (0, nyquist)")
	// ErrInvalidOrder indicates a non-positive filter order.
	ErrInvalidOrder = errors.New("filter: order must be > 0")
)

// ButterworthLP designs a lowpass Butterworth cascade.
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthLP(freq float64, order int, sampleRate float64) ([]Coefficients, error) {
	if err := validate(freq, order, sampleRate); err != nil {
		return nil, err
	}
	sections := make([]Coefficients, 0, (order+1)/2)

	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, lowpassRBJ(freq, butterworthQ(order, i), sampleRate))
	}
	if order%2 != 0 {
		sections = append(sections, firstOrderLP(freq, sampleRate))
	}
	return sections, nil
}

// ButterworthHP designs a highpass Butterworth cascade.
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthHP(freq float64, order int, sampleRate float64) ([]Coefficients, error) {
	if err := validate(freq, order, sampleRate); err != nil {
		return nil, err
	}
	sections := make([]Coefficients, 0, (order+1)/2)

	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, highpassRBJ(freq, butterworthQ(order, i), sampleRate))
	}
	if order%2 != 0 {
		sections = append(sections, firstOrderHP(freq, sampleRate))
	}
	return sections, nil
}

// ButterworthBP designs a band-pass as a highpass at freqMin cascaded with a
// lowpass at freqMax, each of the given order.
func ButterworthBP(freqMin, freqMax float64, order int, sampleRate float64) ([]Coefficients, error) {
	if freqMin >= freqMax {
		return nil, fmt.Errorf("%w: band [%g, %g]", ErrInvalidFrequency, freqMin, freqMax)
	}
	hp, err := ButterworthHP(freqMin, order, sampleRate)
	if err != nil {
		return nil, err
	}
	lp, err := ButterworthLP(freqMax, order, sampleRate)
	if err != nil {
		return nil, err
	}
	return append(hp, lp...), nil
}

func validate(freq float64, order int, sampleRate float64) error {
	if order <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) {
		return fmt.Errorf("%w: %g Hz at %g Hz", ErrInvalidFrequency, freq, sampleRate)
	}
	return nil
}

// butterworthQ returns the quality factor for a Butterworth filter section.
// index ranges from 0 to (order/2 - 1) for the biquad sections.
func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))

	s := math.Sin(theta)
	if s == 0 {
		return 1 / math.Sqrt2
	}

	return 1 / (2 * s)
}

func lowpassRBJ(freq, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	return normalize((1-cw)/2, 1-cw, (1-cw)/2, 1+alpha, -2*cw, 1-alpha)
}

func highpassRBJ(freq, q, sampleRate float64) Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	return normalize((1+cw)/2, -(1 + cw), (1+cw)/2, 1+alpha, -2*cw, 1-alpha)
}

func firstOrderLP(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return Coefficients{B0: k * norm, B1: k * norm, A1: (k - 1) * norm}
}

func firstOrderHP(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)

	return Coefficients{B0: norm, B1: -norm, A1: (k - 1) * norm}
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
