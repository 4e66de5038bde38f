package seis

import (
	"errors"
	"fmt"
	"math"

	"github.com/AlbertSeismo/RFs-Seispy/dsp/filter"
	"github.com/AlbertSeismo/RFs-Seispy/dsp/resample"
	"github.com/AlbertSeismo/RFs-Seispy/dsp/window"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

var (
	// ErrEmptyTrace indicates a trace without samples.
	ErrEmptyTrace = errors.New("seis: empty trace")
	// ErrWindowOutOfRange indicates a requested time window outside the data.
	ErrWindowOutOfRange = errors.New("seis: time window outside trace")
	// ErrInvalidDelta indicates a non-positive sampling interval.
	ErrInvalidDelta = errors.New("seis: sampling interval must be > 0")
)

// Trace is a single-component, uniformly sampled time series.
type Trace struct {
	Channel string    `msgpack:"channel"`
	Delta   float64   `msgpack:"delta"` // seconds per sample
	Begin   float64   `msgpack:"begin"` // time of Data[0], seconds after origin
	Data    []float64 `msgpack:"data"`
}

// Len returns the number of samples.
func (t Trace) Len() int { return len(t.Data) }

// End returns the time of the last sample.
func (t Trace) End() float64 {
	if len(t.Data) == 0 {
		return t.Begin
	}
	return t.Begin + float64(len(t.Data)-1)*t.Delta
}

// TimeAt returns the time of sample i.
func (t Trace) TimeAt(i int) float64 {
	return t.Begin + float64(i)*t.Delta
}

// Index returns the sample index nearest to time tm. The result may lie
// outside the data.
func (t Trace) Index(tm float64) int {
	return int(math.Round((tm - t.Begin) / t.Delta))
}

// Clone returns a deep copy of the trace.
func (t Trace) Clone() Trace {
	c := t
	c.Data = make([]float64, len(t.Data))
	copy(c.Data, t.Data)
	return c
}

// WithData returns a copy of t carrying data instead of t.Data.
func (t Trace) WithData(data []float64) Trace {
	c := t
	c.Data = data
	return c
}

// Validate checks that the trace can be processed.
func (t Trace) Validate() error {
	if len(t.Data) == 0 {
		return fmt.Errorf("%w: channel %q", ErrEmptyTrace, t.Channel)
	}
	if !(t.Delta > 0) {
		return fmt.Errorf("%w: channel %q delta %g", ErrInvalidDelta, t.Channel, t.Delta)
	}
	return nil
}

// Window returns the samples with times in [t0, t1), clamped to the data.
// The returned slice aliases t.Data.
func (t Trace) Window(t0, t1 float64) []float64 {
	i0 := int(math.Ceil((t0-t.Begin)/t.Delta - 1e-9))
	i1 := int(math.Ceil((t1-t.Begin)/t.Delta - 1e-9))
	i0 = max(i0, 0)
	i1 = min(i1, len(t.Data))
	if i0 >= i1 {
		return nil
	}
	return t.Data[i0:i1]
}

// Detrend removes the least-squares linear trend.
func Detrend(t Trace) Trace {
	a, b := stime.Trend(t.Data)
	out := make([]float64, len(t.Data))
	for i, v := range t.Data {
		out[i] = v - a - b*float64(i)
	}
	return t.WithData(out)
}

// Taper applies a Hann taper over fraction of the samples at both ends.
func Taper(t Trace, fraction float64) (Trace, error) {
	c := t.Clone()
	if err := window.Taper(c.Data, fraction); err != nil {
		return Trace{}, fmt.Errorf("seis: taper %q: %w", t.Channel, err)
	}
	return c, nil
}

// Bandpass applies a zero-phase Butterworth band-pass.
func Bandpass(t Trace, freqMin, freqMax float64, order int) (Trace, error) {
	data, err := filter.Bandpass(t.Data, t.Delta, freqMin, freqMax, order)
	if err != nil {
		return Trace{}, fmt.Errorf("seis: bandpass %q: %w", t.Channel, err)
	}
	return t.WithData(data), nil
}

// Resample converts the trace to sampling interval delta, keeping Begin.
func Resample(t Trace, delta float64) (Trace, error) {
	data, err := resample.ToInterval(t.Data, t.Delta, delta)
	if err != nil {
		return Trace{}, fmt.Errorf("seis: resample %q: %w", t.Channel, err)
	}
	c := t.WithData(data)
	c.Delta = delta
	return c, nil
}

// Trim cuts the trace to exactly round((end-start)/Delta)+1 samples with
// the first at the sample nearest to start. The window must lie within the
// data.
func Trim(t Trace, start, end float64) (Trace, error) {
	if err := t.Validate(); err != nil {
		return Trace{}, err
	}
	n := int(math.Round((end-start)/t.Delta)) + 1
	i0 := t.Index(start)
	if n <= 0 || i0 < 0 || i0+n > len(t.Data) {
		return Trace{}, fmt.Errorf("%w: %q [%.3f, %.3f] vs data [%.3f, %.3f]",
			ErrWindowOutOfRange, t.Channel, start, end, t.Begin, t.End())
	}
	out := make([]float64, n)
	copy(out, t.Data[i0:i0+n])
	c := t.WithData(out)
	c.Begin = t.TimeAt(i0)
	return c, nil
}
