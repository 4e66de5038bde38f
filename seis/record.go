package seis

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Frame names the coordinate system of a record's three traces. The letters
// give the storage order of Record.Traces.
type Frame string

const (
	FrameENZ Frame = "ENZ"
	FrameRTZ Frame = "RTZ"
	FrameLQT Frame = "LQT"
)

// Channels returns the component letters in storage order.
func (f Frame) Channels() string { return string(f) }

// Event is the source of a record.
type Event struct {
	Origin    time.Time `msgpack:"origin" yaml:"origin"`
	Latitude  float64   `msgpack:"lat" yaml:"lat"`
	Longitude float64   `msgpack:"lon" yaml:"lon"`
	Depth     float64   `msgpack:"depth" yaml:"depth"` // km
	Magnitude float64   `msgpack:"mag" yaml:"mag"`
}

// Station is the receiver of a record.
type Station struct {
	Network   string  `msgpack:"network" yaml:"network"`
	Name      string  `msgpack:"name" yaml:"name"`
	Latitude  float64 `msgpack:"lat" yaml:"lat"`
	Longitude float64 `msgpack:"lon" yaml:"lon"`
	Elevation float64 `msgpack:"elev" yaml:"elev"`
}

// Record is one event-station observation with three traces.
type Record struct {
	Event   Event   `msgpack:"event"`
	Station Station `msgpack:"station"`

	Frame  Frame    `msgpack:"frame"`
	Traces [3]Trace `msgpack:"traces"`

	Gcarc float64 `msgpack:"gcarc"` // epicentral distance, degrees
	Baz   float64 `msgpack:"baz"`   // back azimuth, degrees

	Arrival   float64 `msgpack:"arrival"`   // phase travel time, seconds after origin
	RayP      float64 `msgpack:"rayp"`      // s/deg
	Incidence float64 `msgpack:"incidence"` // degrees

	BazCorrection       float64 `msgpack:"baz_correction"`
	IncidenceCorrection float64 `msgpack:"inc_correction"`
}

// ID returns the event string used for file names,
// "YYYY.DDD.HH.MM.SS" of the origin time.
func (r Record) ID() string {
	return r.Event.Origin.UTC().Format("2006.002.15.04.05")
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := r
	for i := range r.Traces {
		c.Traces[i] = r.Traces[i].Clone()
	}
	return c
}

// Trace returns the trace for component letter ch in the current frame.
func (r Record) Trace(ch byte) (Trace, bool) {
	i := strings.IndexByte(r.Frame.Channels(), ch)
	if i < 0 {
		return Trace{}, false
	}
	return r.Traces[i], true
}

// MustTrace is Trace for components the caller knows are present.
func (r Record) MustTrace(ch byte) Trace {
	t, ok := r.Trace(ch)
	if !ok {
		panic(fmt.Sprintf("seis: record in frame %s has no %c component", r.Frame, ch))
	}
	return t
}

// WithFrame returns a copy of r in frame f holding traces in f's order.
func (r Record) WithFrame(f Frame, traces [3]Trace) Record {
	c := r
	c.Frame = f
	c.Traces = traces
	for i, ch := range f.Channels() {
		c.Traces[i].Channel = string(ch)
	}
	return c
}

// MapTraces applies fn to each trace and returns the new record.
func (r Record) MapTraces(fn func(Trace) (Trace, error)) (Record, error) {
	c := r
	for i := range r.Traces {
		t, err := fn(r.Traces[i])
		if err != nil {
			return Record{}, err
		}
		c.Traces[i] = t
	}
	return c, nil
}

// Validate checks the three traces share one sampling interval and length.
func (r Record) Validate() error {
	for i := range r.Traces {
		if err := r.Traces[i].Validate(); err != nil {
			return err
		}
	}
	t0 := r.Traces[0]
	for _, t := range r.Traces[1:] {
		if t.Len() != t0.Len() || t.Delta != t0.Delta {
			return fmt.Errorf("%w: %s has %d samples at %gs, %s has %d at %gs",
				ErrMisaligned, t0.Channel, t0.Len(), t0.Delta, t.Channel, t.Len(), t.Delta)
		}
	}
	return nil
}

// Align cuts three traces with one sampling interval to the span they all
// cover. Every output trace starts at the first trace's grid time nearest to
// the latest Begin.
func Align(traces [3]Trace) ([3]Trace, error) {
	var out [3]Trace
	for i := range traces {
		if err := traces[i].Validate(); err != nil {
			return out, err
		}
	}
	delta := traces[0].Delta
	start, end := traces[0].Begin, traces[0].End()
	for _, t := range traces[1:] {
		if math.Abs(t.Delta-delta) > 1e-9*delta {
			return out, fmt.Errorf("%w: %s at %gs, %s at %gs", ErrMisaligned, traces[0].Channel, delta, t.Channel, t.Delta)
		}
		start = max(start, t.Begin)
		end = min(end, t.End())
	}
	if start > end {
		return out, fmt.Errorf("%w: no common time span", ErrMisaligned)
	}

	n := math.MaxInt
	idx := [3]int{}
	for i, t := range traces {
		idx[i] = max(t.Index(start), 0)
		n = min(n, t.Len()-idx[i])
	}
	begin := traces[0].TimeAt(idx[0])
	for i, t := range traces {
		data := make([]float64, n)
		copy(data, t.Data[idx[i]:idx[i]+n])
		out[i] = t.WithData(data)
		out[i].Begin = begin
	}
	return out, nil
}
