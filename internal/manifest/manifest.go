// Package manifest loads the list of matched events for one station.
//
// Catalog search and event matching happen elsewhere; their result is a YAML
// file naming, for every event, its source parameters, the predicted phase
// arrival and the waveform files holding the three components:
//
//	station:
//	  network: XX
//	  name: ABC
//	  lat: 30.5
//	  lon: 100.2
//	events:
//	  - origin: 2019-05-03T04:05:06Z
//	    lat: -20.1
//	    lon: 170.3
//	    depth: 33
//	    mag: 6.1
//	    arrival: 712.4
//	    rayp: 5.9
//	    files:
//	      all: 2019.123.04.05.06.mseed
//
// Files ending in .sac are read as SAC, anything else as miniSEED. Relative
// paths are resolved against the manifest's directory.
package manifest

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/AlbertSeismo/RFs-Seispy/format/mseed"
	"github.com/AlbertSeismo/RFs-Seispy/format/sac"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

var (
	// ErrMissingComponent indicates an event without one of E, N and Z.
	ErrMissingComponent = errors.New("manifest: missing component")
	// ErrNoArrival indicates an event without a predicted arrival time.
	ErrNoArrival = errors.New("manifest: arrival time must be > 0")
)

// Files names the waveform files of one event. All is a single miniSEED
// file holding every channel; otherwise E, N and Z are read separately.
type Files struct {
	All string `yaml:"all"`
	E   string `yaml:"e"`
	N   string `yaml:"n"`
	Z   string `yaml:"z"`
}

// Entry is one matched event.
type Entry struct {
	seis.Event `yaml:",inline"`

	Arrival   float64  `yaml:"arrival"` // seconds after origin
	RayP      float64  `yaml:"rayp"`
	Incidence float64  `yaml:"incidence"`
	Gcarc     *float64 `yaml:"gcarc"` // computed from coordinates when nil
	Baz       *float64 `yaml:"baz"`
	Files     Files    `yaml:"files"`
}

// ID is the event string used in file names.
func (e Entry) ID() string {
	return seis.Record{Event: e.Event}.ID()
}

// Manifest is a station and its events.
type Manifest struct {
	Station seis.Station `yaml:"station"`
	Events  []Entry      `yaml:"events"`

	dir string
}

// Failure records an event that could not be turned into a Record.
type Failure struct {
	ID  string
	Err error
}

// Load parses a manifest file. Unknown keys are rejected.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes a manifest. Relative file paths stay relative to the
// working directory.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}

// Records reads the waveforms of every event. Events that cannot be read are
// returned as failures and left out; the others keep manifest order.
func (m *Manifest) Records() ([]seis.Record, []Failure) {
	recs := make([]seis.Record, 0, len(m.Events))
	var fails []Failure
	for _, e := range m.Events {
		r, err := m.record(e)
		if err != nil {
			fails = append(fails, Failure{ID: e.ID(), Err: err})
			continue
		}
		recs = append(recs, r)
	}
	return recs, fails
}

func (m *Manifest) record(e Entry) (seis.Record, error) {
	if !(e.Arrival > 0) {
		return seis.Record{}, fmt.Errorf("%w: %g", ErrNoArrival, e.Arrival)
	}
	traces, err := m.components(e)
	if err != nil {
		return seis.Record{}, err
	}
	traces, err = seis.Align(traces)
	if err != nil {
		return seis.Record{}, err
	}

	gcarc, _, baz := seis.Distaz(m.Station.Latitude, m.Station.Longitude, e.Latitude, e.Longitude)
	if e.Gcarc != nil {
		gcarc = *e.Gcarc
	}
	if e.Baz != nil {
		baz = *e.Baz
	}

	r := seis.Record{
		Event:     e.Event,
		Station:   m.Station,
		Gcarc:     gcarc,
		Baz:       baz,
		Arrival:   e.Arrival,
		RayP:      e.RayP,
		Incidence: e.Incidence,
	}
	return r.WithFrame(seis.FrameENZ, traces), nil
}

func (m *Manifest) path(p string) string {
	if p == "" || filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

func (m *Manifest) components(e Entry) ([3]seis.Trace, error) {
	var out [3]seis.Trace
	if e.Files.All != "" {
		chans, err := mseed.ReadFile(m.path(e.Files.All), e.Origin)
		if err != nil {
			return out, err
		}
		for i, c := range "ENZ" {
			tr, ok := pick(chans, byte(c))
			if !ok {
				return out, fmt.Errorf("%w: %c in %s", ErrMissingComponent, c, e.Files.All)
			}
			out[i] = tr
		}
		return out, nil
	}

	for i, f := range []string{e.Files.E, e.Files.N, e.Files.Z} {
		c := "ENZ"[i]
		if f == "" {
			return out, fmt.Errorf("%w: no %c file", ErrMissingComponent, c)
		}
		tr, err := m.readOne(m.path(f), c, e)
		if err != nil {
			return out, err
		}
		out[i] = tr
	}
	return out, nil
}

func (m *Manifest) readOne(path string, c byte, e Entry) (seis.Trace, error) {
	if strings.EqualFold(filepath.Ext(path), ".sac") {
		f, err := sac.ReadFile(path)
		if err != nil {
			return seis.Trace{}, err
		}
		begin := f.B
		if !f.Origin.IsZero() {
			begin += f.Origin.Sub(e.Origin).Seconds()
		}
		return seis.Trace{Channel: string(c), Delta: f.Delta, Begin: begin, Data: f.Data}, nil
	}

	chans, err := mseed.ReadFile(path, e.Origin)
	if err != nil {
		return seis.Trace{}, err
	}
	tr, ok := pick(chans, c)
	if !ok {
		return seis.Trace{}, fmt.Errorf("%w: %c in %s", ErrMissingComponent, c, path)
	}
	return tr, nil
}

// pick returns the first channel code, in sorted order, ending in c.
func pick(chans map[string]seis.Trace, c byte) (seis.Trace, bool) {
	for _, code := range slices.Sorted(maps.Keys(chans)) {
		if code != "" && code[len(code)-1] == c {
			return chans[code], true
		}
	}
	return seis.Trace{}, false
}
