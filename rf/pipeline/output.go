package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/AlbertSeismo/RFs-Seispy/format/sac"
	"github.com/AlbertSeismo/RFs-Seispy/rf/ani"
	"github.com/AlbertSeismo/RFs-Seispy/rf/config"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

// ErrNoPairs indicates no record with both radial and transverse receiver
// functions.
var ErrNoPairs = errors.New("pipeline: no radial/transverse receiver function pairs")

const eventHeader = "2006.002.150405"

// SACFile is a receiver function ready to be written.
type SACFile struct {
	Name string
	File *sac.File
}

// SAC converts the receiver functions of res to SAC, named
// <event>_<phase>_<component>.sac. B is minus the shift, user0 the ray
// parameter, user1 the Gaussian width and user2 the number of components
// (1 or 3). kevnm holds the origin as YYYY.DDD.HHMMSS to fit its 16
// characters.
func (res Result) SAC() []SACFile {
	rec := res.Record
	_, az, _ := seis.Distaz(rec.Station.Latitude, rec.Station.Longitude, rec.Event.Latitude, rec.Event.Longitude)
	comps := 3.0
	if len(res.RFs) == 1 {
		comps = 1
	}

	out := make([]SACFile, 0, len(res.RFs))
	for _, rf := range res.RFs {
		tr := rf.Trace
		f := sac.New(tr.Delta, -rf.Shift, tr.Data)
		f.Station = rec.Station.Name
		f.Network = rec.Station.Network
		f.Component = tr.Channel
		f.Event = rec.Event.Origin.UTC().Format(eventHeader)
		f.Stla, f.Stlo, f.Stel = rec.Station.Latitude, rec.Station.Longitude, rec.Station.Elevation
		f.Evla, f.Evlo, f.Evdp = rec.Event.Latitude, rec.Event.Longitude, rec.Event.Depth
		f.Mag = rec.Event.Magnitude
		f.Gcarc = rec.Gcarc
		f.Baz = rec.Baz
		f.Az = az
		f.User[0] = rec.RayP
		f.User[1] = rf.Gauss
		f.User[2] = comps
		out = append(out, SACFile{
			Name: fmt.Sprintf("%s_%s_%s.sac", rec.ID(), rf.Phase, tr.Channel),
			File: f,
		})
	}
	return out
}

// WriteSAC writes every receiver function of results into dir and returns
// the number of files written.
func WriteSAC(dir string, results []Result) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	n := 0
	for _, res := range results {
		for _, f := range res.SAC() {
			if err := sac.WriteFile(filepath.Join(dir, f.Name), f.File); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// Samples pairs the radial (R or Q) and transverse receiver functions of P
// results. Results without a transverse receiver function are skipped.
func Samples(results []Result) (samples []ani.Sample, delta, shift float64, err error) {
	for _, res := range results {
		var r, t []float64
		for _, rf := range res.RFs {
			if rf.Phase != "P" {
				continue
			}
			switch rf.Trace.Channel {
			case "R", "Q":
				r = rf.Trace.Data
				delta, shift = rf.Trace.Delta, rf.Shift
			case "T":
				t = rf.Trace.Data
			}
		}
		if r != nil && t != nil {
			samples = append(samples, ani.Sample{Baz: res.Record.Baz, R: r, T: t})
		}
	}
	if len(samples) == 0 {
		return nil, 0, 0, ErrNoPairs
	}
	return samples, delta, shift, nil
}

// ReadSamples reads pairs written by WriteSAC from dir: every
// <event>_P_R.sac (or _P_Q.sac) with its <event>_P_T.sac. The back azimuth
// comes from the radial file's header.
func ReadSamples(dir string) (samples []ani.Sample, delta, shift float64, err error) {
	var radial []string
	for _, c := range []string{"R", "Q"} {
		m, err := filepath.Glob(filepath.Join(dir, "*_P_"+c+".sac"))
		if err != nil {
			return nil, 0, 0, err
		}
		radial = append(radial, m...)
	}
	slices.Sort(radial)

	for _, rp := range radial {
		tp := strings.TrimSuffix(rp, filepath.Ext(rp))
		tp = tp[:len(tp)-1] + "T.sac"
		if _, err := os.Stat(tp); err != nil {
			continue
		}
		rf, err := sac.ReadFile(rp)
		if err != nil {
			return nil, 0, 0, err
		}
		tf, err := sac.ReadFile(tp)
		if err != nil {
			return nil, 0, 0, err
		}
		delta, shift = rf.Delta, -rf.B
		samples = append(samples, ani.Sample{Baz: rf.Baz, R: rf.Data, T: tf.Data})
	}
	if len(samples) == 0 {
		return nil, 0, 0, fmt.Errorf("%w in %s", ErrNoPairs, dir)
	}
	return samples, delta, shift, nil
}

// Anisotropy stacks samples by back azimuth and runs the joint grid search
// with the ani section of cfg.
func Anisotropy(samples []ani.Sample, delta, shift float64, cfg config.Config) (*ani.AnisotropyGrid, error) {
	st, err := ani.Stack(samples, delta, shift, cfg.Ani.BinWidth)
	if err != nil {
		return nil, err
	}
	est, err := ani.NewEstimator(st, cfg.Grid(), cfg.Ani.TB, cfg.Ani.TE)
	if err != nil {
		return nil, err
	}
	return est.Joint(cfg.Ani.Weights)
}

// Anisotropy runs the estimator on accepted results. Binning needs every
// result, so this runs after Run.
func (r *Runner) Anisotropy(results []Result) (*ani.AnisotropyGrid, error) {
	samples, delta, shift, err := Samples(results)
	if err != nil {
		return nil, err
	}
	g, err := Anisotropy(samples, delta, shift, r.cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range g.Best {
		r.log.Info("best splitting parameters",
			zap.Float64("fast", p.Fast),
			zap.Float64("delay", p.Delay),
			zap.Int("records", len(samples)))
	}
	return g, nil
}
