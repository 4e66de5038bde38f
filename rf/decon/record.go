package decon

import (
	"fmt"

	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

// Options selects what Record deconvolves.
type Options struct {
	Method     Method
	Params     Params
	Phase      string // "P" or "S"
	OnlyR      bool   // P only: skip the transverse component
	TimeBefore float64
	TimeAfter  float64
}

// Record computes the receiver functions of a rotated, trimmed record.
//
// For P the radial (R or Q) and, unless OnlyR, transverse components are
// deconvolved by the vertical (Z or L) with zero lag TimeBefore seconds into
// the trace. For S the vertical is deconvolved by the radial with zero lag
// TimeAfter seconds in.
func Record(r seis.Record, opt Options) ([]ReceiverFunction, error) {
	vert, rad, err := components(r.Frame)
	if err != nil {
		return nil, err
	}

	p := opt.Params
	var pairs [][2]byte
	switch opt.Phase {
	case "P", "":
		p.Shift = opt.TimeBefore
		pairs = append(pairs, [2]byte{rad, vert})
		if !opt.OnlyR {
			pairs = append(pairs, [2]byte{'T', vert})
		}
	case "S":
		p.Shift = opt.TimeAfter
		p.Acausal = true
		pairs = append(pairs, [2]byte{vert, rad})
	default:
		return nil, fmt.Errorf("%w: phase %q", ErrInvalidParams, opt.Phase)
	}

	out := make([]ReceiverFunction, 0, len(pairs))
	for _, pr := range pairs {
		u := r.MustTrace(pr[0])
		w := r.MustTrace(pr[1])
		rf, err := Deconvolve(opt.Method, u, w, p)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", u.Channel, w.Channel, err)
		}
		rf.Phase = phaseName(opt.Phase)
		out = append(out, rf)
	}
	return out, nil
}

func components(f seis.Frame) (vert, rad byte, err error) {
	switch f {
	case seis.FrameRTZ:
		return 'Z', 'R', nil
	case seis.FrameLQT:
		return 'L', 'Q', nil
	}
	return 0, 0, fmt.Errorf("%w: record frame %s is not rotated", ErrInvalidParams, f)
}

func phaseName(p string) string {
	if p == "" {
		return "P"
	}
	return p
}
