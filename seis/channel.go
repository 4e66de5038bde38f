package seis

import "fmt"

// ChannelFix describes fixes for miswired or misoriented horizontals.
type ChannelFix struct {
	SwitchEN bool `yaml:"switch_en"`
	ReverseE bool `yaml:"reverse_e"`
	ReverseN bool `yaml:"reverse_n"`
}

// ChannelCorrect applies fix to a record in the ENZ frame. Swapping happens
// before polarity reversal, so ReverseE acts on the trace that ends up as E.
func ChannelCorrect(r Record, fix ChannelFix) (Record, error) {
	if r.Frame != FrameENZ {
		return Record{}, fmt.Errorf("seis: channel correction needs frame %s, got %s", FrameENZ, r.Frame)
	}
	e := r.MustTrace('E')
	n := r.MustTrace('N')
	z := r.MustTrace('Z')
	if fix.SwitchEN {
		e, n = n, e
	}
	if fix.ReverseE {
		e = negate(e)
	}
	if fix.ReverseN {
		n = negate(n)
	}
	return r.WithFrame(FrameENZ, [3]Trace{e, n, z}), nil
}

func negate(t Trace) Trace {
	out := make([]float64, len(t.Data))
	for i, v := range t.Data {
		out[i] = -v
	}
	return t.WithData(out)
}
