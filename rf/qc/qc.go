// Package qc accepts or rejects receiver functions.
//
// A Gate combines an optional ceiling on the final deconvolution misfit with
// a named criterion on the shape of the trace around zero lag. Rejection
// never modifies the receiver function; the caller decides what to keep.
package qc

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/AlbertSeismo/RFs-Seispy/rf/decon"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

// ErrUnknownCriterion indicates an unrecognised criterion name.
var ErrUnknownCriterion = errors.New("qc: unknown criterion")

// Criterion names a shape check.
type Criterion string

const (
	// CriterionCrust requires the direct arrival within 2 s of zero lag to be
	// the largest absolute sample and below 1.
	CriterionCrust Criterion = "crust"
	// CriterionMTZ widens the window to 5 s and also requires everything from
	// 30 s after zero lag to stay below 0.4 of the direct arrival.
	CriterionMTZ Criterion = "mtz"
	// CriterionNone applies only the misfit ceiling.
	CriterionNone Criterion = "none"
)

const (
	crustHalfWindow = 2.0
	mtzHalfWindow   = 5.0
	mtzDeepStart    = 30.0
	mtzDeepRatio    = 0.4
	maxDirect       = 1.0
)

// ParseCriterion validates a criterion name. An empty name means none.
func ParseCriterion(s string) (Criterion, error) {
	switch c := Criterion(strings.ToLower(strings.TrimSpace(s))); c {
	case CriterionCrust, CriterionMTZ, CriterionNone:
		return c, nil
	case "":
		return CriterionNone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCriterion, s)
}

// Verdict is the outcome of Judge. Cause is empty when Accepted.
type Verdict struct {
	Accepted bool
	Cause    string
}

func reject(format string, args ...any) Verdict {
	return Verdict{Cause: fmt.Sprintf(format, args...)}
}

// Gate holds the acceptance rules.
type Gate struct {
	Criterion Criterion
	// RMSCeiling rejects receiver functions whose final misfit is above it.
	// Nil disables the check; a misfit equal to the ceiling passes.
	RMSCeiling *float64
	// ExpectedLen rejects traces of any other length when positive.
	ExpectedLen int
}

// Ceiling returns a pointer to v, for RMSCeiling literals.
func Ceiling(v float64) *float64 { return &v }

// Judge applies the gate to rf.
func (g Gate) Judge(rf decon.ReceiverFunction) Verdict {
	data := rf.Trace.Data
	if len(data) == 0 {
		return reject("empty receiver function")
	}
	if g.ExpectedLen > 0 && len(data) != g.ExpectedLen {
		return reject("length %d, expected %d", len(data), g.ExpectedLen)
	}
	if g.RMSCeiling != nil {
		rms := rf.FinalRMS()
		if math.IsNaN(rms) || rms > *g.RMSCeiling {
			return reject("final rms %g above %g", rms, *g.RMSCeiling)
		}
	}

	dt := rf.Trace.Delta
	switch g.Criterion {
	case CriterionNone, "":
		return Verdict{Accepted: true}
	case CriterionCrust:
		if v := direct(data, dt, rf.Shift, crustHalfWindow); !v.Accepted {
			return v
		}
		return Verdict{Accepted: true}
	case CriterionMTZ:
		v := direct(data, dt, rf.Shift, mtzHalfWindow)
		if !v.Accepted {
			return v
		}
		peak := stime.Peak(data)
		from := int(math.Floor((mtzDeepStart + rf.Shift) / dt))
		if from < len(data) {
			deep := stime.Peak(data[max(from, 0):])
			if deep >= mtzDeepRatio*peak {
				return reject("late amplitude %g not below %g of direct %g", deep, mtzDeepRatio, peak)
			}
		}
		return Verdict{Accepted: true}
	}
	return reject("unknown criterion %q", g.Criterion)
}

// direct checks that the largest positive sample within half seconds of zero
// lag is also the largest absolute sample of the trace and below maxDirect.
func direct(data []float64, dt, shift, half float64) Verdict {
	lo := max(int(math.Floor((shift-half)/dt)), 0)
	hi := min(int(math.Floor((shift+half)/dt)), len(data))
	if lo >= hi {
		return reject("zero-lag window outside trace")
	}
	best := math.Inf(-1)
	for _, v := range data[lo:hi] {
		best = max(best, v)
	}
	if best != stime.Peak(data) {
		return reject("direct arrival %g is not the trace maximum %g", best, stime.Peak(data))
	}
	if best >= maxDirect {
		return reject("direct arrival %g not below %g", best, maxDirect)
	}
	return Verdict{Accepted: true}
}
