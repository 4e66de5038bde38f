package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AlbertSeismo/RFs-Seispy/rf/baz"
	"github.com/AlbertSeismo/RFs-Seispy/rf/config"
	"github.com/AlbertSeismo/RFs-Seispy/rf/decon"
	"github.com/AlbertSeismo/RFs-Seispy/rf/qc"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

// ErrNoSurvivors indicates a stage that dropped every record.
var ErrNoSurvivors = errors.New("pipeline: no records left")

// Stage names a processing step.
type Stage string

const (
	StageInput      Stage = "input"
	StagePreprocess Stage = "preprocess"
	StageSNR        Stage = "snr"
	StageBaz        Stage = "baz"
	StageRotate     Stage = "rotate"
	StageTrim       Stage = "trim"
	StageDecon      Stage = "decon"
	StageQC         Stage = "qc"
)

// Outcome is what happened to one record. Stage and Cause are empty for
// accepted records. Err holds the underlying error for data failures and is
// nil for gate rejections.
type Outcome struct {
	ID       string
	Accepted bool
	Stage    Stage
	Cause    string
	Err      error
}

// StageCount is the working-set size after a stage.
type StageCount struct {
	Stage Stage
	Left  int
}

// Result is an accepted record and its receiver functions.
type Result struct {
	Record seis.Record
	RFs    []decon.ReceiverFunction
}

// Report summarises a run.
type Report struct {
	Run      string
	Counts   []StageCount
	Outcomes []Outcome
	BazShift float64 // degrees added to every back azimuth
	Accepted []Result
}

// Left returns the number of records left after stage s.
func (r *Report) Left(s Stage) (int, bool) {
	for _, c := range r.Counts {
		if c.Stage == s {
			return c.Left, true
		}
	}
	return 0, false
}

// Dropped returns the outcomes of records dropped at stage s.
func (r *Report) Dropped(s Stage) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Accepted && o.Stage == s {
			out = append(out, o)
		}
	}
	return out
}

// rejection is a record that ran fine but failed a gate.
type rejection struct{ cause string }

func (r *rejection) Error() string { return r.cause }

func rejectf(format string, args ...any) error {
	return &rejection{cause: fmt.Sprintf(format, args...)}
}

func dropped(id string, s Stage, err error) Outcome {
	var rj *rejection
	if errors.As(err, &rj) {
		return Outcome{ID: id, Stage: s, Cause: rj.cause}
	}
	return Outcome{ID: id, Stage: s, Cause: err.Error(), Err: err}
}

// Runner processes batches of records with one configuration.
type Runner struct {
	cfg        config.Config
	log        *zap.Logger
	workers    int
	run        string
	checkpoint func(run string, recs []seis.Record) error

	deconOpt decon.Options
	gate     qc.Gate
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithRunID sets the run id instead of a random one.
func WithRunID(id string) Option {
	return func(r *Runner) { r.run = id }
}

// WithCheckpoint registers fn to receive the working set after the
// back-azimuth correction, before rotation. An error from fn ends the run.
func WithCheckpoint(fn func(run string, recs []seis.Record) error) Option {
	return func(r *Runner) { r.checkpoint = fn }
}

// New validates cfg and returns a Runner.
func New(cfg config.Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:      cfg,
		log:      zap.NewNop(),
		workers:  cfg.WorkerCount(),
		run:      uuid.NewString(),
		deconOpt: cfg.DeconOptions(),
		gate:     cfg.Gate(),
	}
	for _, o := range opts {
		o(r)
	}
	r.workers = max(r.workers, 1)
	r.log = r.log.With(zap.String("run", r.run))
	return r, nil
}

// RunID returns the id attached to every log line and report.
func (r *Runner) RunID() string { return r.run }

type item struct {
	rec seis.Record
	rfs []decon.ReceiverFunction
}

// Run processes recs. The report is returned even when err is set and lists
// every drop up to the failing stage; Accepted is only filled when the run
// completes.
func (r *Runner) Run(ctx context.Context, recs []seis.Record) (*Report, error) {
	rep := &Report{Run: r.run}
	r.log.Info("run started",
		zap.Int("records", len(recs)),
		zap.String("phase", r.cfg.Decon.Phase),
		zap.Int("workers", r.workers))

	items, err := r.count(StageInput, wrap(recs), rep)
	if err != nil {
		return rep, err
	}
	if items, err = r.stage(ctx, StagePreprocess, items, rep, r.preprocess); err != nil {
		return rep, err
	}
	if r.cfg.SNR.NoiseGate > 0 {
		r.log.Info("reject records by SNR", zap.Float64("noisegate", r.cfg.SNR.NoiseGate))
		if items, err = r.stage(ctx, StageSNR, items, rep, r.snr); err != nil {
			return rep, err
		}
	}
	if items, err = r.correctBaz(ctx, items, rep); err != nil {
		return rep, err
	}
	if r.checkpoint != nil {
		if err := r.checkpoint(r.run, records(items)); err != nil {
			return rep, fmt.Errorf("pipeline: checkpoint: %w", err)
		}
	}
	return r.finish(ctx, items, rep, len(recs))
}

// Resume processes records saved at the checkpoint, starting with rotation.
func (r *Runner) Resume(ctx context.Context, recs []seis.Record) (*Report, error) {
	rep := &Report{Run: r.run}
	r.log.Info("run resumed",
		zap.Int("records", len(recs)),
		zap.String("phase", r.cfg.Decon.Phase),
		zap.Int("workers", r.workers))

	items, err := r.count(StageInput, wrap(recs), rep)
	if err != nil {
		return rep, err
	}
	return r.finish(ctx, items, rep, len(recs))
}

func (r *Runner) finish(ctx context.Context, items []item, rep *Report, total int) (*Report, error) {
	var err error
	for _, s := range []struct {
		stage Stage
		fn    func(item) (item, error)
	}{
		{StageRotate, r.rotate},
		{StageTrim, r.trim},
		{StageDecon, r.deconvolve},
		{StageQC, r.judge},
	} {
		if items, err = r.stage(ctx, s.stage, items, rep, s.fn); err != nil {
			return rep, err
		}
	}

	rep.Accepted = make([]Result, len(items))
	for i, it := range items {
		rep.Accepted[i] = Result{Record: it.rec, RFs: it.rfs}
		rep.Outcomes = append(rep.Outcomes, Outcome{ID: it.rec.ID(), Accepted: true})
	}
	r.log.Info("run finished", zap.Int("accepted", len(items)), zap.Int("dropped", total-len(items)))
	return rep, nil
}

// stage maps fn over items, drops the failures and records the count.
func (r *Runner) stage(ctx context.Context, s Stage, items []item, rep *Report, fn func(item) (item, error)) ([]item, error) {
	out, errs, err := parallel(ctx, r.workers, items, fn)
	if err != nil {
		return nil, err
	}
	kept := make([]item, 0, len(out))
	for i, e := range errs {
		if e == nil {
			kept = append(kept, out[i])
			continue
		}
		o := dropped(items[i].rec.ID(), s, e)
		rep.Outcomes = append(rep.Outcomes, o)
		r.log.Warn("record dropped",
			zap.String("event", o.ID),
			zap.String("stage", string(s)),
			zap.String("cause", o.Cause))
	}
	return r.count(s, kept, rep)
}

func (r *Runner) count(s Stage, items []item, rep *Report) ([]item, error) {
	rep.Counts = append(rep.Counts, StageCount{Stage: s, Left: len(items)})
	r.log.Info(fmt.Sprintf("%d records left after %s", len(items), s),
		zap.String("stage", string(s)),
		zap.Int("left", len(items)))
	if len(items) == 0 {
		return nil, fmt.Errorf("%w after %s", ErrNoSurvivors, s)
	}
	return items, nil
}

func wrap(recs []seis.Record) []item {
	items := make([]item, len(recs))
	for i, rec := range recs {
		items[i] = item{rec: rec}
	}
	return items
}

func records(items []item) []seis.Record {
	out := make([]seis.Record, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

// correctBaz is the barrier between the per-record stages before and after
// rotation. A search that yields no defined shift is fatal.
func (r *Runner) correctBaz(ctx context.Context, items []item, rep *Report) ([]item, error) {
	recs := records(items)
	switch r.cfg.Baz.Mode {
	case config.BazOffset:
		r.log.Info("correct back-azimuth with fixed offset", zap.Float64("offset", r.cfg.Baz.Offset))
		recs = baz.ApplyOffset(recs, r.cfg.Baz.Offset)
		rep.BazShift = r.cfg.Baz.Offset

	case config.BazSearch:
		r.log.Info("correct back-azimuth with T energy minimization", zap.Int("range", r.cfg.Baz.Range))
		opt := r.cfg.BazSearch()
		shifts, errs, err := parallel(ctx, r.workers, recs, func(rec seis.Record) (baz.Shift, error) {
			return baz.Search(rec, opt)
		})
		if err != nil {
			return nil, err
		}
		for i, e := range errs {
			if e != nil {
				return nil, fmt.Errorf("%s: %w", recs[i].ID(), e)
			}
			if !shifts[i].Defined {
				r.log.Debug("back-azimuth shift undefined",
					zap.String("event", recs[i].ID()),
					zap.String("reason", shifts[i].Reason))
			}
		}
		var mean float64
		if recs, mean, err = baz.Correct(recs, shifts); err != nil {
			return nil, err
		}
		rep.BazShift = mean
		r.log.Info(fmt.Sprintf("average %.1f deg offset in back-azimuth", mean), zap.Float64("shift", mean))

	default:
		return items, nil
	}

	out := make([]item, len(items))
	for i := range items {
		out[i] = item{rec: recs[i], rfs: items[i].rfs}
	}
	return r.count(StageBaz, out, rep)
}
