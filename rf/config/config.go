// Package config holds every setting of a receiver-function run.
//
// A Config is loaded from YAML over Default(). Unknown keys and values of
// the wrong type fail at load time; Validate checks ranges and names. The
// conversion helpers turn a validated Config into the option structs of the
// processing packages.
//
// A minimal file:
//
//	path:
//	  manifest: events.yaml
//	  rfpath: rf/
//	decon:
//	  phase: P
//	  gauss: 2.0
//	qc:
//	  criterion: crust
//	  rmsgate: 0.4
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v2"

	"github.com/AlbertSeismo/RFs-Seispy/rf/ani"
	"github.com/AlbertSeismo/RFs-Seispy/rf/baz"
	"github.com/AlbertSeismo/RFs-Seispy/rf/decon"
	"github.com/AlbertSeismo/RFs-Seispy/rf/qc"
	"github.com/AlbertSeismo/RFs-Seispy/rf/rotate"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

// ErrInvalid indicates a configuration that cannot be used.
var ErrInvalid = errors.New("config: invalid configuration")

// Back-azimuth correction modes.
const (
	BazNone   = "none"
	BazOffset = "offset"
	BazSearch = "search"
)

// Config is the full set of options.
type Config struct {
	Path       Paths      `yaml:"path"`
	Preprocess Preprocess `yaml:"preprocess"`
	SNR        SNR        `yaml:"snr"`
	Rotation   Rotation   `yaml:"rotation"`
	Baz        Baz        `yaml:"baz"`
	Decon      Decon      `yaml:"decon"`
	QC         QC         `yaml:"qc"`
	Ani        Ani        `yaml:"ani"`
	Workers    int        `yaml:"workers"` // 0 means one per CPU
}

// Paths locates inputs and outputs.
type Paths struct {
	Manifest string `yaml:"manifest"`
	RFPath   string `yaml:"rfpath"`
	Project  string `yaml:"project"` // snapshot written after the back-azimuth correction, empty disables
}

// Preprocess configures the steps applied before the SNR gate. Traces are
// always detrended.
type Preprocess struct {
	seis.ChannelFix `yaml:",inline"`

	Taper   float64 `yaml:"taper"` // fraction tapered at each end, 0 disables
	FreqMin float64 `yaml:"freqmin"`
	FreqMax float64 `yaml:"freqmax"` // 0 disables the band-pass
	Order   int     `yaml:"order"`
}

// SNR configures the signal-to-noise gate.
type SNR struct {
	NoiseGate float64 `yaml:"noisegate"` // dB, <= 0 disables
	NoiseLen  float64 `yaml:"noiselen"`  // seconds on either side of the arrival
}

// Rotation configures the target frame and the incidence search.
type Rotation struct {
	Frame     string  `yaml:"comp"`
	SearchInc bool    `yaml:"search_inc"`
	IncRange  float64 `yaml:"inc_range"`
	IncStep   float64 `yaml:"inc_step"`
	IncBefore float64 `yaml:"inc_before"`
	IncAfter  float64 `yaml:"inc_after"`
}

// Baz configures the back-azimuth correction.
type Baz struct {
	Mode    string  `yaml:"mode"`
	Offset  float64 `yaml:"offset"` // degrees, mode offset
	Range   int     `yaml:"range"`
	Before  float64 `yaml:"time_b"`
	After   float64 `yaml:"time_e"`
	FreqMin float64 `yaml:"freqmin"`
	FreqMax float64 `yaml:"freqmax"`
	Order   int     `yaml:"order"`
}

// Decon configures trimming and deconvolution.
type Decon struct {
	Phase       string  `yaml:"phase"`
	Method      string  `yaml:"decon_method"`
	Gauss       float64 `yaml:"gauss"`
	ItMax       int     `yaml:"itmax"`
	MinDeltaErr float64 `yaml:"minderr"`
	WaterLevel  float64 `yaml:"wlevel"`
	TargetDt    float64 `yaml:"target_dt"`
	TimeBefore  float64 `yaml:"time_before"`
	TimeAfter   float64 `yaml:"time_after"`
	OnlyR       bool    `yaml:"only_r"`
}

// QC configures the quality gate.
type QC struct {
	Criterion string   `yaml:"criterion"`
	RMSGate   *float64 `yaml:"rmsgate"` // nil disables
}

// Ani configures the anisotropy estimator.
type Ani struct {
	BinWidth  float64     `yaml:"bin_width"`
	TB        float64     `yaml:"tb"`
	TE        float64     `yaml:"te"`
	FastStep  float64     `yaml:"fast_step"`
	DelayMax  float64     `yaml:"delay_max"`
	DelayStep float64     `yaml:"delay_step"`
	Weights   ani.Weights `yaml:"weights"`
}

// Default returns the settings used for keys a file leaves out.
func Default() Config {
	bs := baz.DefaultSearch()
	rs := rotate.DefaultSearch()
	dp := decon.DefaultParams()
	return Config{
		Path: Paths{RFPath: "."},
		Preprocess: Preprocess{
			Taper:   0.05,
			FreqMin: 0.05,
			FreqMax: 2,
			Order:   4,
		},
		SNR: SNR{NoiseGate: 5, NoiseLen: 50},
		Rotation: Rotation{
			Frame:     string(seis.FrameRTZ),
			IncRange:  rs.Range,
			IncStep:   rs.Step,
			IncBefore: rs.Before,
			IncAfter:  rs.After,
		},
		Baz: Baz{
			Mode:    BazNone,
			Range:   bs.Range,
			Before:  bs.Before,
			After:   bs.After,
			FreqMin: bs.FreqMin,
			FreqMax: bs.FreqMax,
			Order:   bs.Order,
		},
		Decon: Decon{
			Phase:       "P",
			Method:      string(decon.MethodIterative),
			Gauss:       dp.Gauss,
			ItMax:       dp.ItMax,
			MinDeltaErr: dp.MinDeltaErr,
			WaterLevel:  dp.WaterLevel,
			TargetDt:    0.01,
			TimeBefore:  10,
			TimeAfter:   120,
		},
		QC: QC{Criterion: string(qc.CriterionCrust)},
		Ani: Ani{
			BinWidth:  10,
			TB:        3,
			TE:        7,
			FastStep:  ani.DefaultFastStep,
			DelayMax:  ani.DefaultDelayMax,
			DelayStep: ani.DefaultDelayStep,
			Weights:   ani.DefaultWeights(),
		},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func invalid(key string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, key, fmt.Sprintf(format, args...))
}

// invalidErr keeps err in the chain next to ErrInvalid.
func invalidErr(key string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
}

// Validate checks names and ranges.
func (c Config) Validate() error {
	if _, err := rotate.ParseFrame(c.Rotation.Frame); err != nil {
		return invalidErr("rotation.comp", err)
	}
	if c.Rotation.SearchInc && !(c.Rotation.IncStep > 0) {
		return invalid("rotation.inc_step", "must be > 0, got %g", c.Rotation.IncStep)
	}
	if _, err := decon.ParseMethod(c.Decon.Method); err != nil {
		return invalidErr("decon.decon_method", err)
	}
	if _, err := qc.ParseCriterion(c.QC.Criterion); err != nil {
		return invalidErr("qc.criterion", err)
	}
	switch c.Decon.Phase {
	case "P", "S":
	default:
		return invalid("decon.phase", "must be P or S, got %q", c.Decon.Phase)
	}
	if !(c.Decon.Gauss > 0) {
		return invalid("decon.gauss", "must be > 0, got %g", c.Decon.Gauss)
	}
	if !(c.Decon.TargetDt > 0) {
		return invalid("decon.target_dt", "must be > 0, got %g", c.Decon.TargetDt)
	}
	if c.Decon.TimeBefore < 0 || c.Decon.TimeAfter < 0 || c.Decon.TimeBefore+c.Decon.TimeAfter <= 0 {
		return invalid("decon.time_before", "window [-%g, %g] is empty", c.Decon.TimeBefore, c.Decon.TimeAfter)
	}
	if c.Decon.ItMax <= 0 {
		return invalid("decon.itmax", "must be > 0, got %d", c.Decon.ItMax)
	}
	if c.Decon.MinDeltaErr < 0 {
		return invalid("decon.minderr", "must be >= 0, got %g", c.Decon.MinDeltaErr)
	}
	if c.Decon.WaterLevel < 0 || c.Decon.WaterLevel >= 1 {
		return invalid("decon.wlevel", "must be in [0, 1), got %g", c.Decon.WaterLevel)
	}
	switch c.Baz.Mode {
	case BazNone, BazOffset, "":
	case BazSearch:
		if c.Baz.Range <= 0 {
			return invalid("baz.range", "must be > 0, got %d", c.Baz.Range)
		}
	default:
		return invalid("baz.mode", "must be none, offset or search, got %q", c.Baz.Mode)
	}
	if c.Preprocess.Taper < 0 || c.Preprocess.Taper > 0.5 {
		return invalid("preprocess.taper", "must be in [0, 0.5], got %g", c.Preprocess.Taper)
	}
	if c.Preprocess.FreqMax > 0 {
		if !(c.Preprocess.FreqMin > 0 && c.Preprocess.FreqMin < c.Preprocess.FreqMax) {
			return invalid("preprocess.freqmin", "need 0 < freqmin < freqmax, got %g and %g", c.Preprocess.FreqMin, c.Preprocess.FreqMax)
		}
		if c.Preprocess.Order <= 0 {
			return invalid("preprocess.order", "must be > 0, got %d", c.Preprocess.Order)
		}
	}
	if c.SNR.NoiseGate > 0 && !(c.SNR.NoiseLen > 0) {
		return invalid("snr.noiselen", "must be > 0, got %g", c.SNR.NoiseLen)
	}
	if c.QC.RMSGate != nil && *c.QC.RMSGate < 0 {
		return invalid("qc.rmsgate", "must be >= 0, got %g", *c.QC.RMSGate)
	}
	if _, err := ani.NewGrid(c.Ani.FastStep, c.Ani.DelayMax, c.Ani.DelayStep); err != nil {
		return invalidErr("ani", err)
	}
	if !(c.Ani.BinWidth > 0) || c.Ani.BinWidth > 360 {
		return invalid("ani.bin_width", "must be in (0, 360], got %g", c.Ani.BinWidth)
	}
	if c.Workers < 0 {
		return invalid("workers", "must be >= 0, got %d", c.Workers)
	}
	return nil
}

// Shift returns the zero-lag position of the receiver functions, in seconds
// after the trace start.
func (c Config) Shift() float64 {
	if c.Decon.Phase == "S" {
		return c.Decon.TimeAfter
	}
	return c.Decon.TimeBefore
}

// ExpectedLen is the sample count of every receiver function.
func (c Config) ExpectedLen() int {
	return int(math.Round((c.Decon.TimeBefore+c.Decon.TimeAfter)/c.Decon.TargetDt)) + 1
}

// WorkerCount resolves Workers.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// RotateOptions converts the rotation section. Validate must have passed.
func (c Config) RotateOptions() rotate.Options {
	f, _ := rotate.ParseFrame(c.Rotation.Frame)
	return rotate.Options{
		Frame: f,
		Phase: c.Decon.Phase,
		Search: rotate.Search{
			Enabled: c.Rotation.SearchInc,
			Range:   c.Rotation.IncRange,
			Step:    c.Rotation.IncStep,
			Before:  c.Rotation.IncBefore,
			After:   c.Rotation.IncAfter,
		},
	}
}

// BazSearch converts the baz section.
func (c Config) BazSearch() baz.SearchOptions {
	return baz.SearchOptions{
		Range:   c.Baz.Range,
		Before:  c.Baz.Before,
		After:   c.Baz.After,
		FreqMin: c.Baz.FreqMin,
		FreqMax: c.Baz.FreqMax,
		Order:   c.Baz.Order,
	}
}

// DeconOptions converts the decon section. Validate must have passed.
func (c Config) DeconOptions() decon.Options {
	m, _ := decon.ParseMethod(c.Decon.Method)
	return decon.Options{
		Method: m,
		Params: decon.Params{
			Gauss:       c.Decon.Gauss,
			ItMax:       c.Decon.ItMax,
			MinDeltaErr: c.Decon.MinDeltaErr,
			WaterLevel:  c.Decon.WaterLevel,
		},
		Phase:      c.Decon.Phase,
		OnlyR:      c.Decon.OnlyR,
		TimeBefore: c.Decon.TimeBefore,
		TimeAfter:  c.Decon.TimeAfter,
	}
}

// Gate converts the qc section. Validate must have passed.
func (c Config) Gate() qc.Gate {
	cr, _ := qc.ParseCriterion(c.QC.Criterion)
	g := qc.Gate{Criterion: cr, ExpectedLen: c.ExpectedLen()}
	if c.QC.RMSGate != nil {
		g.RMSCeiling = qc.Ceiling(*c.QC.RMSGate)
	}
	return g
}

// Grid builds the anisotropy grid. Validate must have passed.
func (c Config) Grid() ani.Grid {
	g, _ := ani.NewGrid(c.Ani.FastStep, c.Ani.DelayMax, c.Ani.DelayStep)
	return g
}
