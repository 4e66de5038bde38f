// Command rfcalc computes receiver functions for the events of a manifest.
//
// Usage:
//
//	rfcalc [flags] config.yaml
//
// The manifest, output directory and snapshot path come from the path
// section of the configuration; flags override single settings.
//
// Examples:
//
//	rfcalc rf.yaml
//	rfcalc -phase S rf.yaml
//	rfcalc -baz search -w project.msgpack rf.yaml
//	rfcalc -baz 12.5 -debug rf.yaml
//	rfcalc -resume project.msgpack rf.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	rflog "github.com/AlbertSeismo/RFs-Seispy/internal/log"
	"github.com/AlbertSeismo/RFs-Seispy/internal/manifest"
	"github.com/AlbertSeismo/RFs-Seispy/internal/project"
	"github.com/AlbertSeismo/RFs-Seispy/rf/config"
	"github.com/AlbertSeismo/RFs-Seispy/rf/pipeline"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

func main() {
	phase := flag.String("phase", "", "phase to process, P or S (default from config)")
	bazFlag := flag.String("baz", "", `back-azimuth correction: "search", "none" or an offset in degrees`)
	snapshot := flag.String("w", "", "write the working set after the back-azimuth correction to this file")
	resume := flag.String("resume", "", "start from a snapshot instead of the manifest")
	workers := flag.Int("workers", -1, "worker goroutines, 0 for one per CPU (default from config)")
	debug := flag.Bool("debug", false, "log at debug level in development format")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rfcalc [flags] config.yaml\n\n")
		fmt.Fprintf(os.Stderr, "Computes P or S receiver functions for the events of a manifest\n")
		fmt.Fprintf(os.Stderr, "and writes them as SAC files.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rfcalc rf.yaml\n")
		fmt.Fprintf(os.Stderr, "  rfcalc -phase S rf.yaml\n")
		fmt.Fprintf(os.Stderr, "  rfcalc -baz search -w project.msgpack rf.yaml\n")
		fmt.Fprintf(os.Stderr, "  rfcalc -resume project.msgpack rf.yaml\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(flag.Arg(0))
	if err != nil {
		fatal(err)
	}
	if err := override(&cfg, *phase, *bazFlag, *snapshot, *workers); err != nil {
		fatal(err)
	}

	logger, err := rflog.New(*debug)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := run(ctx, cfg, *resume, logger)
	if rep != nil {
		printCounts(rep)
	}
	if err != nil {
		fatal(err)
	}

	n, err := pipeline.WriteSAC(cfg.Path.RFPath, rep.Accepted)
	if err != nil {
		fatal(err)
	}
	logger.Info("receiver functions written", zap.Int("files", n), zap.String("dir", cfg.Path.RFPath))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// override applies the command-line settings and validates the result.
func override(cfg *config.Config, phase, bazFlag, snapshot string, workers int) error {
	if phase != "" {
		cfg.Decon.Phase = strings.ToUpper(phase)
	}
	switch bazFlag {
	case "":
	case config.BazSearch, config.BazNone:
		cfg.Baz.Mode = bazFlag
	default:
		v, err := strconv.ParseFloat(bazFlag, 64)
		if err != nil {
			return fmt.Errorf("-baz: %q is neither a mode nor a number", bazFlag)
		}
		cfg.Baz.Mode = config.BazOffset
		cfg.Baz.Offset = v
	}
	if snapshot != "" {
		cfg.Path.Project = snapshot
	}
	if workers >= 0 {
		cfg.Workers = workers
	}
	return cfg.Validate()
}

func run(ctx context.Context, cfg config.Config, resume string, logger *zap.Logger) (*pipeline.Report, error) {
	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	if resume != "" {
		snap, err := project.Load(resume)
		if err != nil {
			return nil, err
		}
		logger.Info("resuming from snapshot",
			zap.String("file", resume),
			zap.String("saved_run", snap.Run),
			zap.Int("records", len(snap.Records)))
		r, err := pipeline.New(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return r.Resume(ctx, snap.Records)
	}

	if cfg.Path.Manifest == "" {
		return nil, fmt.Errorf("%w: path.manifest: required", config.ErrInvalid)
	}
	m, err := manifest.Load(cfg.Path.Manifest)
	if err != nil {
		return nil, err
	}
	recs, fails := m.Records()
	for _, f := range fails {
		logger.Warn("event skipped", zap.String("event", f.ID), zap.Error(f.Err))
	}

	if cfg.Path.Project != "" {
		path := cfg.Path.Project
		opts = append(opts, pipeline.WithCheckpoint(func(run string, recs []seis.Record) error {
			logger.Info("saving project", zap.String("file", path), zap.Int("records", len(recs)))
			return project.Save(path, project.New(run, cfg, recs))
		}))
	}
	r, err := pipeline.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, recs)
}

func printCounts(rep *pipeline.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "STAGE\tLEFT\tDROPPED\n")
	for _, c := range rep.Counts {
		fmt.Fprintf(w, "%s\t%d\t%d\n", c.Stage, c.Left, len(rep.Dropped(c.Stage)))
	}
	w.Flush()
	if rep.BazShift != 0 {
		fmt.Printf("\nback-azimuth shift: %.1f deg\n", rep.BazShift)
	}
}
