// Command rfani estimates crustal anisotropy from P receiver functions.
//
// Usage:
//
//	rfani [flags] [rf-dir]
//
// It reads the radial/transverse SAC pairs written by rfcalc, stacks them
// by back azimuth and grid-searches the fast direction and delay time.
// Without rf-dir the rfpath of the configuration is used.
//
// Examples:
//
//	rfani rf/
//	rfani -c rf.yaml -tb 2 -te 6
//	rfani -o grid.msgpack rf/
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	rflog "github.com/AlbertSeismo/RFs-Seispy/internal/log"
	"github.com/AlbertSeismo/RFs-Seispy/rf/ani"
	"github.com/AlbertSeismo/RFs-Seispy/rf/config"
	"github.com/AlbertSeismo/RFs-Seispy/rf/pipeline"
)

func main() {
	cfgPath := flag.String("c", "", "configuration file (defaults apply without one)")
	out := flag.String("o", "", "write the full grid as MessagePack to this file")
	tb := flag.Float64("tb", -1, "analysis window start after zero lag, seconds (default from config)")
	te := flag.Float64("te", -1, "analysis window end after zero lag, seconds (default from config)")
	debug := flag.Bool("debug", false, "log at debug level in development format")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rfani [flags] [rf-dir]\n\n")
		fmt.Fprintf(os.Stderr, "Estimates the fast direction and delay time of crustal anisotropy\n")
		fmt.Fprintf(os.Stderr, "from radial and transverse P receiver functions.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rfani rf/\n")
		fmt.Fprintf(os.Stderr, "  rfani -c rf.yaml -tb 2 -te 6\n")
		fmt.Fprintf(os.Stderr, "  rfani -o grid.msgpack rf/\n")
	}
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fatal(err)
		}
	}
	if *tb >= 0 {
		cfg.Ani.TB = *tb
	}
	if *te >= 0 {
		cfg.Ani.TE = *te
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	dir := cfg.Path.RFPath
	switch flag.NArg() {
	case 0:
	case 1:
		dir = flag.Arg(0)
	default:
		flag.Usage()
		os.Exit(2)
	}

	logger, err := rflog.New(*debug)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	samples, delta, shift, err := pipeline.ReadSamples(dir)
	if err != nil {
		fatal(err)
	}
	logger.Info("receiver functions read",
		zap.String("dir", dir),
		zap.Int("pairs", len(samples)),
		zap.Float64("delta", delta),
		zap.Float64("shift", shift))

	g, err := pipeline.Anisotropy(samples, delta, shift, cfg)
	if err != nil {
		fatal(err)
	}
	printBest(g, len(samples))

	if *out != "" {
		if err := writeGrid(*out, g); err != nil {
			fatal(err)
		}
		logger.Info("grid written", zap.String("file", *out))
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func printBest(g *ani.AnisotropyGrid, n int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "FAST (deg)\tDELAY (s)\tRECORDS\n")
	for _, p := range g.Best {
		fmt.Fprintf(w, "%.1f\t%.2f\t%d\n", p.Fast, p.Delay, n)
	}
	w.Flush()
}

func writeGrid(path string, g *ani.AnisotropyGrid) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return g.Encode(f)
}
