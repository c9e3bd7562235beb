// Command mmgate gates a gamma-gamma coincidence matrix and analyses the
// resulting spectrum.
//
// Usage:
//
//	mmgate [flags] [matrix-file]
//
// The matrix format is taken from -format or, by default, from the file
// extension. Gates come from an ROI list (-rois) and/or a TOML job file
// (-config). Flags given on the command line override the job file.
//
// Examples:
//
//	mmgate -rois gates.rl -out gate1 run7.mat
//	mmgate -rois gates.rl -fit 1320:1360 -bg 1300:1380 -next run7.mat
//	mmgate -find -calib 0.5 run7.m4b
//	mmgate -rois gates.rl -area 1320:1360 -pasternak singlsh -pasternak-out peak.dat run7.mat
//	mmgate -rois gates.rl -overlay ref.spe -scale auto run7.mat
//	mmgate -config job.toml
//	mmgate -formats types.txt -list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-gate/peakfit"
)

func main() {
	configPath := flag.String("config", "", "TOML job file")
	matrixPath := flag.String("matrix", "", "matrix file (or give it as the first argument)")
	format := flag.String("format", "", "matrix format label or extension (default: from the file extension)")
	formats := flag.String("formats", "", "legacy matrix type table with additional formats")
	list := flag.Bool("list", false, "list known matrix formats and exit")
	rois := flag.String("rois", "", "ROI list file (.rl)")
	out := flag.String("out", "", "output base name: writes base.spe, base.err and base.rl")
	text := flag.Bool("text", false, "with -out, write base.txt and baseerr.txt instead of .spe/.err")
	transpose := flag.Bool("transpose", false, "transpose the matrix before gating")
	fit := flag.String("fit", "", "fit a Gaussian peak in channels lo:hi")
	bg := flag.String("bg", "", "background window lo:hi for -fit (default: the fit window)")
	next := flag.Bool("next", false, "with -fit, fit a second peak in the residual")
	area := flag.String("area", "", "print the area above a linear background in channels lo:hi")
	pasternak := flag.String("pasternak", "", "write a Pasternak export (shape or singlsh) of the -fit or -area window")
	pasternakOut := flag.String("pasternak-out", "", "file for -pasternak (default: standard output)")
	overlay := flag.String("overlay", "", "overlay spectrum file (.spe, .err or .txt)")
	scale := flag.String("scale", "auto", "overlay scaling factor or auto")
	overlayOn := flag.String("overlay-on", "gated", "overlay target: gated or projection")
	find := flag.Bool("find", false, "search peaks in the X projection and the gated spectrum")
	calib := flag.Float64("calib", peakfit.DefaultCalibration, "energy calibration in keV/channel")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mmgate [flags] [matrix-file]\n\n")
		fmt.Fprintf(os.Stderr, "Gates a coincidence matrix through plus/minus/group regions,\n")
		fmt.Fprintf(os.Stderr, "fits and searches peaks, and saves the gated spectra.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mmgate -rois gates.rl -out gate1 run7.mat\n")
		fmt.Fprintf(os.Stderr, "  mmgate -rois gates.rl -fit 1320:1360 -bg 1300:1380 -next run7.mat\n")
		fmt.Fprintf(os.Stderr, "  mmgate -find -calib 0.5 run7.m4b\n")
		fmt.Fprintf(os.Stderr, "  mmgate -rois gates.rl -area 1320:1360 -pasternak singlsh run7.mat\n")
		fmt.Fprintf(os.Stderr, "  mmgate -rois gates.rl -overlay ref.spe -scale auto run7.mat\n")
		fmt.Fprintf(os.Stderr, "  mmgate -config job.toml\n")
	}
	flag.Parse()

	j := job{Calibration: peakfit.DefaultCalibration}
	if *configPath != "" {
		loadedJob, err := loadJob(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		j = loadedJob
		if j.Calibration == 0 {
			j.Calibration = peakfit.DefaultCalibration
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "matrix":
			j.Matrix = *matrixPath
		case "format":
			j.Format = *format
		case "formats":
			j.Formats = *formats
		case "rois":
			j.ROIs = *rois
		case "out":
			j.Out = *out
		case "text":
			j.Text = *text
		case "transpose":
			j.Transpose = *transpose
		case "fit":
			j.Fit = *fit
		case "bg":
			j.Background = *bg
		case "next":
			j.Next = *next
		case "area":
			j.Area = *area
		case "pasternak":
			j.Pasternak = *pasternak
		case "pasternak-out":
			j.PasternakOut = *pasternakOut
		case "overlay":
			j.Overlay = *overlay
		case "scale":
			j.OverlayScale = *scale
		case "overlay-on":
			j.OverlayOn = *overlayOn
		case "find":
			j.Find = *find
		case "calib":
			j.Calibration = *calib
		case "v":
			j.Verbose = *verbose
		}
	})
	if flag.NArg() > 0 && j.Matrix == "" {
		j.Matrix = flag.Arg(0)
	}

	log := newLogger(os.Stderr, j.Verbose)

	if *list {
		reg, err := registry(j.Formats)
		if err != nil {
			log.Error().Err(err).Msg("format table not loaded")
			os.Exit(1)
		}
		printFormats(os.Stdout, reg.Formats())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, j, os.Stdout, log); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		log.Error().Err(err).Msg("mmgate failed")
		stop()
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}
