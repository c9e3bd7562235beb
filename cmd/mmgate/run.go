package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-gate/gating"
	"github.com/cwbudde/algo-gate/matrix"
	"github.com/cwbudde/algo-gate/peakfind"
	"github.com/cwbudde/algo-gate/peakfit"
	"github.com/cwbudde/algo-gate/session"
)

var errUsage = errors.New("no matrix file given")

func run(ctx context.Context, j job, w io.Writer, log zerolog.Logger) error {
	if j.Matrix == "" {
		return errUsage
	}
	reg, err := registry(j.Formats)
	if err != nil {
		return err
	}
	format, err := resolveFormat(reg, j.Format, j.Matrix)
	if err != nil {
		return err
	}
	peak, err := parseWindow(j.Fit)
	if err != nil {
		return fmt.Errorf("-fit %w", err)
	}
	bg, err := parseWindow(j.Background)
	if err != nil {
		return fmt.Errorf("-bg %w", err)
	}
	area, err := parseWindow(j.Area)
	if err != nil {
		return fmt.Errorf("-area %w", err)
	}
	var export exportFunc
	if j.Pasternak != "" {
		if export, err = exporter(j.Pasternak); err != nil {
			return err
		}
		if peak == nil && area == nil {
			return errors.New("-pasternak needs a -fit or -area window")
		}
	}
	scale, err := parseScale(j.OverlayScale)
	if err != nil {
		return fmt.Errorf("-scale %w", err)
	}
	target, err := parseTarget(j.OverlayOn)
	if err != nil {
		return fmt.Errorf("-overlay-on %w", err)
	}
	regions, err := j.regions()
	if err != nil {
		return err
	}

	s, err := session.New(
		session.WithLogger(log),
		session.WithFitting(peakfit.WithCalibration(j.Calibration)),
	)
	if err != nil {
		return err
	}
	if err := s.LoadFile(j.Matrix, format); err != nil {
		return err
	}
	if j.Transpose {
		if err := s.Transpose(); err != nil {
			return err
		}
	}
	if j.ROIs != "" {
		if err := s.LoadROIs(j.ROIs); err != nil {
			return err
		}
	}
	if err := s.AddROI(regions...); err != nil {
		return err
	}

	sp, err := s.Refresh()
	switch {
	case errors.Is(err, gating.ErrNoPlusRegions):
		log.Warn().Msg("no plus regions: using the Y projection as gated spectrum")
	case err != nil:
		return err
	default:
		log.Info().Bool("grouped", sp.Grouped).Int("channels", len(sp.Gated)).Msg("spectrum gated")
	}

	if j.Find {
		if err := findPeaks(ctx, s, w); err != nil {
			return err
		}
	}

	if peak != nil {
		if err := fitPeaks(s, *peak, bg, j.Next, w); err != nil {
			return err
		}
	}

	if area != nil {
		a, err := s.AreaUnderPeak(*area)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Area %v: %.0f\n", *area, a)
	}

	if export != nil {
		window := area
		if peak != nil {
			window = peak
		}
		if err := writeExport(s, export, *window, j.PasternakOut, w); err != nil {
			return err
		}
		log.Info().Str("kind", j.Pasternak).Stringer("window", *window).Msg("pasternak export written")
	}

	if j.Overlay != "" {
		ov, err := s.Overlay(j.Overlay, target, scale)
		if err != nil {
			return err
		}
		printOverlay(w, ov)
	}

	if j.Out != "" {
		if j.Text {
			return s.SaveText(j.Out)
		}
		return s.Save(j.Out)
	}
	return nil
}

func registry(table string) (*matrix.Registry, error) {
	reg := matrix.NewRegistry()
	if table == "" {
		return reg, nil
	}
	f, err := os.Open(table)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	extra, err := matrix.ParseFormats(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	reg.Add(extra...)
	return reg, nil
}

func resolveFormat(reg *matrix.Registry, name, path string) (matrix.Format, error) {
	if name != "" {
		if f, ok := reg.ByLabel(name); ok {
			return f, nil
		}
		if f, ok := reg.ByExtension(name); ok {
			return f, nil
		}
		return matrix.Format{}, fmt.Errorf("unknown matrix format %q (use -list to see available)", name)
	}
	ext := filepath.Ext(path)
	if f, ok := reg.ByExtension(ext); ok {
		return f, nil
	}
	return matrix.Format{}, fmt.Errorf("no matrix format for extension %q (use -format)", ext)
}

func findPeaks(ctx context.Context, s *session.Session, w io.Writer) error {
	projection, err := s.FindProjectionPeaks(ctx)
	if err != nil {
		return err
	}
	gated, err := s.FindPeaks(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Spectrum\tChannel\tEnergy [keV]\n")
	fmt.Fprintf(tw, "--------\t-------\t------------\n")
	for _, set := range []struct {
		name  string
		peaks []int
	}{
		{"projection", projection},
		{"gated", gated},
	} {
		energies := peakfind.Energies(set.peaks, s.Calibration())
		for i, p := range set.peaks {
			fmt.Fprintf(tw, "%s\t%d\t%.1f\n", set.name, p, energies[i])
		}
	}
	return tw.Flush()
}

func fitPeaks(s *session.Session, peak peakfit.Window, bg *peakfit.Window, next bool, w io.Writer) error {
	results := make([]peakfit.Result, 0, 2)
	res, err := s.Fit(peak, bg)
	if err != nil {
		return err
	}
	results = append(results, res)
	if next {
		res, err := s.FitNext()
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Peak\tWindow\tArea\tCentroid [ch]\tE [keV]\tFWHM [keV]\n")
	fmt.Fprintf(tw, "----\t------\t----\t-------------\t-------\t----------\n")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%v\t%.0f\t%.2f\t%.1f\t%.2f\n",
			i+1, r.Window, r.Area, r.CentroidChannel, r.CentroidEnergy, r.FWHM)
	}
	return tw.Flush()
}

// exportFunc writes a Pasternak export of one window.
type exportFunc func(s *session.Session, w io.Writer, peak peakfit.Window) error

func exporter(kind string) (exportFunc, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "shape":
		return (*session.Session).ExportShape, nil
	case "singlsh":
		return (*session.Session).ExportSinglsh, nil
	}
	return nil, fmt.Errorf("%q: %w", kind, errExportKind)
}

// writeExport writes to path, or to w when path is empty.
func writeExport(s *session.Session, export exportFunc, window peakfit.Window, path string, w io.Writer) error {
	if path == "" {
		return export(s, w, window)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export(s, f, window); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printOverlay(w io.Writer, ov session.Overlay) {
	top := 0.0
	for _, v := range ov.Data {
		top = max(top, v)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Overlay\tTarget\tScale\tChannels\tMax\n")
	fmt.Fprintf(tw, "-------\t------\t-----\t--------\t---\n")
	fmt.Fprintf(tw, "%s\t%v\t%.4g\t%d\t%.0f\n", ov.Name, ov.Target, ov.Scale, len(ov.Data), top)
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printFormats(w io.Writer, formats []matrix.Format) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Label\tExt\tDimX\tDimY\tOrder\tType\tSkip\n")
	fmt.Fprintf(tw, "-----\t---\t----\t----\t-----\t----\t----\n")
	for _, f := range formats {
		l := f.Layout
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%v\t%v\t%d/%d\n",
			f.Label, f.Extension, l.DimX, l.DimY, l.Order, l.Element, l.SkipFirst, l.SkipLast)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
