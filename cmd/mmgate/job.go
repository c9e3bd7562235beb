package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cwbudde/algo-gate/peakfit"
	"github.com/cwbudde/algo-gate/roi"
	"github.com/cwbudde/algo-gate/session"
)

// job is one gating run. It is read from a TOML file and overridden by
// flags given on the command line.
type job struct {
	Matrix      string  `toml:"matrix"`
	Format      string  `toml:"format"`
	Formats     string  `toml:"formats"`
	ROIs        string  `toml:"rois"`
	Out         string  `toml:"out"`
	Text        bool    `toml:"text"`
	Transpose   bool    `toml:"transpose"`
	Fit         string  `toml:"fit"`
	Background  string  `toml:"bg"`
	Next        bool    `toml:"next"`
	Area        string  `toml:"area"`
	Find        bool    `toml:"find"`
	Calibration float64 `toml:"calibration"`
	Verbose     bool    `toml:"verbose"`

	// Pasternak export of the -fit window (or Area when no fit is asked).
	Pasternak    string `toml:"pasternak"`
	PasternakOut string `toml:"pasternak_out"`

	// Overlay spectrum compared with the gated spectrum or the projection.
	Overlay      string `toml:"overlay"`
	OverlayScale string `toml:"overlay_scale"`
	OverlayOn    string `toml:"overlay_on"`

	// Regions added after the ROI list, as [lo, hi] pairs.
	Plus  [][2]int `toml:"plus"`
	Minus [][2]int `toml:"minus"`
	Group [][2]int `toml:"group"`
}

func loadJob(path string) (job, error) {
	var j job
	md, err := toml.DecodeFile(path, &j)
	if err != nil {
		return job{}, fmt.Errorf("job %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return job{}, fmt.Errorf("job %s: unknown keys %v", path, undecoded)
	}
	return j, nil
}

func (j job) regions() ([]roi.Region, error) {
	pairs := [...][][2]int{roi.Plus: j.Plus, roi.Minus: j.Minus, roi.Group: j.Group}
	var out []roi.Region
	for _, role := range roi.Roles {
		for _, p := range pairs[role] {
			r, err := roi.Restore(p[0], p[1], role)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}

var (
	errWindowSyntax = errors.New("window must be lo:hi")
	errScaleSyntax  = errors.New(`scale must be a non-zero number or "auto"`)
	errExportKind   = errors.New(`pasternak export must be "shape" or "singlsh"`)
	errTarget       = errors.New(`overlay target must be "gated" or "projection"`)
)

// parseScale parses an overlay factor. "auto" and the empty string select
// automatic scaling.
func parseScale(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return session.AutoScale, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%q: %w", s, errScaleSyntax)
	}
	return v, nil
}

func parseTarget(s string) (session.Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gated", "lower":
		return session.OnGated, nil
	case "projection", "upper":
		return session.OnProjection, nil
	}
	return 0, fmt.Errorf("%q: %w", s, errTarget)
}

// parseWindow parses "lo:hi". An empty string yields nil.
func parseWindow(s string) (*peakfit.Window, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%q: %w", s, errWindowSyntax)
	}
	a, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", s, errWindowSyntax)
	}
	b, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", s, errWindowSyntax)
	}
	w := peakfit.NewWindow(a, b)
	return &w, nil
}
