package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-gate/gating"
	"github.com/cwbudde/algo-gate/matrix"
	"github.com/cwbudde/algo-gate/peakfind"
	"github.com/cwbudde/algo-gate/peakfit"
	"github.com/cwbudde/algo-gate/roi"
	"github.com/cwbudde/algo-gate/spe"
)

// Errors returned by Session methods.
var (
	ErrNoMatrix = errors.New("session: no matrix loaded")
	ErrNoFit    = errors.New("session: no previous fit")
)

// Session holds the state of one gating workflow.
type Session struct {
	mu sync.Mutex

	m          *matrix.Matrix
	transposed bool
	rois       roi.Set
	spectra    gating.Spectra

	fitter  *peakfit.Fitter
	lastFit *fitState

	overlays []Overlay

	gatingOpts []gating.Option
	log        zerolog.Logger
}

// fitState keeps the spectrum a fit was made on. Refresh replaces the
// gated slice and never writes into it.
type fitState struct {
	spectrum []float64
	peak     peakfit.Window
	bg       *peakfit.Window
	result   peakfit.Result
}

// New creates an empty session.
func New(opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	fitter, err := peakfit.NewFitter(cfg.fitting...)
	if err != nil {
		return nil, err
	}
	return &Session{
		fitter:     fitter,
		gatingOpts: cfg.gating,
		log:        cfg.logger.With().Str("component", "session").Logger(),
	}, nil
}

// Load replaces the matrix and clears all regions. The gated spectrum is
// reset to the Y projection until the next successful refresh.
func (s *Session) Load(m *matrix.Matrix) error {
	if m == nil {
		return ErrNoMatrix
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = m
	s.transposed = false
	s.rois.ClearAll()
	s.lastFit = nil
	s.resetSpectra()

	rows, cols := m.Dims()
	s.log.Info().Int("rows", rows).Int("cols", cols).Msg("matrix loaded")
	return nil
}

// LoadFile reads a matrix with the layout of format and loads it.
func (s *Session) LoadFile(path string, format matrix.Format) error {
	m, err := matrix.LoadFile(path, format.Layout)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Str("format", format.Label).Msg("load failed")
		return err
	}
	s.log.Debug().Str("path", path).Str("format", format.Label).Msg("decoded matrix")
	return s.Load(m)
}

// Transpose swaps the matrix axes. Regions are kept.
func (s *Session) Transpose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return ErrNoMatrix
	}
	s.m = s.m.Transpose()
	s.transposed = !s.transposed
	s.lastFit = nil
	s.resetSpectra()
	s.log.Info().Bool("transposed", s.transposed).Msg("matrix transposed")
	return nil
}

// Transposed reports whether the loaded matrix is shown transposed.
func (s *Session) Transposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transposed
}

// Matrix returns the current matrix, or nil.
func (s *Session) Matrix() *matrix.Matrix {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m
}

func (s *Session) resetSpectra() {
	s.spectra = gating.Spectra{Gated: s.m.ProjectY()}
}

// AddROI adds regions to the set.
func (s *Session) AddROI(regions ...roi.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rois.Add(regions...); err != nil {
		return err
	}
	for _, r := range regions {
		s.log.Debug().Stringer("roi", r).Msg("region added")
	}
	return nil
}

// RemoveLastROI drops the most recent region of role.
func (s *Session) RemoveLastROI(role roi.Role) (roi.Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rois.RemoveLast(role)
}

// ClearROIs empties the collection of role.
func (s *Session) ClearROIs(role roi.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rois.Clear(role)
}

// ClearAllROIs empties every collection.
func (s *Session) ClearAllROIs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rois.ClearAll()
}

// ROIs returns a copy of the region set.
func (s *Session) ROIs() *roi.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rois.Clone()
}

// LoadROIs replaces the region set with the list at path.
func (s *Session) LoadROIs(path string) error {
	set, err := roi.LoadList(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("roi list not loaded")
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rois = *set
	s.log.Info().Str("path", path).
		Int("plus", set.Len(roi.Plus)).
		Int("minus", set.Len(roi.Minus)).
		Int("group", set.Len(roi.Group)).
		Msg("roi list loaded")
	return nil
}

// Spectra returns the last good gated and error spectra.
func (s *Session) Spectra() gating.Spectra {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spectra
}

// Refresh recomputes the gated and error spectra. On failure the previous
// spectra stay in place and the error is returned.
func (s *Session) Refresh() (gating.Spectra, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return gating.Spectra{}, ErrNoMatrix
	}

	next, err := gating.Compute(s.m, &s.rois, s.gatingOpts...)
	if err != nil {
		s.log.Debug().Err(err).Msg("refresh skipped")
		return s.spectra, err
	}
	s.spectra = next
	return next, nil
}

// Run refreshes every interval until ctx is done. A non-positive interval
// uses [DefaultRefreshInterval]. Refresh failures are logged and do not stop
// the loop.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Debug().Dur("interval", interval).Msg("refresh loop started")
	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("refresh loop stopped")
			return ctx.Err()
		case <-ticker.C:
			_, _ = s.Refresh()
		}
	}
}

// FindPeaks searches the current gated spectrum.
func (s *Session) FindPeaks(ctx context.Context, opts ...peakfind.Option) ([]int, error) {
	data, err := s.gatedSpectrum()
	if err != nil {
		return nil, err
	}
	return peakfind.Find(ctx, data, opts...)
}

// FindProjectionPeaks searches the X projection of the matrix.
func (s *Session) FindProjectionPeaks(ctx context.Context, opts ...peakfind.Option) ([]int, error) {
	m := s.Matrix()
	if m == nil {
		return nil, ErrNoMatrix
	}
	return peakfind.Find(ctx, m.ProjectX(), opts...)
}

// Fit fits a peak in the current gated spectrum and remembers it for
// [Session.FitNext].
func (s *Session) Fit(peak peakfit.Window, bg *peakfit.Window) (peakfit.Result, error) {
	data, err := s.gatedSpectrum()
	if err != nil {
		return peakfit.Result{}, err
	}
	res, err := s.fitter.Fit(data, peak, bg)
	if err != nil {
		s.log.Error().Err(err).Stringer("peak", peak).Msg("peak fit failed")
		return res, err
	}

	state := &fitState{spectrum: data, peak: res.Window, result: res}
	if bg != nil {
		w := *bg
		state.bg = &w
	}
	s.mu.Lock()
	s.lastFit = state
	s.mu.Unlock()
	s.logFit("peak fitted", res)
	return res, nil
}

// FitNext fits a second peak in the residual of the last [Session.Fit].
// The residual is taken from the spectrum that fit was made on, so region
// edits and refreshes in between do not change it.
func (s *Session) FitNext() (peakfit.Result, error) {
	s.mu.Lock()
	last := s.lastFit
	s.mu.Unlock()
	if last == nil {
		return peakfit.Result{}, ErrNoFit
	}

	res, err := s.fitter.FitNext(last.spectrum, last.peak, last.bg, last.result)
	if err != nil {
		s.log.Error().Err(err).Stringer("peak", last.peak).Msg("next peak fit failed")
		return res, err
	}
	s.logFit("next peak fitted", res)
	return res, nil
}

// AreaUnderPeak integrates the current gated spectrum above a linear
// background.
func (s *Session) AreaUnderPeak(peak peakfit.Window) (float64, error) {
	data, err := s.gatedSpectrum()
	if err != nil {
		return 0, err
	}
	return s.fitter.AreaUnderPeak(data, peak)
}

func (s *Session) logFit(msg string, res peakfit.Result) {
	s.log.Info().
		Float64("area", res.Area).
		Float64("energy_kev", res.CentroidEnergy).
		Float64("fwhm_kev", res.FWHM).
		Int("iterations", res.Iterations).
		Msg(msg)
}

// Calibration returns the energy per channel used for fits.
func (s *Session) Calibration() float64 {
	return s.fitter.Calibration()
}

func (s *Session) gatedSpectrum() ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return nil, ErrNoMatrix
	}
	return s.spectra.Gated, nil
}

// ExportShape writes the peak window of the gated and error spectra for
// peak-shape fitting. The spectra are recomputed first.
func (s *Session) ExportShape(w io.Writer, peak peakfit.Window) error {
	sp, _, err := s.snapshot()
	if err != nil {
		return err
	}
	peak = peakfit.NewWindow(peak.Lo, peak.Hi)
	if err := checkWindow(sp.Gated, peak); err != nil {
		return err
	}
	return spe.WritePasternakShape(w, peak.Lo, sp.Gated[peak.Lo:peak.Hi+1], sp.Error[peak.Lo:peak.Hi+1])
}

// ExportSinglsh writes the peak window of the current gated spectrum with
// its linear background.
func (s *Session) ExportSinglsh(w io.Writer, peak peakfit.Window) error {
	data, err := s.gatedSpectrum()
	if err != nil {
		return err
	}
	peak = peakfit.NewWindow(peak.Lo, peak.Hi)
	if err := checkWindow(data, peak); err != nil {
		return err
	}
	return spe.WritePasternakSinglsh(w, peak.Lo, data[peak.Lo:peak.Hi+1])
}

func checkWindow(data []float64, w peakfit.Window) error {
	if w.Lo < 0 || w.Hi >= len(data) {
		return fmt.Errorf("%w: %v outside %d channels", peakfit.ErrWindow, w, len(data))
	}
	return nil
}

// Save writes base.spe, base.err and base.rl.
func (s *Session) Save(base string) error {
	sp, rois, err := s.snapshot()
	if err != nil {
		return err
	}
	name := base + spe.Ext

	var g errgroup.Group
	g.Go(func() error {
		return writeFile(name, func(w io.Writer) error { return spe.WriteSPE(w, name, sp.Gated) })
	})
	g.Go(func() error {
		return writeFile(base+spe.ErrExt, func(w io.Writer) error { return spe.WriteSPE(w, name, sp.Error) })
	})
	g.Go(func() error {
		_, err := roi.SaveList(base, rois)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Str("base", base).Msg("save failed")
		return err
	}
	s.log.Info().Str("base", base).Bool("grouped", sp.Grouped).Msg("spectra saved")
	return nil
}

// SaveText writes base.txt, baseerr.txt and base.rl.
func (s *Session) SaveText(base string) error {
	sp, rois, err := s.snapshot()
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		return writeFile(base+spe.TextExt, func(w io.Writer) error { return spe.WriteText(w, sp.Gated) })
	})
	g.Go(func() error {
		return writeFile(base+"err"+spe.TextExt, func(w io.Writer) error { return spe.WriteText(w, sp.Error) })
	})
	g.Go(func() error {
		_, err := roi.SaveList(base, rois)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Str("base", base).Msg("save failed")
		return err
	}
	s.log.Info().Str("base", base).Msg("text spectra saved")
	return nil
}

func (s *Session) snapshot() (gating.Spectra, *roi.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return gating.Spectra{}, nil, ErrNoMatrix
	}
	rois := s.rois.Clone()
	sp, err := gating.Compute(s.m, rois, s.gatingOpts...)
	if err != nil {
		return gating.Spectra{}, nil, err
	}
	return sp, rois, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("session: close %s: %w", path, err)
	}
	return nil
}
