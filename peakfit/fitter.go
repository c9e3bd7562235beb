package peakfit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-gate/internal/lsq"
)

// fwhmPerSigma converts a Gaussian σ to its full width at half maximum.
const fwhmPerSigma = 2.355

// Window is an inclusive channel range.
type Window struct {
	Lo, Hi int
}

// NewWindow returns the window spanning a and b in either order.
func NewWindow(a, b int) Window {
	if a > b {
		a, b = b, a
	}
	return Window{Lo: a, Hi: b}
}

// Len returns the number of channels in w.
func (w Window) Len() int {
	return w.Hi - w.Lo + 1
}

func (w Window) String() string {
	return fmt.Sprintf("[%d,%d]", w.Lo, w.Hi)
}

// Result describes one fitted peak.
type Result struct {
	Window Window

	Amplitude float64
	Mu        float64 // centroid relative to Window.Lo
	Sigma     float64 // always >= 0

	CentroidChannel float64
	CentroidEnergy  float64 // keV
	FWHM            float64 // keV
	Area            float64

	// Background is Intercept + Slope·channel in absolute channels.
	BackgroundSlope     float64
	BackgroundIntercept float64

	// Model is the fitted curve, background included, over Window.
	Model      []float64
	Background []float64

	Iterations int
}

// Fitter fits peaks with a fixed calibration and solver budget.
type Fitter struct {
	calibration   float64
	maxIterations int
	initialSigma  float64
}

// NewFitter creates a fitter with defaults and optional overrides.
func NewFitter(opts ...Option) (*Fitter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Fitter{
		calibration:   cfg.calibration,
		maxIterations: cfg.maxIterations,
		initialSigma:  cfg.initialSigma,
	}, nil
}

// Calibration returns the energy per channel in keV.
func (f *Fitter) Calibration() float64 {
	return f.calibration
}

// Fit fits a single Gaussian in the peak window. bg selects the background
// window; nil uses the peak window.
func (f *Fitter) Fit(spectrum []float64, peak Window, bg *Window) (Result, error) {
	peak = NewWindow(peak.Lo, peak.Hi)
	segment, line, err := prepare(spectrum, peak, bg)
	if err != nil {
		return Result{}, err
	}
	seed := []float64{floats.Max(segment), midpoint(peak), f.initialSigma}
	return f.solve(segment, line, peak, seed)
}

// FitNext fits a second Gaussian in the residual left by prev, which must
// come from a fit over the same peak window. The width is seeded with
// prev.Sigma and left free.
func (f *Fitter) FitNext(spectrum []float64, peak Window, bg *Window, prev Result) (Result, error) {
	peak = NewWindow(peak.Lo, peak.Hi)
	segment, line, err := prepare(spectrum, peak, bg)
	if err != nil {
		return Result{}, err
	}
	if len(prev.Model) != len(segment) {
		return Result{}, fmt.Errorf("%w: previous fit covers %d channels, window %v has %d",
			ErrWindow, len(prev.Model), peak, len(segment))
	}

	residual := make([]float64, len(segment))
	floats.SubTo(residual, segment, prev.Model)
	floats.Add(residual, line.values)

	sigma := math.Abs(prev.Sigma)
	if sigma == 0 {
		sigma = f.initialSigma
	}
	seed := []float64{floats.Max(residual), midpoint(peak), sigma}
	return f.solve(residual, line, peak, seed)
}

// AreaUnderPeak sums the spectrum in the window above the straight line
// through its two edge samples.
func (f *Fitter) AreaUnderPeak(spectrum []float64, peak Window) (float64, error) {
	peak = NewWindow(peak.Lo, peak.Hi)
	segment, line, err := prepare(spectrum, peak, nil)
	if err != nil {
		return 0, err
	}
	return floats.Sum(segment) - floats.Sum(line.values), nil
}

func (f *Fitter) solve(y []float64, line background, peak Window, seed []float64) (Result, error) {
	model, jac := gaussian(line.values)

	settings := lsq.DefaultSettings()
	settings.MaxIterations = f.maxIterations
	sol, err := lsq.Fit(y, seed, model, jac, settings)
	if err != nil && !errors.Is(err, lsq.ErrNoConvergence) {
		return Result{}, fmt.Errorf("peakfit: %w", err)
	}

	res := f.result(sol.Params, line, peak, model)
	res.Iterations = sol.Iterations
	if err != nil {
		return res, &ConvergenceError{Iterations: sol.Iterations, Last: res, Err: err}
	}
	return res, nil
}

func (f *Fitter) result(p []float64, line background, peak Window, model lsq.Func) Result {
	curve := make([]float64, len(line.values))
	model(curve, p)

	sigma := math.Abs(p[2])
	centroid := p[1] + float64(peak.Lo)
	return Result{
		Window:              peak,
		Amplitude:           p[0],
		Mu:                  p[1],
		Sigma:               sigma,
		CentroidChannel:     centroid,
		CentroidEnergy:      centroid * f.calibration,
		FWHM:                fwhmPerSigma * sigma * f.calibration,
		Area:                floats.Sum(curve) - floats.Sum(line.values),
		BackgroundSlope:     line.slope,
		BackgroundIntercept: line.intercept,
		Model:               curve,
		Background:          append([]float64(nil), line.values...),
	}
}

// gaussian returns a·exp(−(x−mu)²/(2σ²)) + bg[x] and its Jacobian over the
// local channels 0..len(bg)-1.
func gaussian(bg []float64) (lsq.Func, lsq.Jacobian) {
	model := func(dst, p []float64) {
		a, mu, s2 := p[0], p[1], p[2]*p[2]
		for x := range dst {
			d := float64(x) - mu
			dst[x] = a*math.Exp(-d*d/(2*s2)) + bg[x]
		}
	}
	jac := func(dst *mat.Dense, p []float64) {
		a, mu, s := p[0], p[1], p[2]
		s2 := s * s
		for x := range bg {
			d := float64(x) - mu
			g := math.Exp(-d * d / (2 * s2))
			dst.Set(x, 0, g)
			dst.Set(x, 1, a*g*d/s2)
			dst.Set(x, 2, a*g*d*d/(s2*s))
		}
	}
	return model, jac
}

// background is the straight line through the edges of a background
// window, evaluated over a peak window.
type background struct {
	slope, intercept float64
	values           []float64
}

// prepare expects a normalized peak window.
func prepare(spectrum []float64, peak Window, bg *Window) ([]float64, background, error) {
	bgWin := peak
	if bg != nil {
		bgWin = NewWindow(bg.Lo, bg.Hi)
	}
	if err := checkWindow(spectrum, peak, "peak"); err != nil {
		return nil, background{}, err
	}
	if err := checkWindow(spectrum, bgWin, "background"); err != nil {
		return nil, background{}, err
	}
	if peak.Lo < bgWin.Lo {
		return nil, background{}, &BoundsError{Side: Left, Peak: peak, Background: bgWin}
	}
	if peak.Hi > bgWin.Hi {
		return nil, background{}, &BoundsError{Side: Right, Peak: peak, Background: bgWin}
	}

	line := background{}
	if bgWin.Hi > bgWin.Lo {
		line.slope = (spectrum[bgWin.Hi] - spectrum[bgWin.Lo]) / float64(bgWin.Hi-bgWin.Lo)
	}
	line.intercept = spectrum[bgWin.Lo] - line.slope*float64(bgWin.Lo)
	line.values = make([]float64, peak.Len())
	for i := range line.values {
		line.values[i] = line.intercept + line.slope*float64(peak.Lo+i)
	}

	segment := append([]float64(nil), spectrum[peak.Lo:peak.Hi+1]...)
	return segment, line, nil
}

func checkWindow(spectrum []float64, w Window, name string) error {
	if len(spectrum) == 0 {
		return fmt.Errorf("%w: empty spectrum", ErrWindow)
	}
	if w.Lo < 0 || w.Hi >= len(spectrum) {
		return fmt.Errorf("%w: %s window %v outside spectrum of %d channels", ErrWindow, name, w, len(spectrum))
	}
	return nil
}

func midpoint(w Window) float64 {
	return float64(w.Hi-w.Lo) / 2
}
