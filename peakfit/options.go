package peakfit

import "fmt"

const (
	// DefaultCalibration is the energy calibration in keV per channel.
	DefaultCalibration = 0.5
	// DefaultMaxIterations bounds a single fit.
	DefaultMaxIterations = 200
	// DefaultInitialSigma seeds the width of a first-peak fit, in channels.
	DefaultInitialSigma = 5.0
)

// Option configures a [Fitter].
type Option func(*config) error

type config struct {
	calibration   float64
	maxIterations int
	initialSigma  float64
}

func defaultConfig() config {
	return config{
		calibration:   DefaultCalibration,
		maxIterations: DefaultMaxIterations,
		initialSigma:  DefaultInitialSigma,
	}
}

// WithCalibration sets the energy per channel in keV.
func WithCalibration(keVPerChannel float64) Option {
	return func(cfg *config) error {
		if !(keVPerChannel > 0) {
			return fmt.Errorf("peakfit: calibration must be > 0: %v", keVPerChannel)
		}
		cfg.calibration = keVPerChannel
		return nil
	}
}

// WithMaxIterations sets the solver iteration budget.
func WithMaxIterations(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("peakfit: max iterations must be > 0: %d", n)
		}
		cfg.maxIterations = n
		return nil
	}
}

// WithInitialSigma sets the width seed used by [Fitter.Fit].
func WithInitialSigma(sigma float64) Option {
	return func(cfg *config) error {
		if !(sigma > 0) {
			return fmt.Errorf("peakfit: initial sigma must be > 0: %v", sigma)
		}
		cfg.initialSigma = sigma
		return nil
	}
}
