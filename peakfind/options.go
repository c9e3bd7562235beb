package peakfind

import (
	"fmt"
	"math"
)

const (
	// DefaultMinWidth is the smallest wavelet width in channels.
	DefaultMinWidth = 5
	// DefaultMaxWidth is the exclusive upper wavelet width.
	DefaultMaxWidth = 25
	// DefaultNoisePercentile selects the noise floor of the smallest-width
	// response.
	DefaultNoisePercentile = 0.1
	// DefaultMinSNR is the minimum ridge signal-to-noise ratio.
	DefaultMinSNR = 1.0
)

// Option configures [Find].
type Option func(*config) error

type config struct {
	minWidth        int
	maxWidth        int
	noisePercentile float64
	minSNR          float64
	concurrency     int
}

func defaultConfig() config {
	return config{
		minWidth:        DefaultMinWidth,
		maxWidth:        DefaultMaxWidth,
		noisePercentile: DefaultNoisePercentile,
		minSNR:          DefaultMinSNR,
	}
}

// WithWidths sets the wavelet widths to min, min+1, ..., max-1.
func WithWidths(minWidth, maxWidth int) Option {
	return func(cfg *config) error {
		if minWidth < 1 || maxWidth <= minWidth {
			return fmt.Errorf("peakfind: widths must satisfy 1 <= min < max: [%d,%d)", minWidth, maxWidth)
		}
		cfg.minWidth = minWidth
		cfg.maxWidth = maxWidth
		return nil
	}
}

// WithNoisePercentile sets the percentile in [0, 100] used as noise floor.
func WithNoisePercentile(p float64) Option {
	return func(cfg *config) error {
		if p < 0 || p > 100 || math.IsNaN(p) {
			return fmt.Errorf("peakfind: noise percentile must be in [0, 100]: %f", p)
		}
		cfg.noisePercentile = p
		return nil
	}
}

// WithMinSNR sets the minimum signal-to-noise ratio of a reported peak.
func WithMinSNR(snr float64) Option {
	return func(cfg *config) error {
		if snr < 0 || math.IsNaN(snr) || math.IsInf(snr, 0) {
			return fmt.Errorf("peakfind: min SNR must be >= 0 and finite: %f", snr)
		}
		cfg.minSNR = snr
		return nil
	}
}

// WithConcurrency limits the number of widths transformed at once. Zero or
// a negative value means no limit.
func WithConcurrency(n int) Option {
	return func(cfg *config) error {
		cfg.concurrency = n
		return nil
	}
}

func (cfg config) widths() []float64 {
	out := make([]float64, 0, cfg.maxWidth-cfg.minWidth)
	for w := cfg.minWidth; w < cfg.maxWidth; w++ {
		out = append(out, float64(w))
	}
	return out
}
