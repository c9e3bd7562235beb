package session

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-gate/gating"
	"github.com/cwbudde/algo-gate/peakfit"
)

// DefaultRefreshInterval is the period of [Session.Run].
const DefaultRefreshInterval = 200 * time.Millisecond

// Option configures a [Session].
type Option func(*config)

type config struct {
	logger  zerolog.Logger
	gating  []gating.Option
	fitting []peakfit.Option
}

func defaultConfig() config {
	return config{logger: zerolog.Nop()}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithGating passes options to every gating computation.
func WithGating(opts ...gating.Option) Option {
	return func(cfg *config) {
		cfg.gating = append(cfg.gating, opts...)
	}
}

// WithFitting passes options to the peak fitter.
func WithFitting(opts ...peakfit.Option) Option {
	return func(cfg *config) {
		cfg.fitting = append(cfg.fitting, opts...)
	}
}
