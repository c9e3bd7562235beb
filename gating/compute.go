package gating

import (
	"github.com/cwbudde/algo-gate/matrix"
	"github.com/cwbudde/algo-gate/roi"
)

// Spectra is a gated spectrum together with its variance spectrum.
type Spectra struct {
	Gated   []float64
	Error   []float64
	Grouped bool // group regions were used
}

// Compute gates m through the regions of s. Grouped gating is used whenever
// s holds at least one group region.
func Compute(m *matrix.Matrix, s *roi.Set, opts ...Option) (Spectra, error) {
	if len(s.Group) > 0 {
		gated, err := GatedWithGroups(m, s.Group, s.Plus, s.Minus, opts...)
		if err != nil {
			return Spectra{}, err
		}
		variance, err := ErrorWithGroups(m, s.Group, s.Plus, s.Minus, opts...)
		if err != nil {
			return Spectra{}, err
		}
		return Spectra{Gated: gated, Error: variance, Grouped: true}, nil
	}

	gated, err := Gated(m, s.Plus, s.Minus)
	if err != nil {
		return Spectra{}, err
	}
	variance, err := Error(m, s.Plus, s.Minus)
	if err != nil {
		return Spectra{}, err
	}
	return Spectra{Gated: gated, Error: variance}, nil
}
