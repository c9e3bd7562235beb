package session

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-gate/spe"
)

// Target is the spectrum an overlay is drawn against.
type Target int

const (
	// OnGated compares with the gated spectrum.
	OnGated Target = iota
	// OnProjection compares with the X projection of the matrix.
	OnProjection
)

func (t Target) String() string {
	if t == OnProjection {
		return "projection"
	}
	return "gated"
}

// AutoScale as a factor asks [Session.Overlay] to match the overlay maximum
// to the maximum of its target.
const AutoScale = 0.0

// ErrTarget is returned for an unknown overlay target.
var ErrTarget = errors.New("session: unknown overlay target")

// Overlay is an external spectrum loaded for comparison, already scaled.
type Overlay struct {
	Name   string
	Target Target
	Scale  float64
	Data   []float64
}

// Overlay loads the spectrum at path (.spe, .err or .txt), scales it by
// factor and keeps it until [Session.ClearOverlays]. A factor of
// [AutoScale] uses the ratio of the target maximum to the overlay maximum.
func (s *Session) Overlay(path string, on Target, factor float64) (Overlay, error) {
	loaded, err := spe.LoadFile(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("overlay not loaded")
		return Overlay{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return Overlay{}, ErrNoMatrix
	}

	var reference []float64
	switch on {
	case OnGated:
		reference = s.spectra.Gated
	case OnProjection:
		reference = s.m.ProjectX()
	default:
		return Overlay{}, fmt.Errorf("%w: %d", ErrTarget, on)
	}

	if factor == AutoScale {
		factor, err = spe.AutoScale(reference, loaded.Data)
		if err != nil {
			return Overlay{}, fmt.Errorf("%s: %w", path, err)
		}
		s.log.Info().Float64("scale", factor).Stringer("target", on).Msg("auto scaling factor")
	}

	name := loaded.Name
	if name == "" {
		name = path
	}
	ov := Overlay{
		Name:   name,
		Target: on,
		Scale:  factor,
		Data:   spe.Scale(loaded.Data, factor),
	}
	s.overlays = append(s.overlays, ov)
	s.log.Debug().Str("name", ov.Name).Int("channels", len(ov.Data)).Msg("overlay added")
	return ov, nil
}

// Overlays returns the loaded overlays in load order.
func (s *Session) Overlays() []Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Overlay(nil), s.overlays...)
}

// ClearOverlays drops every overlay.
func (s *Session) ClearOverlays() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays = nil
}
