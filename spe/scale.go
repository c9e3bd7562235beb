package spe

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// ErrZeroScale is returned by AutoScale when the overlay maximum is zero.
var ErrZeroScale = errors.New("spe: overlay maximum is zero")

// AutoScale returns the factor that brings the maximum of overlay to the
// maximum of reference.
func AutoScale(reference, overlay []float64) (float64, error) {
	if len(reference) == 0 || len(overlay) == 0 {
		return 0, ErrEmpty
	}
	top := floats.Max(overlay)
	if top == 0 {
		return 0, ErrZeroScale
	}
	return floats.Max(reference) / top, nil
}

// Scale returns data multiplied by factor.
func Scale(data []float64, factor float64) []float64 {
	out := make([]float64, len(data))
	floats.ScaleTo(out, factor, data)
	return out
}
