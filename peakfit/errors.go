package peakfit

import (
	"errors"
	"fmt"
)

// Errors returned by fitting functions.
var (
	ErrBounds      = errors.New("peakfit: peak window outside background window")
	ErrConvergence = errors.New("peakfit: fit did not converge")
	ErrWindow      = errors.New("peakfit: invalid window")
)

// Side names the edge of a peak window that overhangs its background window.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// BoundsError reports a peak window that extends past the background window.
type BoundsError struct {
	Side       Side
	Peak       Window
	Background Window
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("peakfit: %s edge of peak %v out of background %v", e.Side, e.Peak, e.Background)
}

// Is reports whether target is [ErrBounds].
func (e *BoundsError) Is(target error) bool {
	return target == ErrBounds
}

// ConvergenceError reports a fit that ran out of iterations. Last holds the
// parameters reached so far.
type ConvergenceError struct {
	Iterations int
	Last       Result
	Err        error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("peakfit: no convergence after %d iterations (mu=%.3f sigma=%.3f): %v",
		e.Iterations, e.Last.Mu, e.Last.Sigma, e.Err)
}

// Is reports whether target is [ErrConvergence].
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrConvergence
}

func (e *ConvergenceError) Unwrap() error {
	return e.Err
}
