// Package gating projects a coincidence matrix through plus/minus gates into
// background-subtracted spectra.
//
// Signal (plus) gates are summed column by column; background (minus) gates
// are summed the same way and scaled by the suppression factor
//
//	k = Σ width(plus) / Σ width(minus)
//
// so that the background carries the statistical weight of the signal gates.
// The gated spectrum is raw − k·bg and its error (variance) spectrum is
// raw + k²·bg, the propagated variance of a difference of Poisson counts.
//
// Group gates split the plus/minus gates into independent sets: every gate
// strictly inside a group is normalized with that group's own factor and the
// per-group results are summed.
//
// All functions are pure: they read the matrix and the caller's region
// collections and return a fresh slice.
package gating
