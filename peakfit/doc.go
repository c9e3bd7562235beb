// Package peakfit fits Gaussian peaks on a linear background in 1D spectra.
//
// A fit works on an inclusive channel window. The background is the straight
// line through the spectrum values at the two edges of a background window
// (the peak window itself when none is given), evaluated over the peak
// channels. The Gaussian
//
//	f(x) = a·exp(−(x−mu)²/(2σ²)) + bg(x)
//
// is then fitted in window-local coordinates with a Levenberg-Marquardt
// solver. Results report the centroid in channels and energy, the FWHM
// (2.355·|σ|) and the net area above the background.
//
// [Fitter.FitNext] looks for a second peak in the residual left by a
// previous fit. [Fitter.AreaUnderPeak] integrates a window without fitting.
package peakfit
