// Package peakfind locates peaks in a 1D spectrum with a continuous wavelet
// transform.
//
// The spectrum is convolved with Ricker (Mexican hat) wavelets over a range
// of widths. Local maxima are chained across widths into ridge lines; a
// ridge that persists over enough widths and whose smallest-width response
// stands out from the local noise floor marks a peak. Noise is estimated as
// a low percentile of the smallest-width response in a sliding window.
//
// Per-width transforms run concurrently and stop as soon as the caller's
// context is cancelled.
package peakfind
