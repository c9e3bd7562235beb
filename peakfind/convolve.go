package peakfind

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/floats"
)

// directThreshold is the longest kernel convolved in the time domain.
const directThreshold = 64

// roundOff is the magnitude, relative to the largest output sample, below
// which FFT results are flushed to zero.
const roundOff = 1e-12

// convolveSame returns the linear convolution of data and kernel cropped to
// len(data) samples, centred on the kernel. kernel must not be longer than
// data.
func convolveSame(data, kernel []float64) ([]float64, error) {
	var (
		full []float64
		err  error
	)
	if len(kernel) <= directThreshold {
		full = convolveDirect(data, kernel)
	} else {
		full, err = convolveFFT(data, kernel)
		if err != nil {
			return nil, err
		}
	}
	start := (len(kernel) - 1) / 2
	return full[start : start+len(data)], nil
}

func convolveDirect(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, v := range a {
		floats.AddScaled(out[i:i+len(b)], v, b)
	}
	return out
}

func convolveFFT(a, b []float64) ([]float64, error) {
	n := len(a) + len(b) - 1
	size := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("peakfind: failed to create FFT plan: %w", err)
	}

	sig := make([]complex128, size)
	ker := make([]complex128, size)
	for i, v := range a {
		sig[i] = complex(v, 0)
	}
	for i, v := range b {
		ker[i] = complex(v, 0)
	}
	if err := plan.Forward(sig, sig); err != nil {
		return nil, fmt.Errorf("peakfind: forward FFT failed: %w", err)
	}
	if err := plan.Forward(ker, ker); err != nil {
		return nil, fmt.Errorf("peakfind: forward FFT failed: %w", err)
	}
	for i := range sig {
		sig[i] *= ker[i]
	}
	if err := plan.Inverse(sig, sig); err != nil {
		return nil, fmt.Errorf("peakfind: inverse FFT failed: %w", err)
	}

	out := make([]float64, n)
	peak := 0.0
	for i := range out {
		out[i] = real(sig[i])
		peak = math.Max(peak, math.Abs(out[i]))
	}
	// Flat regions must stay flat or round-off shows up as local maxima.
	floor := peak * roundOff
	for i, v := range out {
		if math.Abs(v) < floor {
			out[i] = 0
		}
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
