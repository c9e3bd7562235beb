package testutil

import (
	"math"
	"math/rand"
)

// Gaussian returns amplitude*exp(-(x-mu)^2/(2 sigma^2)) sampled on channels
// 0..length-1.
func Gaussian(amplitude, mu, sigma float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		d := float64(i) - mu
		out[i] = amplitude * math.Exp(-d*d/(2*sigma*sigma))
	}
	return out
}

// Line returns intercept + slope*x sampled on channels 0..length-1.
func Line(slope, intercept float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = intercept + slope*float64(i)
	}
	return out
}

// Sum adds equally long slices element-wise into a new slice.
func Sum(parts ...[]float64) []float64 {
	if len(parts) == 0 {
		return nil
	}
	out := make([]float64, len(parts[0]))
	for _, p := range parts {
		for i := range out {
			out[i] += p[i]
		}
	}
	return out
}

// CountGrid returns a rows x cols row-major grid of deterministic
// non-negative integer counts.
func CountGrid(seed int64, rows, cols, maxCount int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, rows*cols)
	for i := range out {
		out[i] = float64(rng.Intn(maxCount + 1))
	}
	return out
}
