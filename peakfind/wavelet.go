package peakfind

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Ricker returns the Mexican hat wavelet of width a sampled on points
// channels centred on (points-1)/2:
//
//	A·(1 − x²/a²)·exp(−x²/(2a²)),  A = 2/(√(3a)·π^¼)
func Ricker(points int, a float64) []float64 {
	if points <= 0 {
		return nil
	}
	amp := 2 / (math.Sqrt(3*a) * math.Pow(math.Pi, 0.25))
	wsq := a * a

	mod := make([]float64, points)
	gauss := make([]float64, points)
	center := float64(points-1) / 2
	for i := range mod {
		x := float64(i) - center
		xsq := x * x
		mod[i] = amp * (1 - xsq/wsq)
		gauss[i] = math.Exp(-xsq / (2 * wsq))
	}
	vecmath.MulBlockInPlace(mod, gauss)
	return mod
}
