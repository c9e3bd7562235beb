package lsq

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

func lineModel(x []float64) (Func, Jacobian) {
	model := func(dst, p []float64) {
		for i, xi := range x {
			dst[i] = p[0] + p[1]*xi
		}
	}
	jac := func(dst *mat.Dense, _ []float64) {
		for i, xi := range x {
			dst.Set(i, 0, 1)
			dst.Set(i, 1, xi)
		}
	}
	return model, jac
}

func decayModel(x []float64) (Func, Jacobian) {
	model := func(dst, p []float64) {
		for i, xi := range x {
			dst[i] = p[0] * math.Exp(-p[1]*xi)
		}
	}
	jac := func(dst *mat.Dense, p []float64) {
		for i, xi := range x {
			e := math.Exp(-p[1] * xi)
			dst.Set(i, 0, e)
			dst.Set(i, 1, -p[0]*xi*e)
		}
	}
	return model, jac
}

func grid(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

func TestFitLine(t *testing.T) {
	x := grid(20)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 3 - 0.5*xi
	}
	model, jac := lineModel(x)

	res, err := Fit(y, []float64{0, 0}, model, jac, DefaultSettings())
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	if math.Abs(res.Params[0]-3) > 1e-6 || math.Abs(res.Params[1]+0.5) > 1e-6 {
		t.Fatalf("params got=%v want=[3 -0.5]", res.Params)
	}
	if res.Cost > 1e-10 {
		t.Fatalf("cost got=%g want ~0", res.Cost)
	}
}

func TestFitExponentialDecay(t *testing.T) {
	x := grid(30)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 250 * math.Exp(-0.12*xi)
	}
	model, jac := decayModel(x)

	res, err := Fit(y, []float64{100, 0.3}, model, jac, DefaultSettings())
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	if math.Abs(res.Params[0]-250)/250 > 1e-5 || math.Abs(res.Params[1]-0.12)/0.12 > 1e-5 {
		t.Fatalf("params got=%v want=[250 0.12]", res.Params)
	}
	if res.Iterations < 1 {
		t.Fatalf("iterations got=%d want>=1", res.Iterations)
	}
}

func TestFitIterationBudget(t *testing.T) {
	x := grid(30)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 250 * math.Exp(-0.12*xi)
	}
	model, jac := decayModel(x)

	s := DefaultSettings()
	s.MaxIterations = 1
	res, err := Fit(y, []float64{100, 0.3}, model, jac, s)
	if !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("expected ErrNoConvergence, got %v", err)
	}
	if res.Iterations != 1 || len(res.Params) != 2 {
		t.Fatalf("unexpected result on budget exhaustion: %+v", res)
	}
	if res.Status != optimize.IterationLimit {
		t.Fatalf("status got=%v want=%v", res.Status, optimize.IterationLimit)
	}
	if start := 0.5 * sumSquares(y, model, []float64{100, 0.3}); res.Cost >= start {
		t.Fatalf("one step did not reduce the cost: got=%g start=%g", res.Cost, start)
	}
}

func TestFitLineStopsAfterOneStep(t *testing.T) {
	x := grid(20)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 3 - 0.5*xi
	}
	model, jac := lineModel(x)

	res, err := Fit(y, []float64{0, 0}, model, jac, DefaultSettings())
	if err != nil {
		t.Fatalf("Fit error: %v", err)
	}
	// A linear model has an exact Gauss-Newton Hessian.
	if res.Iterations > 2 {
		t.Fatalf("iterations got=%d want<=2", res.Iterations)
	}
}

func sumSquares(y []float64, model Func, p []float64) float64 {
	f := make([]float64, len(y))
	model(f, p)
	sum := 0.0
	for i := range y {
		d := y[i] - f[i]
		sum += d * d
	}
	return sum
}

func TestFitInvalidInput(t *testing.T) {
	model, jac := lineModel(grid(1))

	if _, err := Fit([]float64{1}, []float64{0, 0}, model, jac, DefaultSettings()); !errors.Is(err, ErrInput) {
		t.Fatalf("expected ErrInput for underdetermined problem, got %v", err)
	}
	if _, err := Fit(nil, []float64{0}, model, jac, DefaultSettings()); !errors.Is(err, ErrInput) {
		t.Fatalf("expected ErrInput for empty data, got %v", err)
	}
	s := DefaultSettings()
	s.MaxIterations = 0
	if _, err := Fit([]float64{1, 2}, []float64{0, 0}, model, jac, s); !errors.Is(err, ErrInput) {
		t.Fatalf("expected ErrInput for zero budget, got %v", err)
	}
}
