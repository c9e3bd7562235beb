// Package lsq fits nonlinear models by least squares on top of
// gonum/optimize.
//
// The objective ½‖y − f(p)‖² is minimised with [optimize.Newton] using the
// Gauss-Newton Hessian JᵀJ built from the model Jacobian. Newton adds a
// multiple of the identity when JᵀJ is singular, which plays the role of
// Levenberg-Marquardt damping.
package lsq

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Errors returned by Fit.
var (
	ErrNoConvergence = errors.New("lsq: iteration limit reached without convergence")
	ErrInput         = errors.New("lsq: invalid input")
)

// Func writes the model value for every observation into dst given
// parameters p.
type Func func(dst, p []float64)

// Jacobian writes d model_i / d p_j into dst (observations x parameters).
type Jacobian func(dst *mat.Dense, p []float64)

// Settings bounds the solver.
type Settings struct {
	MaxIterations int     // Newton steps
	FTol          float64 // relative cost reduction
	GTol          float64 // gradient max-norm
}

// DefaultSettings mirrors the MINPACK defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 200,
		FTol:          1.49012e-8,
		GTol:          1e-12,
	}
}

// Result is the solver state when it stopped.
type Result struct {
	Params     []float64
	Cost       float64 // half the residual sum of squares
	Iterations int
	Status     optimize.Status
}

// Fit minimizes Σ(y_i − model_i(p))² starting from p0. When the iteration
// budget runs out it returns the last accepted state together with
// ErrNoConvergence.
func Fit(y, p0 []float64, model Func, jac Jacobian, s Settings) (Result, error) {
	n, m := len(y), len(p0)
	if n == 0 || m == 0 {
		return Result{}, fmt.Errorf("%w: %d observations, %d parameters", ErrInput, n, m)
	}
	if n < m {
		return Result{}, fmt.Errorf("%w: %d observations cannot fix %d parameters", ErrInput, n, m)
	}
	if s.MaxIterations <= 0 {
		return Result{}, fmt.Errorf("%w: iteration budget must be > 0: %d", ErrInput, s.MaxIterations)
	}

	ls := newProblem(y, m, model, jac)
	if cost := ls.cost(p0); math.IsInf(cost, 1) {
		return Result{}, fmt.Errorf("%w: non-finite residual at the starting point", ErrInput)
	}

	settings := &optimize.Settings{
		GradientThreshold: s.GTol,
		// The starting point counts as the first major iteration.
		MajorIterations: s.MaxIterations + 1,
		Converger: &optimize.FunctionConverge{
			Relative:   s.FTol,
			Iterations: 1,
		},
	}
	method := &optimize.Newton{GradStopThreshold: s.GTol}

	sol, err := optimize.Minimize(ls.problem(), p0, settings, method)
	if sol == nil {
		return Result{}, fmt.Errorf("lsq: %w", err)
	}
	res := Result{
		Params:     sol.X,
		Cost:       sol.F,
		Iterations: max(sol.MajorIterations-1, 0),
		Status:     sol.Status,
	}

	switch {
	case err != nil && stalled(err):
		// No downhill step exists: X is a minimum to machine precision.
		return res, nil
	case err != nil:
		return res, fmt.Errorf("lsq: %w", err)
	case sol.Status == optimize.IterationLimit:
		return res, fmt.Errorf("%w: %d iterations, cost %g", ErrNoConvergence, res.Iterations, res.Cost)
	}
	return res, nil
}

// stalled reports line search terminations that leave the best location
// unchanged.
func stalled(err error) bool {
	return errors.Is(err, optimize.ErrNoProgress) ||
		errors.Is(err, optimize.ErrLinesearcherFailure) ||
		errors.Is(err, optimize.ErrNonDescentDirection)
}

// problem evaluates the objective, its gradient −Jᵀr and the Gauss-Newton
// Hessian JᵀJ.
type problem struct {
	y     []float64
	model Func
	jac   Jacobian

	f, r []float64
	j    *mat.Dense
}

func newProblem(y []float64, params int, model Func, jac Jacobian) *problem {
	return &problem{
		y:     y,
		model: model,
		jac:   jac,
		f:     make([]float64, len(y)),
		r:     make([]float64, len(y)),
		j:     mat.NewDense(len(y), params, nil),
	}
}

func (ls *problem) problem() optimize.Problem {
	return optimize.Problem{
		Func: ls.cost,
		Grad: ls.grad,
		Hess: ls.hess,
	}
}

// cost fills r = y − model(p) and returns half its squared norm.
// Non-finite model values yield +Inf.
func (ls *problem) cost(p []float64) float64 {
	ls.model(ls.f, p)
	floats.SubTo(ls.r, ls.y, ls.f)
	sum := floats.Dot(ls.r, ls.r)
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return math.Inf(1)
	}
	return sum / 2
}

func (ls *problem) grad(dst, p []float64) {
	ls.cost(p)
	ls.jac(ls.j, p)
	g := mat.NewVecDense(len(dst), dst)
	g.MulVec(ls.j.T(), mat.NewVecDense(len(ls.r), ls.r))
	floats.Scale(-1, dst)
}

func (ls *problem) hess(dst *mat.SymDense, p []float64) {
	ls.jac(ls.j, p)
	dst.SymOuterK(1, ls.j.T())
}
