package engine

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// Optimizer minimizes an objective over unconstrained real parameters.
// Implementations report an error on non-convergence; bound handling is the
// caller's responsibility (the fitter clips inside its objective).
type Optimizer interface {
	Minimize(objective func(x []float64) float64, x0 []float64) (x []float64, value float64, err error)
}

// NelderMead is the default derivative-free optimizer, backed by gonum.
type NelderMead struct{}

// Minimize runs gonum's Nelder-Mead simplex from x0.
func (NelderMead) Minimize(objective func(x []float64) float64, x0 []float64) ([]float64, float64, error) {
	problem := optimize.Problem{Func: objective}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, fmt.Errorf("nelder-mead: %w", err)
	}
	if err := result.Status.Err(); err != nil {
		return nil, 0, fmt.Errorf("nelder-mead status %v: %w", result.Status, err)
	}
	return result.X, result.F, nil
}
