package engine

import (
	"math"
	"sort"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// Parameter bounds for the log-space optimization. Clipping happens inside
// the objective, so the derivative-free optimizer never sees an unbounded
// overflow region.
const (
	minShape = 1e-6
	maxShape = 1e6
	minScale = 1e-6
	maxScale = 1e9

	// maxExpArg caps the argument of exp when evaluating (t/scale)^shape in
	// log space; beyond ~709 exp overflows float64.
	maxExpArg = 700

	durationFloor = 1e-12
)

// Fitter estimates two-parameter Weibull lifetimes from right-censored
// interval data via maximum likelihood.
type Fitter struct {
	opt Optimizer
}

// NewFitter constructs a Fitter; a nil optimizer selects Nelder-Mead.
func NewFitter(opt Optimizer) *Fitter {
	if opt == nil {
		opt = NelderMead{}
	}
	return &Fitter{opt: opt}
}

// Fit maximizes the censoring-aware Weibull log-likelihood over the interval
// sequence. All-censored sequences are accepted but produce wide, unstable
// estimates; an empty sequence is an InsufficientDataError and optimizer
// non-convergence an OptimizationFailureError.
func (f *Fitter) Fit(intervals []models.TBFInterval) (models.WeibullFit, error) {
	if len(intervals) == 0 {
		return models.WeibullFit{}, &InsufficientDataError{Reason: "empty interval sequence"}
	}

	durations := make([]float64, len(intervals))
	censored := make([]bool, len(intervals))
	observed := make([]float64, 0, len(intervals))
	for i, iv := range intervals {
		if iv.DurationHours < 0 {
			return models.WeibullFit{}, &InvalidParameterError{Name: "duration_hours", Value: iv.DurationHours, Reason: "must be >= 0"}
		}
		durations[i] = iv.DurationHours
		censored[i] = iv.Censored
		if !iv.Censored {
			observed = append(observed, iv.DurationHours)
		}
	}

	initShape := 1.5
	initScale := median(durations)
	if len(observed) > 0 {
		initScale = median(observed)
	}
	if initScale < minScale {
		initScale = minScale
	}

	objective := func(x []float64) float64 {
		return negLogLikelihood(x[0], x[1], durations, censored)
	}

	x0 := []float64{math.Log(initShape), math.Log(initScale)}
	x, value, err := f.opt.Minimize(objective, x0)
	if err != nil {
		return models.WeibullFit{}, &OptimizationFailureError{Diagnostic: err.Error(), Err: err}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return models.WeibullFit{}, &OptimizationFailureError{Diagnostic: "objective is not finite at optimum"}
	}

	shape := math.Exp(clip(x[0], math.Log(minShape), math.Log(maxShape)))
	scale := math.Exp(clip(x[1], math.Log(minScale), math.Log(maxScale)))
	return models.WeibullFit{Shape: shape, Scale: scale, LogLikelihood: -value}, nil
}

// FitUncensored treats every duration as an exact observed lifetime.
func (f *Fitter) FitUncensored(durations []float64) (models.WeibullFit, error) {
	intervals := make([]models.TBFInterval, len(durations))
	for i, d := range durations {
		intervals[i] = models.TBFInterval{DurationHours: d}
	}
	return f.Fit(intervals)
}

// negLogLikelihood evaluates the censoring-aware negative log-likelihood in
// log-parameter space:
//
//	-sum_obs [ln b - ln s + (b-1)(ln t - ln s) - (t/s)^b] + sum_cens (t/s)^b
//
// Parameters and the exp argument are clipped to keep the value finite on
// singular or degenerate inputs.
func negLogLikelihood(logShape, logScale float64, durations []float64, censored []bool) float64 {
	logShape = clip(logShape, math.Log(minShape), math.Log(maxShape))
	logScale = clip(logScale, math.Log(minScale), math.Log(maxScale))
	shape := math.Exp(logShape)

	ll := 0.0
	for i, d := range durations {
		logT := math.Log(math.Max(d, durationFloor))
		expArg := clip(shape*(logT-logScale), -maxExpArg, maxExpArg)
		hazardExp := math.Exp(expArg)
		if censored[i] {
			// log survival
			ll -= hazardExp
		} else {
			// log density
			ll += logShape - logScale + (shape-1)*(logT-logScale) - hazardExp
		}
	}
	return -ll
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
