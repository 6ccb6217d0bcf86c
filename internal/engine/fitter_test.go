package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliastack/reliabase-engine/internal/models"
)

func TestFitCensoredScenario(t *testing.T) {
	fitter := NewFitter(nil)
	intervals := []models.TBFInterval{
		{DurationHours: 100, Censored: false},
		{DurationHours: 150, Censored: false},
		{DurationHours: 80, Censored: true},
	}

	fit, err := fitter.Fit(intervals)
	require.NoError(t, err)
	assert.Greater(t, fit.Shape, 0.0)
	assert.Greater(t, fit.Scale, 0.0)
	assert.GreaterOrEqual(t, fit.Scale, 100.0)
	assert.LessOrEqual(t, fit.Scale, 250.0)
}

func TestFitEmptyIsInsufficientData(t *testing.T) {
	fitter := NewFitter(nil)
	_, err := fitter.Fit(nil)
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestFitAllCensoredAccepted(t *testing.T) {
	fitter := NewFitter(nil)
	intervals := []models.TBFInterval{
		{DurationHours: 120, Censored: true},
	}
	fit, err := fitter.Fit(intervals)
	require.NoError(t, err)
	assert.Greater(t, fit.Shape, 0.0)
	assert.Greater(t, fit.Scale, 0.0)
}

func TestFitParameterRecovery(t *testing.T) {
	const (
		trueShape = 1.8
		trueScale = 400.0
		n         = 2000
	)
	w, err := NewWeibull(trueShape, trueScale)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	durations := make([]float64, n)
	for i := range durations {
		// inverse-CDF sampling from the target distribution
		durations[i] = w.Quantile(rng.Float64())
	}

	fitter := NewFitter(nil)
	fit, err := fitter.FitUncensored(durations)
	require.NoError(t, err)
	assert.InEpsilon(t, trueShape, fit.Shape, 0.10)
	assert.InEpsilon(t, trueScale, fit.Scale, 0.10)
}

func TestFitLogLikelihoodMatchesObjective(t *testing.T) {
	fitter := NewFitter(nil)
	intervals := []models.TBFInterval{
		{DurationHours: 90, Censored: false},
		{DurationHours: 160, Censored: false},
		{DurationHours: 120, Censored: true},
	}
	fit, err := fitter.Fit(intervals)
	require.NoError(t, err)

	durations := []float64{90, 160, 120}
	censored := []bool{false, false, true}
	recomputed := -negLogLikelihood(math.Log(fit.Shape), math.Log(fit.Scale), durations, censored)
	assert.InDelta(t, fit.LogLikelihood, recomputed, 1e-6)
}

func TestFitExtremeDurationsStayFinite(t *testing.T) {
	fitter := NewFitter(nil)
	intervals := []models.TBFInterval{
		{DurationHours: 1e-9, Censored: false},
		{DurationHours: 1e7, Censored: false},
		{DurationHours: 5, Censored: false},
	}
	fit, err := fitter.Fit(intervals)
	require.NoError(t, err)
	assert.Greater(t, fit.Shape, 0.0)
	assert.Greater(t, fit.Scale, 0.0)
	assert.False(t, math.IsNaN(fit.LogLikelihood))
}

type failingOptimizer struct{}

func (failingOptimizer) Minimize(func([]float64) float64, []float64) ([]float64, float64, error) {
	return nil, 0, errors.New("simplex collapsed")
}

func TestFitOptimizerFailureCarriesDiagnostic(t *testing.T) {
	fitter := NewFitter(failingOptimizer{})
	_, err := fitter.Fit([]models.TBFInterval{{DurationHours: 100}})
	var opt *OptimizationFailureError
	require.ErrorAs(t, err, &opt)
	assert.Contains(t, opt.Diagnostic, "simplex collapsed")
}
