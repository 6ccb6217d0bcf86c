package engine

import (
	"math"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// hazardDenominatorFloor keeps h(t) = f(t)/R(t) finite once reliability
// underflows to zero in float64.
const hazardDenominatorFloor = 1e-12

// hazardTimeFloor keeps the hazard finite at t=0, where the Weibull density
// diverges for shape < 1. Reliability still uses the true grid time.
const hazardTimeFloor = 1e-9

// CurveSpec controls the evaluation grid. Zero values select the defaults:
// 100 points up to three times the fitted scale.
type CurveSpec struct {
	Points  int
	MaxTime float64
}

// GenerateCurves evaluates the closed-form reliability and hazard functions
// of a fit over a uniform time grid starting at zero.
func GenerateCurves(fit models.WeibullFit, spec CurveSpec) (models.ReliabilityCurve, error) {
	w, err := NewWeibull(fit.Shape, fit.Scale)
	if err != nil {
		return models.ReliabilityCurve{}, err
	}

	points := spec.Points
	if points <= 0 {
		points = 100
	}
	maxTime := spec.MaxTime
	if maxTime <= 0 {
		maxTime = 3 * fit.Scale
	}

	curve := models.ReliabilityCurve{
		Times:       make([]float64, points),
		Reliability: make([]float64, points),
		Hazard:      make([]float64, points),
	}

	step := maxTime / float64(points-1)
	if points == 1 {
		step = 0
	}
	for i := 0; i < points; i++ {
		t := float64(i) * step
		reliability := w.Survival(t)

		ht := math.Max(t, hazardTimeFloor)
		hazard := w.PDF(ht) / math.Max(w.Survival(ht), hazardDenominatorFloor)

		curve.Times[i] = t
		curve.Reliability[i] = reliability
		curve.Hazard[i] = hazard
	}
	return curve, nil
}
