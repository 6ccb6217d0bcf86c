package engine

import (
	"math"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// BLife returns the time by which fraction p of the population is expected to
// have failed: scale * (-ln(1-p))^(1/shape). p must lie in (0, 1); the result
// is strictly increasing in p, and BLife(0.632) is approximately the scale.
func BLife(fit models.WeibullFit, p float64) (float64, error) {
	if err := validateFit(fit); err != nil {
		return 0, err
	}
	if p <= 0 || p >= 1 {
		return 0, &InvalidParameterError{Name: "p", Value: p, Reason: "must be in (0, 1)"}
	}
	return fit.Scale * math.Pow(-math.Log(1-p), 1/fit.Shape), nil
}

// MTTF is the Weibull mean life: scale * Gamma(1 + 1/shape).
func MTTF(fit models.WeibullFit) (float64, error) {
	if err := validateFit(fit); err != nil {
		return 0, err
	}
	return fit.Scale * math.Gamma(1+1/fit.Shape), nil
}

// ConditionalReliability is the probability of surviving an additional
// mission of missionHours given survival to ageHours: R(t+dt)/R(t). It fails
// when R(t) has underflowed to zero in float64.
func ConditionalReliability(fit models.WeibullFit, ageHours, missionHours float64) (float64, error) {
	w, err := NewWeibull(fit.Shape, fit.Scale)
	if err != nil {
		return 0, err
	}
	if ageHours < 0 {
		return 0, &InvalidParameterError{Name: "age_hours", Value: ageHours, Reason: "must be >= 0"}
	}
	if missionHours < 0 {
		return 0, &InvalidParameterError{Name: "mission_hours", Value: missionHours, Reason: "must be >= 0"}
	}
	rAge := w.Survival(ageHours)
	if rAge == 0 {
		return 0, &InvalidParameterError{Name: "age_hours", Value: ageHours, Reason: "survival probability underflows to zero at this age"}
	}
	return w.Survival(ageHours+missionHours) / rAge, nil
}

// AverageFailureRate is observed failures per total interval hours, censored
// exposure included in the denominator. Zero total hours yields zero.
func AverageFailureRate(intervals []models.TBFInterval) float64 {
	failures := 0
	totalHours := 0.0
	for _, iv := range intervals {
		totalHours += iv.DurationHours
		if !iv.Censored {
			failures++
		}
	}
	if totalHours <= 0 {
		return 0
	}
	return float64(failures) / totalHours
}

// RepairTrend compares the mean of the second half of the observed intervals
// to the first half, in sequence order. A ratio above one means later runs
// last longer (repairs are effective). It is undefined with fewer than two
// observed intervals or a zero first-half mean; ok is false in those cases.
func RepairTrend(intervals []models.TBFInterval) (ratio float64, ok bool) {
	observed := make([]float64, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Censored {
			observed = append(observed, iv.DurationHours)
		}
	}
	if len(observed) < 2 {
		return 0, false
	}
	mid := len(observed) / 2
	first := mean(observed[:mid])
	second := mean(observed[mid:])
	if first <= 0 {
		return 0, false
	}
	return second / first, true
}

func validateFit(fit models.WeibullFit) error {
	if fit.Shape <= 0 {
		return &InvalidParameterError{Name: "shape", Value: fit.Shape, Reason: "must be > 0"}
	}
	if fit.Scale <= 0 {
		return &InvalidParameterError{Name: "scale", Value: fit.Scale, Reason: "must be > 0"}
	}
	return nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
