package engine

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// WeibullMath exposes the distribution functions the curve generator and
// lifetime metrics need, so the numerical backend can be swapped without
// touching their logic.
type WeibullMath interface {
	PDF(t float64) float64
	CDF(t float64) float64
	Survival(t float64) float64
	Quantile(p float64) float64
	Mean() float64
}

// NewWeibull returns the gonum-backed WeibullMath for strictly positive
// shape and scale.
func NewWeibull(shape, scale float64) (WeibullMath, error) {
	if shape <= 0 {
		return nil, &InvalidParameterError{Name: "shape", Value: shape, Reason: "must be > 0"}
	}
	if scale <= 0 {
		return nil, &InvalidParameterError{Name: "scale", Value: scale, Reason: "must be > 0"}
	}
	return gonumWeibull{dist: distuv.Weibull{K: shape, Lambda: scale}}, nil
}

type gonumWeibull struct {
	dist distuv.Weibull
}

func (w gonumWeibull) PDF(t float64) float64      { return w.dist.Prob(t) }
func (w gonumWeibull) CDF(t float64) float64      { return w.dist.CDF(t) }
func (w gonumWeibull) Survival(t float64) float64 { return w.dist.Survival(t) }
func (w gonumWeibull) Quantile(p float64) float64 { return w.dist.Quantile(p) }
func (w gonumWeibull) Mean() float64              { return w.dist.Mean() }
