package engine

import "fmt"

// InsufficientDataError reports an interval sequence that cannot support the
// requested estimation (empty, or otherwise unfittable).
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

// OptimizationFailureError reports optimizer non-convergence and carries the
// optimizer's native diagnostic.
type OptimizationFailureError struct {
	Diagnostic string
	Err        error
}

func (e *OptimizationFailureError) Error() string {
	return fmt.Sprintf("weibull mle failed: %s", e.Diagnostic)
}

func (e *OptimizationFailureError) Unwrap() error {
	return e.Err
}

// DegenerateDataError reports a bootstrap run in which too many resamples
// failed to fit for the percentile interval to be trustworthy.
type DegenerateDataError struct {
	Failed int
	Total  int
	Reason string
}

func (e *DegenerateDataError) Error() string {
	return fmt.Sprintf("degenerate data: %s (%d of %d resamples failed)", e.Reason, e.Failed, e.Total)
}

// InvalidParameterError reports an argument outside its domain, such as a
// non-positive shape or scale.
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%g: %s", e.Name, e.Value, e.Reason)
}
