package models

import "time"

// TBFInterval is one time-between-failure observation. Censored means the
// asset survived at least DurationHours without a failure being observed, so
// the value is a lower bound rather than an exact lifetime.
type TBFInterval struct {
	DurationHours float64 `json:"duration_hours"`
	Censored      bool    `json:"censored"`
}

// WeibullFit holds fitted two-parameter Weibull values. Both parameters are
// strictly positive; LogLikelihood is the objective value at the optimum.
type WeibullFit struct {
	Shape         float64 `json:"shape"`
	Scale         float64 `json:"scale"`
	LogLikelihood float64 `json:"log_likelihood"`
}

// Bound is a closed interval with Low <= High.
type Bound struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ConfidenceInterval carries bootstrap percentile intervals for the fitted
// parameters.
type ConfidenceInterval struct {
	Shape Bound `json:"shape_ci"`
	Scale Bound `json:"scale_ci"`
}

// ReliabilityCurve is the closed-form reliability and hazard functions of a
// fit evaluated on a shared time grid. Reliability is non-increasing in Times.
type ReliabilityCurve struct {
	Times       []float64 `json:"times"`
	Reliability []float64 `json:"reliability"`
	Hazard      []float64 `json:"hazard"`
}

// KPISummary aggregates the simple ratio metrics for one asset.
type KPISummary struct {
	MTBFHours          float64 `json:"mtbf_hours"`
	MTTRHours          float64 `json:"mttr_hours"`
	Availability       float64 `json:"availability"`
	FailureRate        float64 `json:"failure_rate"`
	TotalExposureHours float64 `json:"total_exposure_hours"`
	FailureCount       int     `json:"failure_count"`
	TotalEvents        int     `json:"total_events"`
}

// WeibullSummary is the fitted distribution plus its bootstrap intervals.
type WeibullSummary struct {
	Shape         float64 `json:"shape"`
	Scale         float64 `json:"scale"`
	LogLikelihood float64 `json:"log_likelihood"`
	ShapeCI       Bound   `json:"shape_ci"`
	ScaleCI       Bound   `json:"scale_ci"`
}

// LifeMetrics carries the derived lifetime statistics. Pointer fields are nil
// when the underlying quantity is undefined for the data at hand.
type LifeMetrics struct {
	B10Hours           float64  `json:"b10_hours"`
	MTTFHours          float64  `json:"mttf_hours"`
	AverageFailureRate float64  `json:"average_failure_rate"`
	RepairTrendRatio   *float64 `json:"repair_trend_ratio,omitempty"`
}

// FailureModeCount is one row of the failure-mode Pareto for an asset.
type FailureModeCount struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count"`
}

// EventSummary is the trimmed event shape used in analytics payloads.
type EventSummary struct {
	ID              int64     `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Type            EventType `json:"event_type"`
	DowntimeMinutes float64   `json:"downtime_minutes"`
	Description     string    `json:"description,omitempty"`
}

// AssetAnalytics is the complete analytics document for one asset. Weibull,
// LifeMetrics and Curve are nil when the interval data cannot support a fit.
type AssetAnalytics struct {
	AnalysisID   string             `json:"analysis_id"`
	AssetID      int64              `json:"asset_id"`
	AssetName    string             `json:"asset_name"`
	KPIs         KPISummary         `json:"kpis"`
	Weibull      *WeibullSummary    `json:"weibull,omitempty"`
	LifeMetrics  *LifeMetrics       `json:"life_metrics,omitempty"`
	Curve        *ReliabilityCurve  `json:"curve,omitempty"`
	Intervals    []TBFInterval      `json:"intervals"`
	FailureModes []FailureModeCount `json:"failure_modes"`
	RecentEvents []EventSummary     `json:"recent_events"`
	GeneratedAt  time.Time          `json:"generated_at"`
}
