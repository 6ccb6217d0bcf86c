package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/reliastack/reliabase-engine/internal/engine"
	"github.com/reliastack/reliabase-engine/internal/models"
)

// CostOfUnreliability estimates the financial impact of unplanned downtime.
type CostOfUnreliability struct {
	TotalCost              float64 `json:"total_cost"`
	LostProductionCost     float64 `json:"lost_production_cost"`
	RepairCost             float64 `json:"repair_cost"`
	UnplannedDowntimeHours float64 `json:"unplanned_downtime_hours"`
	FailureCount           int     `json:"failure_count"`
	CostPerFailure         float64 `json:"cost_per_failure"`
}

// ComputeCOUR combines lost production with repair spend. The rate defaults
// represent mid-range industrial equipment and should be configured per
// plant; pass zero to use them.
func ComputeCOUR(unplannedDowntimeHours float64, failureCount int, hourlyProductionValue, avgRepairCost float64) CostOfUnreliability {
	if hourlyProductionValue <= 0 {
		hourlyProductionValue = 500
	}
	if avgRepairCost <= 0 {
		avgRepairCost = 1500
	}
	lost := unplannedDowntimeHours * hourlyProductionValue
	repair := float64(failureCount) * avgRepairCost
	total := lost + repair
	perFailure := 0.0
	if failureCount > 0 {
		perFailure = total / float64(failureCount)
	}
	return CostOfUnreliability{
		TotalCost:              total,
		LostProductionCost:     lost,
		RepairCost:             repair,
		UnplannedDowntimeHours: unplannedDowntimeHours,
		FailureCount:           failureCount,
		CostPerFailure:         perFailure,
	}
}

// FailurePattern classifies the hazard behaviour implied by the Weibull shape.
type FailurePattern string

const (
	PatternInfantMortality FailurePattern = "infant_mortality"
	PatternRandom          FailurePattern = "random"
	PatternWearOut         FailurePattern = "wearout"
)

// PMAssessment grades a preventive-maintenance schedule.
type PMAssessment string

const (
	PMNotRecommended   PMAssessment = "pm_not_recommended"
	PMNoData           PMAssessment = "no_pm_data"
	PMOverMaintaining  PMAssessment = "over_maintaining"
	PMAppropriate      PMAssessment = "appropriate"
	PMUnderMaintaining PMAssessment = "under_maintaining"
)

// PMOptimizationResult evaluates PM scheduling against the fitted lifetime.
type PMOptimizationResult struct {
	WeibullShape       float64        `json:"weibull_shape"`
	Pattern            FailurePattern `json:"failure_pattern"`
	RecommendedPMHours float64        `json:"recommended_pm_hours"`
	CurrentPMHours     float64        `json:"current_pm_hours,omitempty"`
	PMRatio            float64        `json:"pm_ratio,omitempty"`
	Assessment         PMAssessment   `json:"assessment"`
}

// ComputePMOptimization recommends a PM interval from the B-life at
// targetFraction (default 0.10) and grades the current interval against it.
// PM only pays off for wear-out behaviour; infant-mortality and random
// patterns get pm_not_recommended regardless of the current schedule.
func ComputePMOptimization(fit models.WeibullFit, currentPMHours, targetFraction float64) (PMOptimizationResult, error) {
	if targetFraction <= 0 || targetFraction >= 1 {
		targetFraction = 0.10
	}
	recommended, err := engine.BLife(fit, targetFraction)
	if err != nil {
		return PMOptimizationResult{}, err
	}

	var pattern FailurePattern
	switch {
	case fit.Shape < 0.95:
		pattern = PatternInfantMortality
	case fit.Shape <= 1.05:
		pattern = PatternRandom
	default:
		pattern = PatternWearOut
	}

	result := PMOptimizationResult{
		WeibullShape:       fit.Shape,
		Pattern:            pattern,
		RecommendedPMHours: recommended,
		CurrentPMHours:     currentPMHours,
	}

	if pattern != PatternWearOut {
		result.Assessment = PMNotRecommended
		return result, nil
	}
	if currentPMHours <= 0 || recommended <= 0 {
		result.Assessment = PMNoData
		return result, nil
	}

	ratio := currentPMHours / recommended
	result.PMRatio = ratio
	switch {
	case ratio < 0.8:
		result.Assessment = PMOverMaintaining
	case ratio <= 1.2:
		result.Assessment = PMAppropriate
	default:
		result.Assessment = PMUnderMaintaining
	}
	return result, nil
}

// SparePartForecast is the predicted consumption of one part.
type SparePartForecast struct {
	PartName         string  `json:"part_name"`
	ExpectedFailures float64 `json:"expected_failures"`
	LowerBound       float64 `json:"lower_bound"`
	UpperBound       float64 `json:"upper_bound"`
}

// PartFailureRate feeds the spare-parts forecast.
type PartFailureRate struct {
	PartName           string
	FailureRatePerHour float64
}

// SpareDemandResult is the fleet-level demand forecast.
type SpareDemandResult struct {
	HorizonHours          float64             `json:"horizon_hours"`
	Forecasts             []SparePartForecast `json:"forecasts"`
	TotalExpectedFailures float64             `json:"total_expected_failures"`
}

// ForecastSpareDemand projects part consumption over the horizon (default one
// year) under a Poisson assumption on each part's historical failure rate,
// with 5th/95th percentile bounds.
func ForecastSpareDemand(parts []PartFailureRate, horizonHours float64) SpareDemandResult {
	if horizonHours <= 0 {
		horizonHours = 8760
	}
	result := SpareDemandResult{HorizonHours: horizonHours}
	for _, p := range parts {
		lambda := p.FailureRatePerHour * horizonHours
		forecast := SparePartForecast{PartName: p.PartName, ExpectedFailures: lambda}
		if lambda > 0 {
			dist := distuv.Poisson{Lambda: lambda}
			forecast.LowerBound = poissonQuantile(dist, 0.05)
			forecast.UpperBound = poissonQuantile(dist, 0.95)
		}
		result.Forecasts = append(result.Forecasts, forecast)
		result.TotalExpectedFailures += lambda
	}
	return result
}

// poissonQuantile is the smallest count whose CDF reaches p. The scan is
// bounded well past the distribution's upper tail.
func poissonQuantile(dist distuv.Poisson, p float64) float64 {
	limit := dist.Lambda + 20*math.Sqrt(dist.Lambda) + 100
	for k := 0.0; k <= limit; k++ {
		if dist.CDF(k) >= p {
			return k
		}
	}
	return limit
}

// HealthComponents are the weighted sub-scores of the health index, each in
// [0, 100].
type HealthComponents struct {
	Availability    float64 `json:"availability"`
	MTBFPerformance float64 `json:"mtbf_performance"`
	DowntimeQuality float64 `json:"downtime_quality"`
	WearOutMargin   float64 `json:"wearout_margin"`
	OEE             float64 `json:"oee"`
	RepairTrend     float64 `json:"repair_trend"`
}

// AssetHealthIndex is a composite 0-100 score with a letter grade.
type AssetHealthIndex struct {
	Score      float64          `json:"score"`
	Grade      string           `json:"grade"`
	Components HealthComponents `json:"components"`
}

// HealthInputs carries the signals combined into the health index. Zero
// values fall back to neutral sub-scores where the signal is genuinely
// optional (shape, OEE, repair trend).
type HealthInputs struct {
	Availability     float64
	MTBFHours        float64
	MTBFTargetHours  float64
	UnplannedRatio   float64
	WeibullShape     float64
	OEE              float64
	RepairTrendRatio float64
}

// ComputeHealthIndex blends availability, MTBF attainment, downtime quality,
// wear-out margin, OEE and repair trend into one actionable indicator.
func ComputeHealthIndex(in HealthInputs) AssetHealthIndex {
	target := in.MTBFTargetHours
	if target <= 0 {
		if in.MTBFHours > 0 {
			target = in.MTBFHours * 1.2
		} else {
			target = 1
		}
	}

	availScore := clampUnit(in.Availability) * 100
	mtbfScore := clampUnit(in.MTBFHours/target) * 100
	dtScore := (1 - clampUnit(in.UnplannedRatio)) * 100

	wearScore := 75.0
	if in.WeibullShape > 0 {
		switch {
		case in.WeibullShape < 1.0:
			wearScore = 70
		case in.WeibullShape <= 1.5:
			wearScore = 90
		case in.WeibullShape <= 2.5:
			wearScore = 70
		default:
			wearScore = 50
		}
	}

	oeeScore := 75.0
	if in.OEE > 0 {
		oeeScore = clampUnit(in.OEE) * 100
	}

	repairScore := 100.0
	if in.RepairTrendRatio > 0 {
		if in.RepairTrendRatio >= 1 {
			repairScore = 100 - (in.RepairTrendRatio-1)*50
			if repairScore < 0 {
				repairScore = 0
			}
		} else {
			repairScore = 100 + (1-in.RepairTrendRatio)*20
			if repairScore > 100 {
				repairScore = 100
			}
		}
	}

	components := HealthComponents{
		Availability:    availScore,
		MTBFPerformance: mtbfScore,
		DowntimeQuality: dtScore,
		WearOutMargin:   wearScore,
		OEE:             oeeScore,
		RepairTrend:     repairScore,
	}

	score := availScore*0.30 + mtbfScore*0.25 + dtScore*0.15 + wearScore*0.15 + oeeScore*0.10 + repairScore*0.05
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return AssetHealthIndex{Score: score, Grade: healthGrade(score), Components: components}
}

func healthGrade(score float64) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 55:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
