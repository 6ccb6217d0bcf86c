package analytics

import "github.com/reliastack/reliabase-engine/internal/models"

// OEEResult is Overall Equipment Effectiveness and its three factors, each
// in [0, 1].
type OEEResult struct {
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`
	OEE          float64 `json:"oee"`
}

// ComputeOEE multiplies availability, performance and quality rates.
// Performance and quality default to 1 when unknown (pass 0 to use the
// default), which keeps OEE conservative until real throughput and rejection
// data arrive.
func ComputeOEE(availability, performance, quality float64) OEEResult {
	if performance <= 0 {
		performance = 1
	}
	if quality <= 0 {
		quality = 1
	}
	return OEEResult{
		Availability: availability,
		Performance:  performance,
		Quality:      quality,
		OEE:          availability * performance * quality,
	}
}

// PerformanceRateResult compares actual to design throughput.
type PerformanceRateResult struct {
	ActualThroughput    float64 `json:"actual_throughput"`
	DesignThroughput    float64 `json:"design_throughput"`
	PerformanceRate     float64 `json:"performance_rate"`
	TotalCycles         float64 `json:"total_cycles"`
	TotalOperatingHours float64 `json:"total_operating_hours"`
}

// PerformanceRate derives cycles-per-hour utilisation from exposure logs.
// When designCyclesPerHour is zero the single best-performing log sets the
// design rate, so the result is capped at 1.
func PerformanceRate(exposures []models.ExposureLog, designCyclesPerHour float64) PerformanceRateResult {
	totalCycles := 0.0
	totalHours := 0.0
	bestRate := 0.0
	for _, exp := range exposures {
		if exp.Cycles > 0 {
			totalCycles += exp.Cycles
		}
		if exp.Hours > 0 {
			totalHours += exp.Hours
			if exp.Cycles > 0 {
				if rate := exp.Cycles / exp.Hours; rate > bestRate {
					bestRate = rate
				}
			}
		}
	}

	actual := 0.0
	if totalHours > 0 {
		actual = totalCycles / totalHours
	}
	design := designCyclesPerHour
	if design <= 0 {
		design = bestRate
	}
	if design <= 0 {
		design = 1
	}

	rate := 0.0
	if design > 0 {
		rate = actual / design
	}
	if rate > 1 {
		rate = 1
	}
	return PerformanceRateResult{
		ActualThroughput:    actual,
		DesignThroughput:    design,
		PerformanceRate:     rate,
		TotalCycles:         totalCycles,
		TotalOperatingHours: totalHours,
	}
}

// DowntimeSplitResult separates planned from unplanned downtime.
type DowntimeSplitResult struct {
	PlannedDowntimeHours   float64 `json:"planned_downtime_hours"`
	UnplannedDowntimeHours float64 `json:"unplanned_downtime_hours"`
	TotalDowntimeHours     float64 `json:"total_downtime_hours"`
	UnplannedRatio         float64 `json:"unplanned_ratio"`
	PlannedCount           int     `json:"planned_count"`
	UnplannedCount         int     `json:"unplanned_count"`
}

// DowntimeSplit buckets event downtime: failures are unplanned, maintenance
// and inspection are planned.
func DowntimeSplit(events []models.Event) DowntimeSplitResult {
	var result DowntimeSplitResult
	for _, e := range events {
		hours := e.DowntimeMinutes / 60
		if e.Type == models.EventFailure {
			result.UnplannedDowntimeHours += hours
			result.UnplannedCount++
		} else {
			result.PlannedDowntimeHours += hours
			result.PlannedCount++
		}
	}
	result.TotalDowntimeHours = result.PlannedDowntimeHours + result.UnplannedDowntimeHours
	if result.TotalDowntimeHours > 0 {
		result.UnplannedRatio = result.UnplannedDowntimeHours / result.TotalDowntimeHours
	}
	return result
}

// MTBM is mean operating hours between maintenance events, zero when no
// maintenance has been recorded.
func MTBM(totalOperatingHours float64, events []models.Event) float64 {
	count := 0
	for _, e := range events {
		if e.Type == models.EventMaintenance {
			count++
		}
	}
	if count == 0 || totalOperatingHours <= 0 {
		return 0
	}
	return totalOperatingHours / float64(count)
}
