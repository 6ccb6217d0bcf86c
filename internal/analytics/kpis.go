// Package analytics derives fleet and business indicators from exposure and
// event records, on top of the lifetime statistics in the engine package.
package analytics

import (
	"time"

	"github.com/reliastack/reliabase-engine/internal/engine"
	"github.com/reliastack/reliabase-engine/internal/models"
)

// FailureTimes extracts the timestamps of failure events, in input order.
func FailureTimes(events []models.Event) []time.Time {
	times := make([]time.Time, 0, len(events))
	for _, e := range events {
		if e.Type == models.EventFailure {
			times = append(times, e.Timestamp)
		}
	}
	return times
}

// AggregateKPIs computes MTBF/MTTR/availability and the supporting totals for
// one asset, returning the derived TBF sequence alongside so callers can feed
// it to the fitter without re-deriving.
func AggregateKPIs(exposures []models.ExposureLog, events []models.Event) (models.KPISummary, []models.TBFInterval, error) {
	failureTimes := FailureTimes(events)
	intervals, err := engine.DeriveTBF(exposures, failureTimes)
	if err != nil {
		return models.KPISummary{}, nil, err
	}

	mtbf := meanDuration(intervals)
	mttr := meanDowntimeHours(events)
	totalHours := 0.0
	for _, exp := range exposures {
		if exp.Hours > 0 {
			totalHours += exp.Hours
		} else {
			totalHours += exp.WallClockHours()
		}
	}

	failureRate := 0.0
	if totalHours > 0 {
		failureRate = float64(len(failureTimes)) / totalHours
	}

	return models.KPISummary{
		MTBFHours:          mtbf,
		MTTRHours:          mttr,
		Availability:       Availability(mtbf, mttr),
		FailureRate:        failureRate,
		TotalExposureHours: totalHours,
		FailureCount:       len(failureTimes),
		TotalEvents:        len(events),
	}, intervals, nil
}

// Availability is MTBF / (MTBF + MTTR), zero when both are zero.
func Availability(mtbfHours, mttrHours float64) float64 {
	denominator := mtbfHours + mttrHours
	if denominator <= 0 {
		return 0
	}
	return mtbfHours / denominator
}

func meanDuration(intervals []models.TBFInterval) float64 {
	if len(intervals) == 0 {
		return 0
	}
	sum := 0.0
	for _, iv := range intervals {
		sum += iv.DurationHours
	}
	return sum / float64(len(intervals))
}

// meanDowntimeHours averages failure downtime, reported in hours.
func meanDowntimeHours(events []models.Event) float64 {
	sum := 0.0
	count := 0
	for _, e := range events {
		if e.Type != models.EventFailure {
			continue
		}
		sum += e.DowntimeMinutes
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) / 60
}
