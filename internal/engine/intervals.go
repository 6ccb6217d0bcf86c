package engine

import (
	"sort"
	"time"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// DeriveTBF converts exposure logs and failure timestamps for one asset into
// an ordered time-between-failure sequence. Observed intervals end in a
// failure; at most one trailing interval is censored, covering exposure after
// the last failure. With zero failures the whole exposure history becomes a
// single censored interval. No exposure data yields an empty sequence, which
// the fitter rejects as insufficient.
//
// Exposure logs may overlap or leave gaps. A log that only partially
// intersects a failure window contributes hours proportional to the fraction
// of its wall-clock span inside the window, scaled by its explicit hours when
// those differ from the span.
func DeriveTBF(exposures []models.ExposureLog, failures []time.Time) ([]models.TBFInterval, error) {
	for _, exp := range exposures {
		if exp.Hours < 0 {
			return nil, &InvalidParameterError{Name: "hours", Value: exp.Hours, Reason: "exposure hours must be >= 0"}
		}
		if exp.Cycles < 0 {
			return nil, &InvalidParameterError{Name: "cycles", Value: exp.Cycles, Reason: "exposure cycles must be >= 0"}
		}
		if exp.EndTime.Before(exp.StartTime) {
			return nil, &InvalidParameterError{Name: "end_time", Value: 0, Reason: "exposure end precedes start"}
		}
	}
	if len(exposures) == 0 {
		return nil, nil
	}

	sorted := append([]models.ExposureLog(nil), exposures...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	firstStart := sorted[0].StartTime
	lastEnd := sorted[0].EndTime
	for _, exp := range sorted[1:] {
		if exp.EndTime.After(lastEnd) {
			lastEnd = exp.EndTime
		}
	}

	times := append([]time.Time(nil), failures...)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	if len(times) == 0 {
		total := uptimeBetween(sorted, firstStart, lastEnd)
		return []models.TBFInterval{{DurationHours: total, Censored: true}}, nil
	}

	intervals := make([]models.TBFInterval, 0, len(times)+1)
	prev := firstStart
	for _, t := range times {
		intervals = append(intervals, models.TBFInterval{
			DurationHours: uptimeBetween(sorted, prev, t),
			Censored:      false,
		})
		prev = t
	}

	if lastEnd.After(prev) {
		intervals = append(intervals, models.TBFInterval{
			DurationHours: uptimeBetween(sorted, prev, lastEnd),
			Censored:      true,
		})
	}

	return intervals, nil
}

// uptimeBetween sums the exposure hours attributable to [start, end].
func uptimeBetween(exposures []models.ExposureLog, start, end time.Time) float64 {
	total := 0.0
	for _, exp := range exposures {
		total += overlapHours(exp, start, end)
	}
	return total
}

// overlapHours prorates a log's hours by the fraction of its wall-clock span
// inside [start, end]. Logs carrying an explicit hours value are scaled by
// that value instead of the span.
func overlapHours(exp models.ExposureLog, start, end time.Time) float64 {
	windowStart := maxTime(exp.StartTime, start)
	windowEnd := minTime(exp.EndTime, end)
	if !windowEnd.After(windowStart) {
		return 0
	}
	totalSeconds := exp.EndTime.Sub(exp.StartTime).Seconds()
	if totalSeconds <= 0 {
		return 0
	}
	overlapSeconds := windowEnd.Sub(windowStart).Seconds()
	proportion := overlapSeconds / totalSeconds

	baseHours := exp.Hours
	if baseHours <= 0 {
		baseHours = totalSeconds / 3600
	}
	return baseHours * proportion
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
