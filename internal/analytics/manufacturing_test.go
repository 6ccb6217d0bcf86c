package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reliastack/reliabase-engine/internal/models"
)

func TestComputeOEE(t *testing.T) {
	result := ComputeOEE(0.9, 0.8, 0.95)
	assert.InDelta(t, 0.684, result.OEE, 1e-9)

	// Unknown performance and quality default to 1.
	defaulted := ComputeOEE(0.9, 0, 0)
	assert.InDelta(t, 1.0, defaulted.Performance, 1e-12)
	assert.InDelta(t, 1.0, defaulted.Quality, 1e-12)
	assert.InDelta(t, 0.9, defaulted.OEE, 1e-12)
}

func TestPerformanceRateAgainstDesign(t *testing.T) {
	exposures := []models.ExposureLog{
		{Hours: 100, Cycles: 800},
		{Hours: 100, Cycles: 600},
	}

	result := PerformanceRate(exposures, 10)
	assert.InDelta(t, 7.0, result.ActualThroughput, 1e-9)
	assert.InDelta(t, 0.7, result.PerformanceRate, 1e-9)
	assert.InDelta(t, 1400.0, result.TotalCycles, 1e-9)
	assert.InDelta(t, 200.0, result.TotalOperatingHours, 1e-9)
}

func TestPerformanceRateBestObservedFallback(t *testing.T) {
	exposures := []models.ExposureLog{
		{Hours: 100, Cycles: 800},
		{Hours: 100, Cycles: 600},
	}

	// Without a design rate the best log (8 cycles/h) sets the bar.
	result := PerformanceRate(exposures, 0)
	assert.InDelta(t, 8.0, result.DesignThroughput, 1e-9)
	assert.InDelta(t, 0.875, result.PerformanceRate, 1e-9)
}

func TestPerformanceRateCappedAtOne(t *testing.T) {
	exposures := []models.ExposureLog{{Hours: 10, Cycles: 200}}
	result := PerformanceRate(exposures, 5)
	assert.InDelta(t, 1.0, result.PerformanceRate, 1e-12)
}

func TestPerformanceRateNoExposure(t *testing.T) {
	result := PerformanceRate(nil, 0)
	assert.Zero(t, result.ActualThroughput)
	assert.Zero(t, result.PerformanceRate)
}

func TestDowntimeSplit(t *testing.T) {
	events := []models.Event{
		{Type: models.EventFailure, DowntimeMinutes: 120},
		{Type: models.EventFailure, DowntimeMinutes: 60},
		{Type: models.EventMaintenance, DowntimeMinutes: 180},
		{Type: models.EventInspection, DowntimeMinutes: 30},
	}

	result := DowntimeSplit(events)
	assert.InDelta(t, 3.0, result.UnplannedDowntimeHours, 1e-9)
	assert.InDelta(t, 3.5, result.PlannedDowntimeHours, 1e-9)
	assert.InDelta(t, 6.5, result.TotalDowntimeHours, 1e-9)
	assert.InDelta(t, 3.0/6.5, result.UnplannedRatio, 1e-9)
	assert.Equal(t, 2, result.UnplannedCount)
	assert.Equal(t, 2, result.PlannedCount)
}

func TestDowntimeSplitEmpty(t *testing.T) {
	result := DowntimeSplit(nil)
	assert.Zero(t, result.TotalDowntimeHours)
	assert.Zero(t, result.UnplannedRatio)
}

func TestMTBM(t *testing.T) {
	events := []models.Event{
		{Type: models.EventMaintenance},
		{Type: models.EventMaintenance},
		{Type: models.EventFailure},
	}
	assert.InDelta(t, 500.0, MTBM(1000, events), 1e-9)
	assert.Zero(t, MTBM(1000, nil))
	assert.Zero(t, MTBM(0, events))
}
