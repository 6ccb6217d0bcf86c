package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliastack/reliabase-engine/internal/models"
)

func makeExposure(start time.Time, hours float64) models.ExposureLog {
	return models.ExposureLog{
		AssetID:   1,
		StartTime: start,
		EndTime:   start.Add(time.Duration(hours * float64(time.Hour))),
		Hours:     hours,
	}
}

func TestDeriveTBFWithCensoredTail(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	exposures := []models.ExposureLog{
		makeExposure(start, 50),
		makeExposure(start.Add(50*time.Hour), 60),
		makeExposure(start.Add(110*time.Hour), 40),
	}
	failures := []time.Time{start.Add(110 * time.Hour)}

	intervals, err := DeriveTBF(exposures, failures)
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.False(t, intervals[0].Censored)
	assert.True(t, intervals[1].Censored)
	assert.InDelta(t, 110, intervals[0].DurationHours, 1e-9)
	assert.InDelta(t, 40, intervals[1].DurationHours, 1e-9)
}

func TestDeriveTBFAtMostOneCensoredAndLast(t *testing.T) {
	start := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	exposures := []models.ExposureLog{
		makeExposure(start, 100),
		makeExposure(start.Add(100*time.Hour), 100),
	}
	failures := []time.Time{
		start.Add(30 * time.Hour),
		start.Add(90 * time.Hour),
		start.Add(150 * time.Hour),
	}

	intervals, err := DeriveTBF(exposures, failures)
	require.NoError(t, err)

	censoredCount := 0
	for i, iv := range intervals {
		if iv.Censored {
			censoredCount++
			assert.Equal(t, len(intervals)-1, i, "censored interval must be last")
		}
	}
	assert.LessOrEqual(t, censoredCount, 1)
}

func TestDeriveTBFConservesExposureHours(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	exposures := []models.ExposureLog{
		makeExposure(start, 80),
		makeExposure(start.Add(100*time.Hour), 25.5),
		makeExposure(start.Add(130*time.Hour), 61),
	}
	failures := []time.Time{
		start.Add(40 * time.Hour),
		start.Add(120 * time.Hour),
	}

	intervals, err := DeriveTBF(exposures, failures)
	require.NoError(t, err)

	total := 0.0
	for _, iv := range intervals {
		total += iv.DurationHours
	}
	assert.InDelta(t, 80+25.5+61, total, 1e-6)
}

func TestDeriveTBFProratesPartialOverlap(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	// 100h wall-clock span but only 50 metered hours; the failure halves it.
	exposures := []models.ExposureLog{{
		AssetID:   1,
		StartTime: start,
		EndTime:   start.Add(100 * time.Hour),
		Hours:     50,
	}}
	failures := []time.Time{start.Add(50 * time.Hour)}

	intervals, err := DeriveTBF(exposures, failures)
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.InDelta(t, 25, intervals[0].DurationHours, 1e-9)
	assert.InDelta(t, 25, intervals[1].DurationHours, 1e-9)
}

func TestDeriveTBFZeroFailuresSingleCensored(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	exposures := []models.ExposureLog{makeExposure(start, 500)}

	intervals, err := DeriveTBF(exposures, nil)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Censored)
	assert.InDelta(t, 500, intervals[0].DurationHours, 1e-9)
}

func TestDeriveTBFNoExposureEmpty(t *testing.T) {
	intervals, err := DeriveTBF(nil, []time.Time{time.Now()})
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestDeriveTBFToleratesOverlapAndDisorder(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	exposures := []models.ExposureLog{
		makeExposure(start.Add(40*time.Hour), 30), // overlaps the first log
		makeExposure(start, 60),
	}
	failures := []time.Time{start.Add(55 * time.Hour)}

	intervals, err := DeriveTBF(exposures, failures)
	require.NoError(t, err)
	require.Len(t, intervals, 2)

	total := intervals[0].DurationHours + intervals[1].DurationHours
	assert.InDelta(t, 90, total, 1e-6)
}

func TestDeriveTBFRejectsNegativeHours(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	exposures := []models.ExposureLog{{
		AssetID:   1,
		StartTime: start,
		EndTime:   start.Add(10 * time.Hour),
		Hours:     -5,
	}}

	_, err := DeriveTBF(exposures, nil)
	var invalid *InvalidParameterError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "hours", invalid.Name)
}

func TestDeriveTBFExposureEntirelyAfterLastFailure(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	exposures := []models.ExposureLog{
		makeExposure(start, 20),
		makeExposure(start.Add(100*time.Hour), 30),
	}
	failures := []time.Time{start.Add(20 * time.Hour)}

	intervals, err := DeriveTBF(exposures, failures)
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.InDelta(t, 20, intervals[0].DurationHours, 1e-9)
	assert.True(t, intervals[1].Censored)
	assert.InDelta(t, 30, intervals[1].DurationHours, 1e-9)
}
