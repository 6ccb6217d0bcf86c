package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliastack/reliabase-engine/internal/models"
)

func ts(day int, hour int) time.Time {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC)
}

func TestFailureTimesFiltersByType(t *testing.T) {
	events := []models.Event{
		{Timestamp: ts(1, 0), Type: models.EventFailure},
		{Timestamp: ts(2, 0), Type: models.EventMaintenance},
		{Timestamp: ts(3, 0), Type: models.EventFailure},
		{Timestamp: ts(4, 0), Type: models.EventInspection},
	}

	times := FailureTimes(events)
	require.Len(t, times, 2)
	assert.Equal(t, ts(1, 0), times[0])
	assert.Equal(t, ts(3, 0), times[1])
}

func TestAggregateKPIs(t *testing.T) {
	exposures := []models.ExposureLog{
		{StartTime: ts(1, 0), EndTime: ts(11, 0), Hours: 240},
	}
	events := []models.Event{
		{Timestamp: ts(4, 0), Type: models.EventFailure, DowntimeMinutes: 120},
		{Timestamp: ts(8, 0), Type: models.EventFailure, DowntimeMinutes: 240},
		{Timestamp: ts(9, 0), Type: models.EventMaintenance, DowntimeMinutes: 600},
	}

	summary, intervals, err := AggregateKPIs(exposures, events)
	require.NoError(t, err)

	// Two failures inside a 240h exposure leave one censored tail interval.
	require.Len(t, intervals, 3)
	assert.True(t, intervals[2].Censored)

	assert.Equal(t, 2, summary.FailureCount)
	assert.Equal(t, 3, summary.TotalEvents)
	assert.InDelta(t, 240.0, summary.TotalExposureHours, 1e-9)
	assert.InDelta(t, 80.0, summary.MTBFHours, 1e-9)
	// Mean failure downtime is (120+240)/2 minutes; maintenance is excluded.
	assert.InDelta(t, 3.0, summary.MTTRHours, 1e-9)
	assert.InDelta(t, 2.0/240.0, summary.FailureRate, 1e-12)
	assert.InDelta(t, 80.0/83.0, summary.Availability, 1e-9)
}

func TestAggregateKPIsNoEvents(t *testing.T) {
	exposures := []models.ExposureLog{
		{StartTime: ts(1, 0), EndTime: ts(2, 0), Hours: 24},
	}

	summary, intervals, err := AggregateKPIs(exposures, nil)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Censored)
	assert.Zero(t, summary.FailureCount)
	assert.Zero(t, summary.MTTRHours)
	assert.Zero(t, summary.FailureRate)
}

func TestAvailabilityEdgeCases(t *testing.T) {
	assert.Zero(t, Availability(0, 0))
	assert.InDelta(t, 1.0, Availability(100, 0), 1e-12)
	assert.InDelta(t, 0.5, Availability(10, 10), 1e-12)
}
