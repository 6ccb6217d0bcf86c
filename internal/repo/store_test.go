package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliastack/reliabase-engine/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAssetCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateAsset(ctx, models.Asset{Name: "pump-1", Type: "pump", Serial: "SN-1"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := store.GetAsset(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pump-1", got.Name)

	got.Notes = "rebuilt impeller"
	require.NoError(t, store.UpdateAsset(ctx, got))

	updated, err := store.GetAsset(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "rebuilt impeller", updated.Notes)

	assets, err := store.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)

	require.NoError(t, store.DeleteAsset(ctx, created.ID))
	_, err = store.GetAsset(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssetNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetAsset(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteAsset(ctx, 999), ErrNotFound)
	assert.ErrorIs(t, store.UpdateAsset(ctx, models.Asset{ID: 999, Name: "ghost"}), ErrNotFound)
}

func TestExposureAutoHours(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asset, err := store.CreateAsset(ctx, models.Asset{Name: "pump-1"})
	require.NoError(t, err)

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	exp, err := store.CreateExposure(ctx, models.ExposureLog{
		AssetID:   asset.ID,
		StartTime: start,
		EndTime:   start.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	// Hours defaults to the wall-clock span when unset.
	assert.InDelta(t, 48.0, exp.Hours, 1e-9)

	metered, err := store.CreateExposure(ctx, models.ExposureLog{
		AssetID:   asset.ID,
		StartTime: start.Add(48 * time.Hour),
		EndTime:   start.Add(96 * time.Hour),
		Hours:     30,
	})
	require.NoError(t, err)
	assert.InDelta(t, 30.0, metered.Hours, 1e-9)

	exposures, err := store.ListExposures(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, exposures, 2)
	assert.True(t, exposures[0].StartTime.Before(exposures[1].StartTime))
}

func TestExposureValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asset, err := store.CreateAsset(ctx, models.Asset{Name: "pump-1"})
	require.NoError(t, err)

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.CreateExposure(ctx, models.ExposureLog{
		AssetID:   asset.ID,
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	assert.Error(t, err)

	_, err = store.CreateExposure(ctx, models.ExposureLog{
		AssetID:   999,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asset, err := store.CreateAsset(ctx, models.Asset{Name: "pump-1"})
	require.NoError(t, err)

	at := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	event, err := store.CreateEvent(ctx, models.Event{
		AssetID:         asset.ID,
		Timestamp:       at,
		Type:            models.EventFailure,
		DowntimeMinutes: 90,
		Description:     "tripped on vibration",
	})
	require.NoError(t, err)

	got, err := store.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventFailure, got.Type)
	assert.InDelta(t, 90.0, got.DowntimeMinutes, 1e-9)

	_, err = store.CreateEvent(ctx, models.Event{AssetID: asset.ID, Timestamp: at, Type: "explosion"})
	assert.Error(t, err)

	_, err = store.CreateEvent(ctx, models.Event{AssetID: asset.ID, Timestamp: at, Type: models.EventFailure, DowntimeMinutes: -1})
	assert.Error(t, err)

	require.NoError(t, store.DeleteEvent(ctx, event.ID))
	_, err = store.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFailureModePareto(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asset, err := store.CreateAsset(ctx, models.Asset{Name: "pump-1"})
	require.NoError(t, err)

	bearing, err := store.CreateFailureMode(ctx, models.FailureMode{Name: "bearing seizure", Category: "mechanical"})
	require.NoError(t, err)
	seal, err := store.CreateFailureMode(ctx, models.FailureMode{Name: "seal leak", Category: "mechanical"})
	require.NoError(t, err)

	at := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, modeID := range []int64{bearing.ID, bearing.ID, seal.ID} {
		event, err := store.CreateEvent(ctx, models.Event{
			AssetID:   asset.ID,
			Timestamp: at.Add(time.Duration(i) * 24 * time.Hour),
			Type:      models.EventFailure,
		})
		require.NoError(t, err)
		_, err = store.CreateFailureDetail(ctx, models.EventFailureDetail{EventID: event.ID, FailureModeID: modeID})
		require.NoError(t, err)
	}

	counts, err := store.FailureModeCounts(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "bearing seizure", counts[0].Name)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, "seal leak", counts[1].Name)
}

func TestPartInstallLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asset, err := store.CreateAsset(ctx, models.Asset{Name: "pump-1"})
	require.NoError(t, err)
	part, err := store.CreatePart(ctx, models.Part{Name: "bearing", PartNumber: "6205"})
	require.NoError(t, err)

	at := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	install, err := store.CreatePartInstall(ctx, models.PartInstall{AssetID: asset.ID, PartID: part.ID, InstallTime: at})
	require.NoError(t, err)

	installs, err := store.ListPartInstalls(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, installs, 1)
	assert.Nil(t, installs[0].RemoveTime)

	require.NoError(t, store.RemovePart(ctx, install.ID, at.AddDate(0, 6, 0)))

	installs, err = store.ListPartInstalls(ctx, asset.ID)
	require.NoError(t, err)
	require.NotNil(t, installs[0].RemoveTime)

	// Already-removed installs cannot be closed twice.
	assert.ErrorIs(t, store.RemovePart(ctx, install.ID, at.AddDate(0, 7, 0)), ErrNotFound)
}

func TestSeedDemoDeterministic(t *testing.T) {
	ctx := context.Background()

	first := newTestStore(t)
	second := newTestStore(t)

	resultA, err := first.SeedDemo(ctx, 42)
	require.NoError(t, err)
	resultB, err := second.SeedDemo(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, resultA, resultB)
	assert.Equal(t, 5, resultA.Assets)
	assert.Positive(t, resultA.Exposures)
	assert.Positive(t, resultA.Events)

	assets, err := first.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 5)

	// Every seeded asset carries exposure history.
	for _, asset := range assets {
		exposures, err := first.ListExposures(ctx, asset.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, exposures)
	}
}
