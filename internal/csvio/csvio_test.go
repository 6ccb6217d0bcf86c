package csvio

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliastack/reliabase-engine/internal/repo"
)

func newTestStore(t *testing.T) *repo.Store {
	t.Helper()
	store, err := repo.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

const assetCSV = `name,type,serial,in_service_date,notes
pump-1,pump,SN-1,2024-01-01T00:00:00Z,primary feedwater
pump-2,pump,SN-2,,standby
`

func TestImportAssets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := ImportAssets(ctx, store, strings.NewReader(assetCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assets, err := store.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "pump-1", assets[0].Name)
	assert.False(t, assets[0].InServiceDate.IsZero())
	assert.True(t, assets[1].InServiceDate.IsZero())
}

func TestImportExposuresAndEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := ImportAssets(ctx, store, strings.NewReader(assetCSV))
	require.NoError(t, err)

	exposuresCSV := `asset_name,start_time,end_time,hours,cycles
pump-1,2024-01-01T00:00:00Z,2024-02-01T00:00:00Z,700,3500
pump-1,2024-02-01T00:00:00Z,2024-03-01T00:00:00Z,,
`
	n, err := ImportExposures(ctx, store, strings.NewReader(exposuresCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assets, err := store.ListAssets(ctx)
	require.NoError(t, err)
	exposures, err := store.ListExposures(ctx, assets[0].ID)
	require.NoError(t, err)
	require.Len(t, exposures, 2)
	assert.InDelta(t, 700.0, exposures[0].Hours, 1e-9)
	// Blank hours fall back to the wall-clock span (Feb 2024 has 29 days).
	assert.InDelta(t, 696.0, exposures[1].Hours, 1e-6)

	eventsCSV := `asset_name,timestamp,event_type,downtime_minutes,description
pump-1,2024-01-15T06:00:00Z,failure,90,seal leak
pump-1,2024-02-10T06:00:00Z,maintenance,240,quarterly service
`
	n, err = ImportEvents(ctx, store, strings.NewReader(eventsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestImportUnknownAsset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	badCSV := `asset_name,start_time,end_time,hours,cycles
ghost,2024-01-01T00:00:00Z,2024-02-01T00:00:00Z,700,0
`
	_, err := ImportExposures(ctx, store, strings.NewReader(badCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown asset")
}

func TestImportRejectsBadHeader(t *testing.T) {
	store := newTestStore(t)
	_, err := ImportAssets(context.Background(), store, strings.NewReader("wrong,header,entirely,x,y\n"))
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	source := newTestStore(t)
	ctx := context.Background()

	_, err := ImportAssets(ctx, source, strings.NewReader(assetCSV))
	require.NoError(t, err)
	exposuresCSV := `asset_name,start_time,end_time,hours,cycles
pump-1,2024-01-01T00:00:00Z,2024-02-01T00:00:00Z,700,3500
`
	_, err = ImportExposures(ctx, source, strings.NewReader(exposuresCSV))
	require.NoError(t, err)
	eventsCSV := `asset_name,timestamp,event_type,downtime_minutes,description
pump-1,2024-01-15T06:00:00Z,failure,90,seal leak
`
	_, err = ImportEvents(ctx, source, strings.NewReader(eventsCSV))
	require.NoError(t, err)

	var assetsOut, exposuresOut, eventsOut bytes.Buffer
	require.NoError(t, ExportAssets(ctx, source, &assetsOut))
	require.NoError(t, ExportExposures(ctx, source, &exposuresOut))
	require.NoError(t, ExportEvents(ctx, source, &eventsOut))

	// Exported files import cleanly into a fresh store.
	target := newTestStore(t)
	n, err := ImportAssets(ctx, target, bytes.NewReader(assetsOut.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = ImportExposures(ctx, target, bytes.NewReader(exposuresOut.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = ImportEvents(ctx, target, bytes.NewReader(eventsOut.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
