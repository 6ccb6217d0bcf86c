package repo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/reliastack/reliabase-engine/internal/models"
	"github.com/reliastack/reliabase-engine/internal/utils"
)

// SeedResult reports what the demo seeder created.
type SeedResult struct {
	Assets       int `json:"assets"`
	Exposures    int `json:"exposures"`
	Events       int `json:"events"`
	FailureModes int `json:"failure_modes"`
	Parts        int `json:"parts"`
}

type seedProfile struct {
	name  string
	kind  string
	shape float64
	scale float64
}

// SeedDemo populates the store with a small deterministic fleet whose failure
// histories follow known Weibull lifetimes, so fitted parameters land near
// the generating ones. Safe to call once per empty database.
func (s *Store) SeedDemo(ctx context.Context, seed int64) (SeedResult, error) {
	rng := rand.New(rand.NewSource(seed))
	var result SeedResult

	modes := []models.FailureMode{
		{Name: "bearing seizure", Category: "mechanical"},
		{Name: "seal leak", Category: "mechanical"},
		{Name: "winding insulation breakdown", Category: "electrical"},
		{Name: "sensor drift", Category: "instrumentation"},
	}
	modeIDs := make([]int64, 0, len(modes))
	for _, mode := range modes {
		created, err := s.CreateFailureMode(ctx, mode)
		if err != nil {
			return result, err
		}
		modeIDs = append(modeIDs, created.ID)
		result.FailureModes++
	}

	parts := []models.Part{
		{Name: "SKF 6205 bearing", PartNumber: "6205-2RS"},
		{Name: "mechanical seal", PartNumber: "MS-40-SiC"},
		{Name: "pressure transmitter", PartNumber: "PT-200"},
	}
	for _, part := range parts {
		if _, err := s.CreatePart(ctx, part); err != nil {
			return result, err
		}
		result.Parts++
	}

	profiles := []seedProfile{
		{name: "feedwater-pump-01", kind: "centrifugal_pump", shape: 2.1, scale: 1400},
		{name: "feedwater-pump-02", kind: "centrifugal_pump", shape: 1.9, scale: 1100},
		{name: "compressor-north", kind: "screw_compressor", shape: 1.1, scale: 2000},
		{name: "conveyor-main", kind: "belt_conveyor", shape: 0.8, scale: 900},
		{name: "cooling-fan-12", kind: "axial_fan", shape: 3.0, scale: 2600},
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	horizon := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	for _, profile := range profiles {
		asset, err := s.CreateAsset(ctx, models.Asset{
			Name:          profile.name,
			Type:          profile.kind,
			Serial:        fmt.Sprintf("SN-%06d", rng.Intn(1_000_000)),
			InServiceDate: start,
		})
		if err != nil {
			return result, err
		}
		result.Assets++

		created, err := s.seedAssetHistory(ctx, rng, asset.ID, profile, start, horizon, modeIDs)
		if err != nil {
			return result, err
		}
		result.Exposures += created.Exposures
		result.Events += created.Events
	}
	return result, nil
}

func (s *Store) seedAssetHistory(ctx context.Context, rng *rand.Rand, assetID int64, profile seedProfile, start, horizon time.Time, modeIDs []int64) (SeedResult, error) {
	var result SeedResult

	// Monthly exposure logs at roughly 85 percent utilisation.
	for cursor := start; cursor.Before(horizon); cursor = cursor.AddDate(0, 1, 0) {
		end := cursor.AddDate(0, 1, 0)
		if end.After(horizon) {
			end = horizon
		}
		span := utils.DurationHours(cursor, end)
		hours := span * (0.75 + 0.2*rng.Float64())
		exp := models.ExposureLog{
			AssetID:   assetID,
			StartTime: cursor,
			EndTime:   end,
			Hours:     hours,
			Cycles:    hours * (4 + 2*rng.Float64()),
		}
		if _, err := s.CreateExposure(ctx, exp); err != nil {
			return result, err
		}
		result.Exposures++
	}

	// Failures drawn from the profile's Weibull lifetime, walked forward in
	// operating hours and mapped back onto the calendar at the mean
	// utilisation used above.
	operatingClock := 0.0
	totalOperating := utils.DurationHours(start, horizon) * 0.85
	for {
		u := rng.Float64()
		life := profile.scale * weibullDraw(u, profile.shape)
		operatingClock += life
		if operatingClock >= totalOperating {
			break
		}
		at := start.Add(time.Duration(operatingClock / 0.85 * float64(time.Hour)))
		event, err := s.CreateEvent(ctx, models.Event{
			AssetID:         assetID,
			Timestamp:       at,
			Type:            models.EventFailure,
			DowntimeMinutes: 60 + rng.Float64()*600,
			Description:     "unplanned stop",
		})
		if err != nil {
			return result, err
		}
		result.Events++

		detail := models.EventFailureDetail{
			EventID:       event.ID,
			FailureModeID: modeIDs[rng.Intn(len(modeIDs))],
			RootCause:     "wear",
		}
		if _, err := s.CreateFailureDetail(ctx, detail); err != nil {
			return result, err
		}
	}

	// Quarterly preventive maintenance.
	for cursor := start.AddDate(0, 3, 0); cursor.Before(horizon); cursor = cursor.AddDate(0, 3, 0) {
		_, err := s.CreateEvent(ctx, models.Event{
			AssetID:         assetID,
			Timestamp:       cursor,
			Type:            models.EventMaintenance,
			DowntimeMinutes: 120 + rng.Float64()*240,
			Description:     "planned service",
		})
		if err != nil {
			return result, err
		}
		result.Events++
	}
	return result, nil
}

// weibullDraw inverts the Weibull CDF for a uniform u, on unit scale.
func weibullDraw(u, shape float64) float64 {
	if u <= 0 {
		u = 1e-12
	}
	if u >= 1 {
		u = 1 - 1e-12
	}
	return math.Pow(-math.Log(1-u), 1/shape)
}
