package repo

import (
	"context"
	"fmt"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// CreateExposure inserts an exposure log. When Hours is zero the wall-clock
// span of the log is recorded instead.
func (s *Store) CreateExposure(ctx context.Context, exp models.ExposureLog) (models.ExposureLog, error) {
	if exp.EndTime.Before(exp.StartTime) {
		return models.ExposureLog{}, fmt.Errorf("create exposure: end time before start time")
	}
	if _, err := s.GetAsset(ctx, exp.AssetID); err != nil {
		return models.ExposureLog{}, err
	}
	if exp.Hours <= 0 {
		exp.Hours = exp.WallClockHours()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO exposure_log (asset_id, start_time, end_time, hours, cycles) VALUES (?, ?, ?, ?, ?)`,
		exp.AssetID, exp.StartTime, exp.EndTime, exp.Hours, exp.Cycles,
	)
	if err != nil {
		return models.ExposureLog{}, fmt.Errorf("create exposure: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.ExposureLog{}, fmt.Errorf("create exposure: %w", err)
	}
	exp.ID = id
	return exp, nil
}

// ListExposures returns an asset's exposure logs ordered by start time.
func (s *Store) ListExposures(ctx context.Context, assetID int64) ([]models.ExposureLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, asset_id, start_time, end_time, hours, cycles
		 FROM exposure_log WHERE asset_id = ? ORDER BY start_time`, assetID)
	if err != nil {
		return nil, fmt.Errorf("list exposures: %w", err)
	}
	defer rows.Close()

	var exposures []models.ExposureLog
	for rows.Next() {
		var exp models.ExposureLog
		if err := rows.Scan(&exp.ID, &exp.AssetID, &exp.StartTime, &exp.EndTime, &exp.Hours, &exp.Cycles); err != nil {
			return nil, fmt.Errorf("list exposures: %w", err)
		}
		exposures = append(exposures, exp)
	}
	return exposures, rows.Err()
}

// DeleteExposure removes one exposure log.
func (s *Store) DeleteExposure(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM exposure_log WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete exposure: %w", err)
	}
	return requireAffected(result, "delete exposure")
}
