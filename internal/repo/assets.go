package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// CreateAsset inserts an asset and returns it with the assigned ID.
func (s *Store) CreateAsset(ctx context.Context, asset models.Asset) (models.Asset, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO asset (name, type, serial, in_service_date, notes) VALUES (?, ?, ?, ?, ?)`,
		asset.Name, asset.Type, asset.Serial, nullableTime(asset.InServiceDate), asset.Notes,
	)
	if err != nil {
		return models.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	asset.ID = id
	return asset, nil
}

// GetAsset fetches one asset by ID.
func (s *Store) GetAsset(ctx context.Context, id int64) (models.Asset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, serial, in_service_date, notes FROM asset WHERE id = ?`, id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Asset{}, ErrNotFound
	}
	if err != nil {
		return models.Asset{}, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

// ListAssets returns every asset ordered by name.
func (s *Store) ListAssets(ctx context.Context) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, serial, in_service_date, notes FROM asset ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("list assets: %w", err)
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// UpdateAsset rewrites all mutable fields of an asset.
func (s *Store) UpdateAsset(ctx context.Context, asset models.Asset) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE asset SET name = ?, type = ?, serial = ?, in_service_date = ?, notes = ? WHERE id = ?`,
		asset.Name, asset.Type, asset.Serial, nullableTime(asset.InServiceDate), asset.Notes, asset.ID,
	)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return requireAffected(result, "update asset")
}

// DeleteAsset removes an asset and, via foreign keys, its dependent records.
func (s *Store) DeleteAsset(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM asset WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return requireAffected(result, "delete asset")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (models.Asset, error) {
	var asset models.Asset
	var inService sql.NullTime
	if err := row.Scan(&asset.ID, &asset.Name, &asset.Type, &asset.Serial, &inService, &asset.Notes); err != nil {
		return models.Asset{}, err
	}
	if inService.Valid {
		asset.InServiceDate = inService.Time
	}
	return asset, nil
}

func requireAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
