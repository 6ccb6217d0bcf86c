package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// CreateFailureMode inserts a failure mode.
func (s *Store) CreateFailureMode(ctx context.Context, mode models.FailureMode) (models.FailureMode, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO failure_mode (name, category) VALUES (?, ?)`, mode.Name, mode.Category)
	if err != nil {
		return models.FailureMode{}, fmt.Errorf("create failure mode: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.FailureMode{}, fmt.Errorf("create failure mode: %w", err)
	}
	mode.ID = id
	return mode, nil
}

// ListFailureModes returns all failure modes ordered by name.
func (s *Store) ListFailureModes(ctx context.Context) ([]models.FailureMode, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, category FROM failure_mode ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list failure modes: %w", err)
	}
	defer rows.Close()

	var modes []models.FailureMode
	for rows.Next() {
		var mode models.FailureMode
		if err := rows.Scan(&mode.ID, &mode.Name, &mode.Category); err != nil {
			return nil, fmt.Errorf("list failure modes: %w", err)
		}
		modes = append(modes, mode)
	}
	return modes, rows.Err()
}

// CreateFailureDetail attaches failure-mode context to an event.
func (s *Store) CreateFailureDetail(ctx context.Context, detail models.EventFailureDetail) (models.EventFailureDetail, error) {
	if _, err := s.GetEvent(ctx, detail.EventID); err != nil {
		return models.EventFailureDetail{}, err
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO event_failure_detail (event_id, failure_mode_id, root_cause, corrective_action, part_replaced)
		 VALUES (?, ?, ?, ?, ?)`,
		detail.EventID, detail.FailureModeID, detail.RootCause, detail.CorrectiveAction, detail.PartReplaced,
	)
	if err != nil {
		return models.EventFailureDetail{}, fmt.Errorf("create failure detail: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.EventFailureDetail{}, fmt.Errorf("create failure detail: %w", err)
	}
	detail.ID = id
	return detail, nil
}

// FailureModeCounts aggregates failure events per mode for one asset, worst
// first. Used for Pareto views.
func (s *Store) FailureModeCounts(ctx context.Context, assetID int64) ([]models.FailureModeCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fm.name, fm.category, COUNT(*) AS n
		 FROM event_failure_detail d
		 JOIN event e ON e.id = d.event_id
		 JOIN failure_mode fm ON fm.id = d.failure_mode_id
		 WHERE e.asset_id = ?
		 GROUP BY fm.id, fm.name, fm.category
		 ORDER BY n DESC, fm.name`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failure mode counts: %w", err)
	}
	defer rows.Close()

	var counts []models.FailureModeCount
	for rows.Next() {
		var c models.FailureModeCount
		if err := rows.Scan(&c.Name, &c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failure mode counts: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CreatePart inserts a replaceable part.
func (s *Store) CreatePart(ctx context.Context, part models.Part) (models.Part, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO part (name, part_number) VALUES (?, ?)`, part.Name, part.PartNumber)
	if err != nil {
		return models.Part{}, fmt.Errorf("create part: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Part{}, fmt.Errorf("create part: %w", err)
	}
	part.ID = id
	return part, nil
}

// ListParts returns all parts ordered by name.
func (s *Store) ListParts(ctx context.Context) ([]models.Part, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, part_number FROM part ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	var parts []models.Part
	for rows.Next() {
		var part models.Part
		if err := rows.Scan(&part.ID, &part.Name, &part.PartNumber); err != nil {
			return nil, fmt.Errorf("list parts: %w", err)
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}

// CreatePartInstall records a part being fitted to an asset.
func (s *Store) CreatePartInstall(ctx context.Context, install models.PartInstall) (models.PartInstall, error) {
	if _, err := s.GetAsset(ctx, install.AssetID); err != nil {
		return models.PartInstall{}, err
	}
	var removeTime any
	if install.RemoveTime != nil {
		removeTime = *install.RemoveTime
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO part_install (asset_id, part_id, install_time, remove_time) VALUES (?, ?, ?, ?)`,
		install.AssetID, install.PartID, install.InstallTime, removeTime,
	)
	if err != nil {
		return models.PartInstall{}, fmt.Errorf("create part install: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.PartInstall{}, fmt.Errorf("create part install: %w", err)
	}
	install.ID = id
	return install, nil
}

// ListPartInstalls returns an asset's part installs in install order.
func (s *Store) ListPartInstalls(ctx context.Context, assetID int64) ([]models.PartInstall, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, asset_id, part_id, install_time, remove_time
		 FROM part_install WHERE asset_id = ? ORDER BY install_time`, assetID)
	if err != nil {
		return nil, fmt.Errorf("list part installs: %w", err)
	}
	defer rows.Close()

	var installs []models.PartInstall
	for rows.Next() {
		var install models.PartInstall
		var removeTime sql.NullTime
		if err := rows.Scan(&install.ID, &install.AssetID, &install.PartID, &install.InstallTime, &removeTime); err != nil {
			return nil, fmt.Errorf("list part installs: %w", err)
		}
		if removeTime.Valid {
			t := removeTime.Time
			install.RemoveTime = &t
		}
		installs = append(installs, install)
	}
	return installs, rows.Err()
}

// RemovePart closes an open install record at removeTime.
func (s *Store) RemovePart(ctx context.Context, installID int64, removeTime time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE part_install SET remove_time = ? WHERE id = ? AND remove_time IS NULL`, removeTime, installID)
	if err != nil {
		return fmt.Errorf("remove part: %w", err)
	}
	return requireAffected(result, "remove part")
}
