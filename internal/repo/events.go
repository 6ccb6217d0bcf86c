package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/reliastack/reliabase-engine/internal/models"
)

func validEventType(t models.EventType) bool {
	switch t {
	case models.EventFailure, models.EventMaintenance, models.EventInspection:
		return true
	}
	return false
}

// CreateEvent inserts an event.
func (s *Store) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	if !validEventType(event.Type) {
		return models.Event{}, fmt.Errorf("create event: unknown event type %q", event.Type)
	}
	if event.DowntimeMinutes < 0 {
		return models.Event{}, fmt.Errorf("create event: downtime must not be negative")
	}
	if _, err := s.GetAsset(ctx, event.AssetID); err != nil {
		return models.Event{}, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO event (asset_id, timestamp, event_type, downtime_minutes, description) VALUES (?, ?, ?, ?, ?)`,
		event.AssetID, event.Timestamp, string(event.Type), event.DowntimeMinutes, event.Description,
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}
	event.ID = id
	return event, nil
}

// GetEvent fetches one event by ID.
func (s *Store) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, asset_id, timestamp, event_type, downtime_minutes, description FROM event WHERE id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ListEvents returns an asset's events in chronological order.
func (s *Store) ListEvents(ctx context.Context, assetID int64) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, asset_id, timestamp, event_type, downtime_minutes, description
		 FROM event WHERE asset_id = ? ORDER BY timestamp`, assetID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteEvent removes one event and its failure detail.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM event WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(result, "delete event")
}

func scanEvent(row rowScanner) (models.Event, error) {
	var event models.Event
	var eventType string
	if err := row.Scan(&event.ID, &event.AssetID, &event.Timestamp, &eventType, &event.DowntimeMinutes, &event.Description); err != nil {
		return models.Event{}, err
	}
	event.Type = models.EventType(eventType)
	return event, nil
}
