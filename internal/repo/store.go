// Package repo persists fleet records in SQLite and exposes typed accessors
// for the service layer.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reliastack/reliabase-engine/internal/utils"
)

// ErrNotFound signals that a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the SQLite database handle.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at path, creating it (and the schema)
// when absent. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, utils.NewAppError("repo.Open", "empty database path", nil)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, utils.NewAppError("repo.Open", "open database", err)
	}
	// modernc's driver serialises access per connection. A single connection
	// avoids database-locked errors under concurrent writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS asset (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL DEFAULT '',
			serial TEXT NOT NULL DEFAULT '',
			in_service_date TIMESTAMP,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS exposure_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			asset_id INTEGER NOT NULL REFERENCES asset(id) ON DELETE CASCADE,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			hours REAL NOT NULL DEFAULT 0,
			cycles REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exposure_asset ON exposure_log(asset_id, start_time)`,
		`CREATE TABLE IF NOT EXISTS event (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			asset_id INTEGER NOT NULL REFERENCES asset(id) ON DELETE CASCADE,
			timestamp TIMESTAMP NOT NULL,
			event_type TEXT NOT NULL,
			downtime_minutes REAL NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_asset ON event(asset_id, timestamp)`,
		`CREATE TABLE IF NOT EXISTS failure_mode (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS event_failure_detail (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES event(id) ON DELETE CASCADE,
			failure_mode_id INTEGER NOT NULL REFERENCES failure_mode(id),
			root_cause TEXT NOT NULL DEFAULT '',
			corrective_action TEXT NOT NULL DEFAULT '',
			part_replaced TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS part (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			part_number TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS part_install (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			asset_id INTEGER NOT NULL REFERENCES asset(id) ON DELETE CASCADE,
			part_id INTEGER NOT NULL REFERENCES part(id),
			install_time TIMESTAMP NOT NULL,
			remove_time TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

