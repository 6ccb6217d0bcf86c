package models

import "time"

// Asset is a tracked piece of equipment.
type Asset struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type,omitempty"`
	Serial        string    `json:"serial,omitempty"`
	InServiceDate time.Time `json:"in_service_date,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// ExposureLog records a contiguous period during which an asset operated.
// Hours may differ from the wall-clock span (partial-load running); when it is
// zero the span is used instead.
type ExposureLog struct {
	ID        int64     `json:"id"`
	AssetID   int64     `json:"asset_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Hours     float64   `json:"hours"`
	Cycles    float64   `json:"cycles"`
}

// WallClockHours returns the span of the log in hours.
func (e ExposureLog) WallClockHours() float64 {
	return e.EndTime.Sub(e.StartTime).Hours()
}

// EventType enumerates the recorded event categories.
type EventType string

const (
	EventFailure     EventType = "failure"
	EventMaintenance EventType = "maintenance"
	EventInspection  EventType = "inspection"
)

// Event is a point-in-time occurrence on an asset.
type Event struct {
	ID              int64     `json:"id"`
	AssetID         int64     `json:"asset_id"`
	Timestamp       time.Time `json:"timestamp"`
	Type            EventType `json:"event_type"`
	DowntimeMinutes float64   `json:"downtime_minutes"`
	Description     string    `json:"description,omitempty"`
}

// FailureMode names a recurring way assets fail.
type FailureMode struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// EventFailureDetail attaches failure-mode context to a failure event.
type EventFailureDetail struct {
	ID               int64  `json:"id"`
	EventID          int64  `json:"event_id"`
	FailureModeID    int64  `json:"failure_mode_id"`
	RootCause        string `json:"root_cause,omitempty"`
	CorrectiveAction string `json:"corrective_action,omitempty"`
	PartReplaced     string `json:"part_replaced,omitempty"`
}

// Part is a replaceable component.
type Part struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PartNumber string `json:"part_number,omitempty"`
}

// PartInstall tracks a part fitted to an asset. RemoveTime is nil while the
// part is still installed.
type PartInstall struct {
	ID          int64      `json:"id"`
	AssetID     int64      `json:"asset_id"`
	PartID      int64      `json:"part_id"`
	InstallTime time.Time  `json:"install_time"`
	RemoveTime  *time.Time `json:"remove_time,omitempty"`
}
