// Package csvio moves fleet records in and out of CSV files for bulk
// loading and offline analysis.
package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/reliastack/reliabase-engine/internal/models"
)

// Store is the subset of storage operations the importer and exporter use.
type Store interface {
	CreateAsset(ctx context.Context, asset models.Asset) (models.Asset, error)
	ListAssets(ctx context.Context) ([]models.Asset, error)
	CreateExposure(ctx context.Context, exp models.ExposureLog) (models.ExposureLog, error)
	ListExposures(ctx context.Context, assetID int64) ([]models.ExposureLog, error)
	CreateEvent(ctx context.Context, event models.Event) (models.Event, error)
	ListEvents(ctx context.Context, assetID int64) ([]models.Event, error)
}

var (
	assetHeader    = []string{"name", "type", "serial", "in_service_date", "notes"}
	exposureHeader = []string{"asset_name", "start_time", "end_time", "hours", "cycles"}
	eventHeader    = []string{"asset_name", "timestamp", "event_type", "downtime_minutes", "description"}
)

// ImportAssets reads asset rows and creates them, returning the count.
func ImportAssets(ctx context.Context, store Store, r io.Reader) (int, error) {
	rows, err := readRows(r, assetHeader)
	if err != nil {
		return 0, err
	}
	created := 0
	for i, row := range rows {
		asset := models.Asset{Name: row[0], Type: row[1], Serial: row[2], Notes: row[4]}
		if row[3] != "" {
			t, err := time.Parse(time.RFC3339, row[3])
			if err != nil {
				return created, fmt.Errorf("assets row %d: parse in_service_date: %w", i+2, err)
			}
			asset.InServiceDate = t
		}
		if _, err := store.CreateAsset(ctx, asset); err != nil {
			return created, fmt.Errorf("assets row %d: %w", i+2, err)
		}
		created++
	}
	return created, nil
}

// ImportExposures reads exposure rows keyed by asset name.
func ImportExposures(ctx context.Context, store Store, r io.Reader) (int, error) {
	byName, err := assetIndex(ctx, store)
	if err != nil {
		return 0, err
	}
	rows, err := readRows(r, exposureHeader)
	if err != nil {
		return 0, err
	}
	created := 0
	for i, row := range rows {
		assetID, ok := byName[row[0]]
		if !ok {
			return created, fmt.Errorf("exposures row %d: unknown asset %q", i+2, row[0])
		}
		start, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return created, fmt.Errorf("exposures row %d: parse start_time: %w", i+2, err)
		}
		end, err := time.Parse(time.RFC3339, row[2])
		if err != nil {
			return created, fmt.Errorf("exposures row %d: parse end_time: %w", i+2, err)
		}
		hours, err := parseFloat(row[3])
		if err != nil {
			return created, fmt.Errorf("exposures row %d: parse hours: %w", i+2, err)
		}
		cycles, err := parseFloat(row[4])
		if err != nil {
			return created, fmt.Errorf("exposures row %d: parse cycles: %w", i+2, err)
		}
		exp := models.ExposureLog{AssetID: assetID, StartTime: start, EndTime: end, Hours: hours, Cycles: cycles}
		if _, err := store.CreateExposure(ctx, exp); err != nil {
			return created, fmt.Errorf("exposures row %d: %w", i+2, err)
		}
		created++
	}
	return created, nil
}

// ImportEvents reads event rows keyed by asset name.
func ImportEvents(ctx context.Context, store Store, r io.Reader) (int, error) {
	byName, err := assetIndex(ctx, store)
	if err != nil {
		return 0, err
	}
	rows, err := readRows(r, eventHeader)
	if err != nil {
		return 0, err
	}
	created := 0
	for i, row := range rows {
		assetID, ok := byName[row[0]]
		if !ok {
			return created, fmt.Errorf("events row %d: unknown asset %q", i+2, row[0])
		}
		at, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return created, fmt.Errorf("events row %d: parse timestamp: %w", i+2, err)
		}
		downtime, err := parseFloat(row[3])
		if err != nil {
			return created, fmt.Errorf("events row %d: parse downtime_minutes: %w", i+2, err)
		}
		event := models.Event{
			AssetID:         assetID,
			Timestamp:       at,
			Type:            models.EventType(row[2]),
			DowntimeMinutes: downtime,
			Description:     row[4],
		}
		if _, err := store.CreateEvent(ctx, event); err != nil {
			return created, fmt.Errorf("events row %d: %w", i+2, err)
		}
		created++
	}
	return created, nil
}

// ExportAssets writes every asset as CSV.
func ExportAssets(ctx context.Context, store Store, w io.Writer) error {
	assets, err := store.ListAssets(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(assetHeader); err != nil {
		return err
	}
	for _, asset := range assets {
		inService := ""
		if !asset.InServiceDate.IsZero() {
			inService = asset.InServiceDate.Format(time.RFC3339)
		}
		row := []string{asset.Name, asset.Type, asset.Serial, inService, asset.Notes}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportExposures writes all exposure logs across the fleet as CSV.
func ExportExposures(ctx context.Context, store Store, w io.Writer) error {
	assets, err := store.ListAssets(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exposureHeader); err != nil {
		return err
	}
	for _, asset := range assets {
		exposures, err := store.ListExposures(ctx, asset.ID)
		if err != nil {
			return err
		}
		for _, exp := range exposures {
			row := []string{
				asset.Name,
				exp.StartTime.Format(time.RFC3339),
				exp.EndTime.Format(time.RFC3339),
				formatFloat(exp.Hours),
				formatFloat(exp.Cycles),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportEvents writes all events across the fleet as CSV.
func ExportEvents(ctx context.Context, store Store, w io.Writer) error {
	assets, err := store.ListAssets(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(eventHeader); err != nil {
		return err
	}
	for _, asset := range assets {
		events, err := store.ListEvents(ctx, asset.ID)
		if err != nil {
			return err
		}
		for _, event := range events {
			row := []string{
				asset.Name,
				event.Timestamp.Format(time.RFC3339),
				string(event.Type),
				formatFloat(event.DowntimeMinutes),
				event.Description,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func assetIndex(ctx context.Context, store Store) (map[string]int64, error) {
	assets, err := store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(assets))
	for _, asset := range assets {
		byName[asset.Name] = asset.ID
	}
	return byName, nil
}

// readRows consumes a CSV stream, checks the header and returns the data
// rows.
func readRows(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range header {
		if first[i] != col {
			return nil, fmt.Errorf("unexpected header: want %v, got %v", header, first)
		}
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
