package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ride-analytics/internal/models"
	"ride-analytics/internal/repository"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

// requiredColumns is the fixed input contract for the trip log. A CSV
// missing any of these columns is rejected outright.
var requiredColumns = []string{
	"pickup_datetime",
	"pickup_lat",
	"pickup_lon",
	"dropoff_lat",
	"dropoff_lon",
	"fare_amount",
}

// DataSourceError signals that the input dataset cannot be located, opened,
// or does not satisfy the column contract. The pipeline produces no
// analytics when it occurs.
type DataSourceError struct {
	Path string
	Err  error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source unavailable: %s: %v", e.Path, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// IsDataSourceError reports whether err is a DataSourceError.
func IsDataSourceError(err error) bool {
	var dse *DataSourceError
	return errors.As(err, &dse)
}

// IngestionService loads the raw trip log and produces the cleaned,
// enriched in-memory dataset. The repository is optional; it is only
// needed when persisting the cleaned dataset.
type IngestionService struct {
	repo    repository.TripRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains load-and-clean statistics for one pass
type IngestionResult struct {
	TotalRows       int
	CleanedRows     int
	DroppedRows     int
	DroppedByReason map[string]int
	Duration        time.Duration
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.TripRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// LoadCSV reads the trip log at path and cleans it in a single pass.
// Malformed rows are dropped silently and accounted for per reason; an
// unreadable file or missing required column returns a DataSourceError.
func (s *IngestionService) LoadCSV(ctx context.Context, path string) ([]*models.Trip, *IngestionResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Loading trip log", logging.Fields{
		"path":  path,
		"stage": "INITIALIZATION",
	})

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, &DataSourceError{Path: path, Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // row width enforced per required column below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, &DataSourceError{Path: path, Err: fmt.Errorf("failed to read header: %w", err)}
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, nil, &DataSourceError{Path: path, Err: err}
	}

	result := &IngestionResult{
		DroppedByReason: make(map[string]int),
	}
	trips := make([]*models.Trip, 0, 1024)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed CSV row, same silent-drop policy as bad field values
			result.TotalRows++
			s.dropRow(result, "bad_row")
			continue
		}

		result.TotalRows++
		s.metrics.IngestionRecordsTotal.Inc()

		record, ok := buildRawRecord(row, columns)
		if !ok {
			s.dropRow(result, "bad_row")
			continue
		}

		trip, err := record.ToTrip()
		if err != nil {
			s.dropRow(result, models.DropReason(err))
			continue
		}

		trips = append(trips, trip)
	}

	result.CleanedRows = len(trips)
	result.Duration = time.Since(startTime)

	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())
	s.metrics.DatasetSize.Set(float64(result.CleanedRows))

	s.logger.Info(ctx, "[INGEST_COMPLETE] Trip log cleaned", logging.Fields{
		"path":              path,
		"total_rows":        result.TotalRows,
		"cleaned_rows":      result.CleanedRows,
		"dropped_rows":      result.DroppedRows,
		"dropped_by_reason": result.DroppedByReason,
		"duration_seconds":  result.Duration.Seconds(),
		"stage":             "COMPLETE",
	})

	return trips, result, nil
}

// PersistDataset writes the cleaned dataset to the trip repository in
// batches, replacing any previously stored trips.
func (s *IngestionService) PersistDataset(ctx context.Context, trips []*models.Trip, batchSize int) error {
	if s.repo == nil {
		return fmt.Errorf("no trip repository configured")
	}
	if batchSize <= 0 {
		return fmt.Errorf("invalid batch size: %d", batchSize)
	}

	if err := s.repo.DeleteAllTrips(ctx); err != nil {
		return fmt.Errorf("failed to clear stored trips: %w", err)
	}

	for start := 0; start < len(trips); start += batchSize {
		end := start + batchSize
		if end > len(trips) {
			end = len(trips)
		}

		if err := s.repo.CreateTripsBatch(ctx, trips[start:end]); err != nil {
			return fmt.Errorf("failed to persist batch at offset %d: %w", start, err)
		}
	}

	s.logger.Info(ctx, "[INGEST_PERSISTED] Cleaned dataset stored", logging.Fields{
		"trips":      len(trips),
		"batch_size": batchSize,
	})

	return nil
}

func (s *IngestionService) dropRow(result *IngestionResult, reason string) {
	result.DroppedRows++
	result.DroppedByReason[reason]++
	s.metrics.RecordDroppedRow(reason)
}

// mapColumns resolves required column names to their header positions.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return columns, nil
}

// buildRawRecord extracts the required fields from one CSV row. Rows too
// short to hold every required column are rejected.
func buildRawRecord(row []string, columns map[string]int) (*models.RawTripRecord, bool) {
	get := func(name string) (string, bool) {
		idx := columns[name]
		if idx >= len(row) {
			return "", false
		}
		return row[idx], true
	}

	record := &models.RawTripRecord{}
	fields := []struct {
		name string
		dest *string
	}{
		{"pickup_datetime", &record.PickupDatetime},
		{"pickup_lat", &record.PickupLat},
		{"pickup_lon", &record.PickupLon},
		{"dropoff_lat", &record.DropoffLat},
		{"dropoff_lon", &record.DropoffLon},
		{"fare_amount", &record.FareAmount},
	}

	for _, f := range fields {
		value, ok := get(f.name)
		if !ok {
			return nil, false
		}
		*f.dest = value
	}

	return record, true
}
