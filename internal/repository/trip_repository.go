package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ride-analytics/internal/models"
	"ride-analytics/pkg/database"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

// TripRepository provides data access for cleaned trips
type TripRepository interface {
	CreateTripsBatch(ctx context.Context, trips []*models.Trip) error
	GetTrip(ctx context.Context, id int64) (*models.Trip, error)
	GetTrips(ctx context.Context, filter TripFilter) ([]*models.Trip, int, error)
	LoadAllTrips(ctx context.Context) ([]*models.Trip, error)
	DeleteAllTrips(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

// TripFilter defines filters for querying trips
type TripFilter struct {
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// tripRepository implements TripRepository
type tripRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) TripRepository {
	return &tripRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

const insertTripQuery = `
	INSERT INTO trips (
		pickup_datetime, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
		fare_amount, hour, day, month, weekday, distance_km, duration_minutes,
		created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

// CreateTripsBatch inserts a batch of cleaned trips in a single transaction
func (r *tripRepository) CreateTripsBatch(ctx context.Context, trips []*models.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		r.metrics.DBQueryDuration.WithLabelValues("insert_trips_batch").Observe(time.Since(timer).Seconds())
		r.metrics.IngestionBatchSize.Observe(float64(len(trips)))
	}()

	tx, err := r.db.DB().BeginTxx(ctx, nil)
	if err != nil {
		r.metrics.RecordDBError("tx_begin_error")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, insertTripQuery)
	if err != nil {
		r.metrics.RecordDBError("prepare_error")
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, trip := range trips {
		_, err := stmt.ExecContext(ctx,
			trip.PickupTime,
			trip.PickupLat,
			trip.PickupLon,
			trip.DropoffLat,
			trip.DropoffLon,
			trip.FareAmount,
			trip.Hour,
			trip.Day,
			trip.Month,
			trip.Weekday,
			trip.DistanceKm,
			trip.DurationMinutes,
			trip.CreatedAt,
		)
		if err != nil {
			r.metrics.RecordDBError("insert_error")
			return fmt.Errorf("failed to insert trip: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.metrics.RecordDBError("tx_commit_error")
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// GetTrip retrieves a single trip by ID
func (r *tripRepository) GetTrip(ctx context.Context, id int64) (*models.Trip, error) {
	query := `
		SELECT id, pickup_datetime, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
		       fare_amount, hour, day, month, weekday, distance_km, duration_minutes,
		       created_at
		FROM trips
		WHERE id = $1
	`

	var trip models.Trip
	err := r.db.GetContext(ctx, "get_trip", &trip, query, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "trip",
			ID:       fmt.Sprintf("%d", id),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return &trip, nil
}

// GetTrips retrieves trips with filtering and pagination
func (r *tripRepository) GetTrips(ctx context.Context, filter TripFilter) ([]*models.Trip, int, error) {
	query := `
		SELECT id, pickup_datetime, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
		       fare_amount, hour, day, month, weekday, distance_km, duration_minutes,
		       created_at
		FROM trips
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.StartTime != nil {
		query += fmt.Sprintf(" AND pickup_datetime >= $%d", argNum)
		args = append(args, *filter.StartTime)
		argNum++
	}

	if filter.EndTime != nil {
		query += fmt.Sprintf(" AND pickup_datetime <= $%d", argNum)
		args = append(args, *filter.EndTime)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	err := r.db.GetContext(ctx, "count_trips", &totalCount, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	query += " ORDER BY pickup_datetime, id"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var trips []*models.Trip
	err = r.db.SelectContext(ctx, "get_trips", &trips, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get trips: %w", err)
	}

	return trips, totalCount, nil
}

// LoadAllTrips loads the full cleaned dataset into memory, ordered by
// pickup time for deterministic downstream aggregation.
func (r *tripRepository) LoadAllTrips(ctx context.Context) ([]*models.Trip, error) {
	query := `
		SELECT id, pickup_datetime, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
		       fare_amount, hour, day, month, weekday, distance_km, duration_minutes,
		       created_at
		FROM trips
		ORDER BY pickup_datetime, id
	`

	var trips []*models.Trip
	err := r.db.SelectContext(ctx, "load_all_trips", &trips, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	return trips, nil
}

// DeleteAllTrips removes every stored trip, used before a full re-ingest
func (r *tripRepository) DeleteAllTrips(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "delete_all_trips", "DELETE FROM trips")
	if err != nil {
		return fmt.Errorf("failed to delete trips: %w", err)
	}
	return nil
}

// HealthCheck performs a repository health check
func (r *tripRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
