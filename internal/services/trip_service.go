package services

import (
	"context"

	"ride-analytics/internal/models"
	"ride-analytics/internal/repository"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

// TripService handles queries over stored trips
type TripService struct {
	repo    repository.TripRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewTripService creates a new trip service
func NewTripService(repo repository.TripRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *TripService {
	return &TripService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GetTrips retrieves trips with filtering and pagination
func (s *TripService) GetTrips(ctx context.Context, filter repository.TripFilter) ([]*models.Trip, int, error) {
	return s.repo.GetTrips(ctx, filter)
}

// GetTrip retrieves a single trip by ID
func (s *TripService) GetTrip(ctx context.Context, id int64) (*models.Trip, error) {
	return s.repo.GetTrip(ctx, id)
}

// LoadDataset reloads the full cleaned dataset from the repository for
// in-memory aggregation.
func (s *TripService) LoadDataset(ctx context.Context) ([]*models.Trip, error) {
	trips, err := s.repo.LoadAllTrips(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.DatasetSize.Set(float64(len(trips)))
	s.logger.Info(ctx, "[DATASET_LOADED] Cleaned dataset loaded from repository", logging.Fields{
		"trips": len(trips),
	})

	return trips, nil
}
