package services

import (
	"time"

	"ride-analytics/internal/models"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

// Shared across the package's tests: the Prometheus collector registers
// with the default registry, so it must be created exactly once per test
// binary.
var (
	testLogger  = logging.NewStructuredLogger("test", "test", logging.ErrorLevel)
	testMetrics = metrics.NewCollector("ride_services_test")
)

// tripAt builds a cleaned trip directly, bypassing CSV parsing, for
// aggregation tests.
func tripAt(pickup time.Time, lat, lon, fare float64) *models.Trip {
	return &models.Trip{
		PickupTime:      pickup,
		PickupLat:       lat,
		PickupLon:       lon,
		DropoffLat:      lat + 0.01,
		DropoffLon:      lon + 0.01,
		FareAmount:      fare,
		Hour:            pickup.Hour(),
		Day:             pickup.Weekday().String(),
		Month:           int(pickup.Month()),
		Weekday:         models.MondayWeekday(pickup),
		DistanceKm:      1.5,
		DurationMinutes: 4.5,
	}
}
