package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mmcloughlin/geohash"

	"ride-analytics/internal/models"
	"ride-analytics/pkg/logging"
	"ride-analytics/pkg/metrics"
)

// popularityThreshold is the fixed policy constant for the location
// popularity view: only pickup points with more than this many rides are
// reported.
const popularityThreshold = 10

// heatmapGeohashPrecision buckets pickups into cells of roughly
// 1.2 km x 0.6 km, enough resolution for a city-scale heat layer.
const heatmapGeohashPrecision = 6

// weekdayNames is the fixed Monday-first ordering used by the weekly
// distribution and the busiest-day statistic.
var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// HourlyCount is the ride count for one hour of the day
type HourlyCount struct {
	Hour  int `json:"hour"`
	Rides int `json:"rides"`
}

// DailyCount is the ride count for one day of the week
type DailyCount struct {
	Day   string `json:"day"`
	Rides int    `json:"rides"`
}

// PopularLocation is a pickup point with more than popularityThreshold rides
type PopularLocation struct {
	PickupLat float64 `json:"pickup_lat"`
	PickupLon float64 `json:"pickup_lon"`
	Rides     int     `json:"rides"`
}

// HeatmapCell is a geohash-bucketed pickup count with the cell center
type HeatmapCell struct {
	Geohash string  `json:"geohash"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Rides   int     `json:"rides"`
}

// SummaryStats holds the headline dashboard metrics. Means and modes are
// nil over an empty dataset.
type SummaryStats struct {
	TotalRides        int      `json:"total_rides"`
	AverageFare       *float64 `json:"average_fare,omitempty"`
	AverageDistanceKm *float64 `json:"average_distance_km,omitempty"`
	BusiestHour       *int     `json:"busiest_hour,omitempty"`
	BusiestDay        *string  `json:"busiest_day,omitempty"`
}

// Snapshot is one immutable set of aggregate views over the cleaned
// dataset. It is computed in a single pass per refresh and never mutated
// afterward.
type Snapshot struct {
	Hourly           []HourlyCount     `json:"hourly"`
	Weekly           []DailyCount      `json:"weekly"`
	PopularLocations []PopularLocation `json:"popular_locations"`
	Heatmap          []HeatmapCell     `json:"heatmap"`
	DurationsMinutes []float64         `json:"durations_minutes"`
	Fares            []float64         `json:"fares"`
	Summary          SummaryStats      `json:"summary"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// HourlyDistribution counts rides per hour of day. Every hour 0-23 is
// present, zero-filled, in ascending order.
func HourlyDistribution(trips []*models.Trip) []HourlyCount {
	var counts [24]int
	for _, trip := range trips {
		counts[trip.Hour]++
	}

	distribution := make([]HourlyCount, 24)
	for hour := 0; hour < 24; hour++ {
		distribution[hour] = HourlyCount{Hour: hour, Rides: counts[hour]}
	}
	return distribution
}

// WeeklyDistribution counts rides per day name, ordered Monday through
// Sunday. Days absent from the data report zero.
func WeeklyDistribution(trips []*models.Trip) []DailyCount {
	var counts [7]int
	for _, trip := range trips {
		counts[trip.Weekday]++
	}

	distribution := make([]DailyCount, 7)
	for i := 0; i < 7; i++ {
		distribution[i] = DailyCount{Day: weekdayNames[i], Rides: counts[i]}
	}
	return distribution
}

type latLonKey struct {
	lat float64
	lon float64
}

// PopularPickupLocations groups trips by exact pickup coordinates and
// keeps groups with more than popularityThreshold rides, ordered by ride
// count descending, then by coordinates for determinism.
func PopularPickupLocations(trips []*models.Trip) []PopularLocation {
	counts := make(map[latLonKey]int)
	for _, trip := range trips {
		counts[latLonKey{trip.PickupLat, trip.PickupLon}]++
	}

	locations := make([]PopularLocation, 0)
	for key, count := range counts {
		if count > popularityThreshold {
			locations = append(locations, PopularLocation{
				PickupLat: key.lat,
				PickupLon: key.lon,
				Rides:     count,
			})
		}
	}

	sort.Slice(locations, func(i, j int) bool {
		if locations[i].Rides != locations[j].Rides {
			return locations[i].Rides > locations[j].Rides
		}
		if locations[i].PickupLat != locations[j].PickupLat {
			return locations[i].PickupLat < locations[j].PickupLat
		}
		return locations[i].PickupLon < locations[j].PickupLon
	})

	return locations
}

// PickupHeatmap buckets pickup points into geohash cells so the
// presentation layer can draw a heat layer without raw points.
func PickupHeatmap(trips []*models.Trip) []HeatmapCell {
	counts := make(map[string]int)
	for _, trip := range trips {
		hash := geohash.EncodeWithPrecision(trip.PickupLat, trip.PickupLon, heatmapGeohashPrecision)
		counts[hash]++
	}

	cells := make([]HeatmapCell, 0, len(counts))
	for hash, count := range counts {
		lat, lon := geohash.DecodeCenter(hash)
		cells = append(cells, HeatmapCell{
			Geohash: hash,
			Lat:     lat,
			Lon:     lon,
			Rides:   count,
		})
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Rides != cells[j].Rides {
			return cells[i].Rides > cells[j].Rides
		}
		return cells[i].Geohash < cells[j].Geohash
	})

	return cells
}

// TripDurations returns the raw estimated duration sequence in minutes,
// in dataset order, for histogram binning by the presentation layer.
func TripDurations(trips []*models.Trip) []float64 {
	durations := make([]float64, len(trips))
	for i, trip := range trips {
		durations[i] = trip.DurationMinutes
	}
	return durations
}

// FareAmounts returns the raw fare sequence in dataset order.
func FareAmounts(trips []*models.Trip) []float64 {
	fares := make([]float64, len(trips))
	for i, trip := range trips {
		fares[i] = trip.FareAmount
	}
	return fares
}

// Summarize computes the headline statistics. Over an empty dataset the
// total is zero and every other metric is nil. Ties resolve to the
// smallest hour and the lowest Monday-based weekday index.
func Summarize(trips []*models.Trip) SummaryStats {
	stats := SummaryStats{TotalRides: len(trips)}
	if len(trips) == 0 {
		return stats
	}

	var fareSum, distanceSum float64
	var hourCounts [24]int
	var dayCounts [7]int

	for _, trip := range trips {
		fareSum += trip.FareAmount
		distanceSum += trip.DistanceKm
		hourCounts[trip.Hour]++
		dayCounts[trip.Weekday]++
	}

	averageFare := fareSum / float64(len(trips))
	averageDistance := distanceSum / float64(len(trips))
	stats.AverageFare = &averageFare
	stats.AverageDistanceKm = &averageDistance

	busiestHour := 0
	for hour := 1; hour < 24; hour++ {
		if hourCounts[hour] > hourCounts[busiestHour] {
			busiestHour = hour
		}
	}
	stats.BusiestHour = &busiestHour

	busiestDay := 0
	for day := 1; day < 7; day++ {
		if dayCounts[day] > dayCounts[busiestDay] {
			busiestDay = day
		}
	}
	busiestDayName := weekdayNames[busiestDay]
	stats.BusiestDay = &busiestDayName

	return stats
}

// BuildSnapshot computes every aggregate view over the cleaned dataset.
func BuildSnapshot(trips []*models.Trip) *Snapshot {
	return &Snapshot{
		Hourly:           HourlyDistribution(trips),
		Weekly:           WeeklyDistribution(trips),
		PopularLocations: PopularPickupLocations(trips),
		Heatmap:          PickupHeatmap(trips),
		DurationsMinutes: TripDurations(trips),
		Fares:            FareAmounts(trips),
		Summary:          Summarize(trips),
		GeneratedAt:      time.Now().UTC(),
	}
}

// AnalyticsService computes and publishes analytics snapshots. The mutex
// only guards the published pointer; computation itself is single-threaded
// over the immutable dataset.
type AnalyticsService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewAnalyticsService creates a new analytics service with an empty
// snapshot, so consumers always see well-defined views.
func NewAnalyticsService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AnalyticsService {
	return &AnalyticsService{
		logger:   logger,
		metrics:  metricsCollector,
		snapshot: BuildSnapshot(nil),
	}
}

// Compute builds a fresh snapshot from the cleaned dataset and publishes
// it, replacing the previous one wholesale.
func (s *AnalyticsService) Compute(ctx context.Context, trips []*models.Trip) *Snapshot {
	startTime := time.Now()

	snapshot := BuildSnapshot(trips)

	duration := time.Since(startTime)
	s.metrics.AnalyticsComputeDuration.Observe(duration.Seconds())

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.logger.Info(ctx, "[ANALYTICS_COMPUTED] Snapshot published", logging.Fields{
		"total_rides":       snapshot.Summary.TotalRides,
		"popular_locations": len(snapshot.PopularLocations),
		"heatmap_cells":     len(snapshot.Heatmap),
		"duration_seconds":  duration.Seconds(),
	})

	return snapshot
}

// Snapshot returns the currently published snapshot.
func (s *AnalyticsService) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}
